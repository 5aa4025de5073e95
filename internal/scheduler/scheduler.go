package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled ingest cycle.
type Job func(ctx context.Context) error

// Scheduler runs a Job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	job     Job
	mu      sync.Mutex
	entryID cron.EntryID
	started bool
	stopped bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New parses spec (standard five-field cron or descriptors such as
// "@every 30m") and prepares a scheduler for job.
func New(spec string, job Job) (*Scheduler, error) {
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		job: job,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	entryID, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", spec, err)
	}
	s.entryID = entryID

	return s, nil
}

// Start begins the scheduler.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started && !s.stopped {
		s.cron.Start()
		s.started = true
		slog.Info("scheduler started", "next_run", s.cron.Entry(s.entryID).Next)
	}
}

// Stop halts the scheduler, cancels a running job and waits for it to
// return. A stopped scheduler is not restarted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.cancel()
		<-s.cron.Stop().Done()
		s.started = false
		s.stopped = true
	}
}

// Next reports when the job runs next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) run() {
	start := time.Now()
	if err := s.job(s.ctx); err != nil {
		slog.Error("scheduled run failed", "error", err, "duration", time.Since(start))
		return
	}
	slog.Debug("scheduled run done", "duration", time.Since(start))
}

// slogLogger routes cron's own logging through slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
