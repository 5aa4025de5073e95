package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Processor counters
	ArticlesProcessed   int64
	EmptyArticles       int64
	InvalidRequests     int64
	UnknownGenres       int64
	ClassifierTrainings int64

	// Ingest counters
	FeedItemsFetched int64
	FeedFailures     int64
	ScrapeFailures   int64
	ResultsStored    int64
	AlreadyProcessed int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

// Global is the process-wide instance served on /metrics.
var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(counter *int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += n
}

func (m *Metrics) IncrementArticlesProcessed()   { m.add(&m.ArticlesProcessed, 1) }
func (m *Metrics) IncrementEmptyArticles()       { m.add(&m.EmptyArticles, 1) }
func (m *Metrics) IncrementInvalidRequests()     { m.add(&m.InvalidRequests, 1) }
func (m *Metrics) IncrementUnknownGenres()       { m.add(&m.UnknownGenres, 1) }
func (m *Metrics) IncrementClassifierTrainings() { m.add(&m.ClassifierTrainings, 1) }
func (m *Metrics) IncrementFeedFailures()        { m.add(&m.FeedFailures, 1) }
func (m *Metrics) IncrementScrapeFailures()      { m.add(&m.ScrapeFailures, 1) }
func (m *Metrics) IncrementResultsStored()       { m.add(&m.ResultsStored, 1) }
func (m *Metrics) IncrementAlreadyProcessed()    { m.add(&m.AlreadyProcessed, 1) }

func (m *Metrics) AddFeedItemsFetched(n int) { m.add(&m.FeedItemsFetched, int64(n)) }

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.IsHealthy
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_processed":         m.ArticlesProcessed,
		"empty_articles":             m.EmptyArticles,
		"invalid_requests":           m.InvalidRequests,
		"unknown_genres":             m.UnknownGenres,
		"classifier_trainings":       m.ClassifierTrainings,
		"feed_items_fetched":         m.FeedItemsFetched,
		"feed_failures":              m.FeedFailures,
		"scrape_failures":            m.ScrapeFailures,
		"results_stored":             m.ResultsStored,
		"already_processed":          m.AlreadyProcessed,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              formatTime(m.LastRunTime),
		"last_error_time":            formatTime(m.LastErrorTime),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
