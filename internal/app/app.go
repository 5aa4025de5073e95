package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/deusflow/newsbrief/internal/cache"
	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/news"
	"github.com/deusflow/newsbrief/internal/processor"
	"github.com/deusflow/newsbrief/internal/ratelimit"
	"github.com/deusflow/newsbrief/internal/retry"
	"github.com/deusflow/newsbrief/internal/rss"
	"github.com/deusflow/newsbrief/internal/scraper"
	"github.com/deusflow/newsbrief/internal/storage"
)

// App runs ingest cycles: fetch feeds, process new articles, persist them
// and write the digest.
type App struct {
	feeds     []rss.Feed
	fetcher   *rss.Fetcher
	pipeline  *news.Pipeline
	store     storage.Store
	budget    *ratelimit.Budget
	bodyCache *cache.Cache[*scraper.ArticleContent]
	metrics   *metrics.Metrics
	out       io.Writer
	format    string
}

// New wires an App from cfg around an already built processor.
func New(ctx context.Context, cfg *config.Config, proc *processor.Processor, m *metrics.Metrics, out io.Writer) (*App, error) {
	feeds, err := rss.LoadFeeds(cfg.FeedsConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}

	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if m == nil {
		m = metrics.New()
	}

	rc := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	budget := ratelimit.NewBudget(cfg.ScrapeMaxArticles, cfg.ScrapeMaxPerHost)
	bodyCache := cache.New[*scraper.ArticleContent](cfg.BodyCacheTTL, time.Hour)

	s := scraper.New(
		scraper.WithTimeout(cfg.RequestTimeout),
		scraper.WithConcurrency(cfg.ScrapeConcurrency),
		scraper.WithBudget(budget),
		scraper.WithCache(bodyCache),
		scraper.WithMetrics(m),
	)

	pipeline := news.NewPipeline(proc, s, store, m, news.PipelineConfig{
		MaxAge: cfg.NewsMaxAge,
		Limit:  cfg.MaxNewsLimit,
	})

	return &App{
		feeds:     feeds,
		fetcher:   rss.NewFetcher(cfg.RequestTimeout, rc, m),
		pipeline:  pipeline,
		store:     store,
		budget:    budget,
		bodyCache: bodyCache,
		metrics:   m,
		out:       out,
		format:    cfg.OutputFormat,
	}, nil
}

// NewStore picks Postgres when DATABASE_URL is set and the JSON file store
// otherwise.
func NewStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, cfg.ResultTTLHours)
		if err != nil {
			return nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, nil
	}

	store := storage.NewFileStore(cfg.ResultsFilePath, cfg.ResultTTLHours)
	if err := store.Load(); err != nil {
		return nil, fmt.Errorf("file store: %w", err)
	}
	slog.Info("using file store", "path", cfg.ResultsFilePath)
	return store, nil
}

// RunOnce performs one ingest cycle.
func (a *App) RunOnce(ctx context.Context) error {
	start := time.Now()
	a.budget.Reset()

	if err := a.store.Cleanup(ctx); err != nil {
		slog.Warn("store cleanup failed", "error", err)
	}

	items := a.fetcher.FetchAll(ctx, a.feeds)
	slog.Info("collected feed items", "count", len(items))

	digests, err := a.pipeline.Run(ctx, items)
	if err != nil {
		a.metrics.SetError(err.Error())
		return fmt.Errorf("pipeline: %w", err)
	}

	if err := WriteDigests(a.out, digests, a.format); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}

	if f, ok := a.store.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			a.metrics.SetError(err.Error())
			return err
		}
	}

	slog.Info("run finished", "articles", len(digests), "duration", time.Since(start), "budget", a.budget.Stats())
	return nil
}

// Close releases the store and stops the body cache sweeper.
func (a *App) Close() error {
	a.bodyCache.Close()
	return a.store.Close()
}

// Run builds an App, performs one cycle and closes it.
func Run(ctx context.Context, cfg *config.Config, proc *processor.Processor, m *metrics.Metrics, out io.Writer) error {
	a, err := New(ctx, cfg, proc, m, out)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.RunOnce(ctx)
}

// WriteDigests writes the digests as JSON lines, or as plain-text blocks
// when format is "text".
func WriteDigests(w io.Writer, digests []news.Digest, format string) error {
	if format == "text" {
		for _, d := range digests {
			if _, err := fmt.Fprintln(w, news.FormatDigest(d)); err != nil {
				return err
			}
		}
		return nil
	}

	enc := json.NewEncoder(w)
	for _, d := range digests {
		if err := enc.Encode(d); err != nil {
			return err
		}
	}
	return nil
}
