package news

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/processor"
	"github.com/deusflow/newsbrief/internal/rss"
	"github.com/deusflow/newsbrief/internal/scraper"
	"github.com/deusflow/newsbrief/internal/storage"
	"github.com/deusflow/newsbrief/internal/taxonomy"
)

// Producer summarizes and classifies article text.
type Producer interface {
	Produce(text, mainGenre string) (processor.SummaryResult, error)
	Taxonomy() *taxonomy.Taxonomy
}

// BodyFetcher fetches full article bodies keyed by URL.
type BodyFetcher interface {
	ExtractAll(ctx context.Context, urls []string) map[string]*scraper.ArticleContent
}

// PipelineConfig bounds one run.
type PipelineConfig struct {
	MaxAge       time.Duration // items older than this are dropped; zero keeps all
	Limit        int           // articles processed per run; zero means no cap
	MinBodyChars int           // shorter scraped bodies fall back to the feed description
}

// Pipeline turns feed items into digests.
type Pipeline struct {
	producer Producer
	fetcher  BodyFetcher
	store    storage.Store
	metrics  *metrics.Metrics
	cfg      PipelineConfig
	now      func() time.Time
}

// NewPipeline wires a pipeline. fetcher and store may be nil.
func NewPipeline(p Producer, fetcher BodyFetcher, store storage.Store, m *metrics.Metrics, cfg PipelineConfig) *Pipeline {
	if m == nil {
		m = metrics.New()
	}
	if cfg.MinBodyChars <= 0 {
		cfg.MinBodyChars = 200
	}
	return &Pipeline{
		producer: p,
		fetcher:  fetcher,
		store:    store,
		metrics:  m,
		cfg:      cfg,
		now:      time.Now,
	}
}

type candidate struct {
	item      rss.Item
	published time.Time
}

// Run filters, scrapes, processes and persists items. Per-article failures
// are logged and skipped; only cancellation aborts the run.
func (p *Pipeline) Run(ctx context.Context, items []rss.Item) ([]Digest, error) {
	candidates := p.selectCandidates(ctx, items)
	slog.Info("selected articles", "candidates", len(candidates), "items", len(items))

	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		urls = append(urls, c.item.Link)
	}

	var bodies map[string]*scraper.ArticleContent
	if p.fetcher != nil && len(urls) > 0 {
		bodies = p.fetcher.ExtractAll(ctx, urls)
	}

	tax := p.producer.Taxonomy()
	digests := make([]Digest, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return digests, err
		}

		text := p.articleText(c.item, bodies[c.item.Link])
		res, err := p.producer.Produce(text, c.item.Genre)
		if err != nil {
			slog.Warn("failed to process article", "link", c.item.Link, "error", err)
			p.metrics.SetError(err.Error())
			continue
		}

		d := NewDigest(tax, res)
		d.Title = strings.TrimSpace(c.item.Title)
		d.Link = c.item.Link
		d.Source = c.item.Source
		d.Published = c.published

		if p.store != nil {
			if err := p.store.Save(ctx, d.Record()); err != nil {
				slog.Warn("failed to store result", "link", d.Link, "error", err)
			} else {
				p.metrics.IncrementResultsStored()
			}
		}

		slog.Debug("article processed", "title", d.Title, "genre", d.MainGenre, "subgenre", d.Subgenre)
		digests = append(digests, d)
	}

	p.metrics.SetLastRun()
	return digests, ctx.Err()
}

// selectCandidates drops stale, repeated and already processed items and
// returns the newest ones up to the configured limit.
func (p *Pipeline) selectCandidates(ctx context.Context, items []rss.Item) []candidate {
	now := p.now()
	seenLinks := map[string]struct{}{}

	var candidates []candidate
	for _, item := range items {
		if item.Item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		published := item.PublishedAt()
		if p.cfg.MaxAge > 0 && !published.IsZero() && now.Sub(published) > p.cfg.MaxAge {
			continue
		}

		// Feeds repeat their own items; the same link is the same article.
		if _, dup := seenLinks[item.Link]; dup {
			continue
		}
		seenLinks[item.Link] = struct{}{}

		if p.store != nil {
			done, err := p.store.Has(ctx, storage.Hash(item.Link))
			if err != nil {
				slog.Warn("store lookup failed", "link", item.Link, "error", err)
			} else if done {
				p.metrics.IncrementAlreadyProcessed()
				continue
			}
		}

		candidates = append(candidates, candidate{item: item, published: published})
	}

	// Newest first; undated items go last.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].published.After(candidates[j].published)
	})

	if p.cfg.Limit > 0 && len(candidates) > p.cfg.Limit {
		candidates = candidates[:p.cfg.Limit]
	}
	return candidates
}

// articleText prefers the scraped body and falls back to the cleaned feed
// description or content.
func (p *Pipeline) articleText(item rss.Item, body *scraper.ArticleContent) string {
	if body != nil && len(body.Content) >= p.cfg.MinBodyChars {
		return body.Content
	}

	text := scraper.CleanText(item.Description)
	if content := scraper.CleanText(item.Content); len(content) > len(text) {
		text = content
	}
	if body != nil && len(body.Content) > len(text) {
		text = body.Content
	}
	return text
}
