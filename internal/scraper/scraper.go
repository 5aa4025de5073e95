package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/sync/errgroup"

	"github.com/deusflow/newsbrief/internal/cache"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/ratelimit"
)

const (
	defaultMaxContentLen = 8000
	defaultMinContentLen = 100
	maxBodyBytes         = 4 << 20
)

var ErrNoContent = errors.New("no article content found")

// ArticleContent is full article content
type ArticleContent struct {
	Title   string
	Content string
	URL     string
}

// Scraper fetches article pages and extracts their body text.
type Scraper struct {
	httpClient    *http.Client
	budget        *ratelimit.Budget
	cache         *cache.Cache[*ArticleContent]
	metrics       *metrics.Metrics
	concurrency   int
	maxContentLen int
	minContentLen int
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		s.httpClient.Timeout = d
	}
}

// WithBudget limits how many pages ExtractAll may fetch.
func WithBudget(b *ratelimit.Budget) Option {
	return func(s *Scraper) {
		s.budget = b
	}
}

// WithCache reuses extracted bodies across runs.
func WithCache(c *cache.Cache[*ArticleContent]) Option {
	return func(s *Scraper) {
		s.cache = c
	}
}

// WithConcurrency sets the number of parallel fetches in ExtractAll.
func WithConcurrency(n int) Option {
	return func(s *Scraper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMetrics records scrape failures into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Scraper) {
		s.metrics = m
	}
}

// WithMaxContentLength caps the returned content, cut at a paragraph boundary.
func WithMaxContentLength(n int) Option {
	return func(s *Scraper) {
		s.maxContentLen = n
	}
}

// New creates a scraper.
func New(opts ...Option) *Scraper {
	s := &Scraper{
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		concurrency:   4,
		maxContentLen: defaultMaxContentLen,
		minContentLen: defaultMinContentLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	return s
}

// Extract gets the full text of the article at rawURL.
func (s *Scraper) Extract(ctx context.Context, rawURL string) (*ArticleContent, error) {
	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; newsbrief/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	title := extractTitle(doc)
	content := extractParagraphs(doc)

	if content == "" {
		// Selectors found nothing, let readability score the page.
		article, err := readability.FromReader(bytes.NewReader(body), parsedURL)
		if err != nil {
			return nil, fmt.Errorf("parse content: %w", err)
		}
		content = article.TextContent
		if title == "" {
			title = strings.TrimSpace(article.Title)
		}
	}

	content = limitLength(cleanContent(content), s.maxContentLen)
	if content == "" {
		return nil, ErrNoContent
	}

	return &ArticleContent{
		Title:   title,
		Content: content,
		URL:     rawURL,
	}, nil
}

// ExtractAll fetches article bodies in parallel. Failed, over-budget and too
// short articles are left out of the result.
func (s *Scraper) ExtractAll(ctx context.Context, urls []string) map[string]*ArticleContent {
	var (
		mu     sync.Mutex
		result = make(map[string]*ArticleContent)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, u := range urls {
		if u == "" {
			continue
		}

		key := cache.Key(u)
		if s.cache != nil {
			if article, ok := s.cache.Get(key); ok {
				result[u] = article
				continue
			}
		}

		if s.budget != nil && !s.budget.Allow(u) {
			slog.Debug("skipping article, fetch budget spent", "url", u)
			continue
		}

		g.Go(func() error {
			article, err := s.Extract(gctx, u)
			if err != nil {
				s.metrics.IncrementScrapeFailures()
				slog.Warn("can't get content", "url", u, "error", err)
				return nil
			}
			if len(article.Content) < s.minContentLen {
				slog.Debug("content too short", "url", u, "chars", len(article.Content))
				return nil
			}

			if s.cache != nil {
				s.cache.Set(key, article)
			}
			mu.Lock()
			result[u] = article
			mu.Unlock()
			slog.Debug("got content", "url", u, "chars", len(article.Content))
			return nil
		})
	}

	_ = g.Wait()
	return result
}

// extractParagraphs collects paragraph text from the usual article
// containers.
func extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		"main p",
		".article-body p",
		".article-content p",
		".content p",
		".post-content p",
		".entry-content p",
		"#content p",
	}

	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

// extractTitle gets article title
func extractTitle(doc *goquery.Document) string {
	selectors := []string{
		"h1",
		".article-title",
		".headline",
		".entry-title",
		"title",
	}

	for _, selector := range selectors {
		title := strings.TrimSpace(doc.Find(selector).First().Text())
		if title != "" {
			return title
		}
	}

	return ""
}

// limitLength keeps whole paragraphs while the text fits in max bytes.
func limitLength(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	var selected []string
	total := 0
	for _, paragraph := range strings.Split(text, "\n\n") {
		if total+len(paragraph) > max {
			break
		}
		selected = append(selected, paragraph)
		total += len(paragraph) + 2
	}

	if len(selected) == 0 {
		for max > 0 && !utf8.RuneStart(text[max]) {
			max--
		}
		return text[:max]
	}
	return strings.Join(selected, "\n\n")
}
