package rss

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/retry"
)

// Feed is one configured source. Every item read from it is filed under
// Genre.
type Feed struct {
	URL   string `yaml:"url"`
	Genre string `yaml:"genre"`
	Name  string `yaml:"name"`
}

// FeedsConfig is YAML config structure
//
//	feeds:
//	  - url: https://...
//	    genre: Sports
//	    name: BBC Sport
type FeedsConfig struct {
	Feeds []Feed `yaml:"feeds"`
}

// Item is a feed entry tagged with the main genre and name of its feed.
type Item struct {
	*gofeed.Item
	Genre  string
	Source string
}

// PublishedAt returns the item's publication time, falling back to the
// update time. The zero time means unknown.
func (it Item) PublishedAt() time.Time {
	if it.PublishedParsed != nil {
		return *it.PublishedParsed
	}
	if it.UpdatedParsed != nil {
		return *it.UpdatedParsed
	}
	return time.Time{}
}

// LoadFeeds reads the feed list from a YAML file.
func LoadFeeds(path string) ([]Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseFeeds(f)
}

// ParseFeeds decodes and validates a feed list.
func ParseFeeds(r io.Reader) ([]Feed, error) {
	var cfg FeedsConfig
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds: %w", err)
	}

	for i, feed := range cfg.Feeds {
		if strings.TrimSpace(feed.URL) == "" {
			return nil, fmt.Errorf("feed %d: url is required", i)
		}
		if strings.TrimSpace(feed.Genre) == "" {
			return nil, fmt.Errorf("feed %s: genre is required", feed.URL)
		}
		if feed.Name == "" {
			cfg.Feeds[i].Name = feed.URL
		}
	}
	return cfg.Feeds, nil
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	parser  *gofeed.Parser
	retry   retry.Config
	metrics *metrics.Metrics
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration, rc retry.Config, m *metrics.Metrics) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "newsbrief/1.0 (+https://github.com/deusflow/newsbrief)"
	if m == nil {
		m = metrics.New()
	}
	return &Fetcher{parser: parser, retry: rc, metrics: m}
}

// FetchAll downloads and parses all feeds. A failing feed is logged and
// skipped.
func (f *Fetcher) FetchAll(ctx context.Context, feeds []Feed) []Item {
	var all []Item
	successCount := 0

	for _, feed := range feeds {
		if ctx.Err() != nil {
			break
		}

		var parsed *gofeed.Feed
		err := retry.Do(ctx, f.retry, func() error {
			var err error
			parsed, err = f.parser.ParseURLWithContext(feed.URL, ctx)
			return err
		})
		if err != nil {
			slog.Warn("error parsing RSS", "feed", feed.URL, "error", err)
			f.metrics.IncrementFeedFailures()
			continue // Log error, but don't stop
		}

		for _, it := range parsed.Items {
			if it == nil {
				continue
			}
			all = append(all, Item{Item: it, Genre: feed.Genre, Source: feed.Name})
		}
		successCount++
		f.metrics.AddFeedItemsFetched(len(parsed.Items))
		slog.Info("loaded feed", "feed", feed.Name, "items", len(parsed.Items), "genre", feed.Genre)
	}

	slog.Info("processed RSS feeds", "ok", successCount, "total", len(feeds))
	return all
}
