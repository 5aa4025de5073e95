package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// Record is one processed article as persisted between runs.
type Record struct {
	Hash            string    `json:"hash"`
	Link            string    `json:"link"`
	Title           string    `json:"title"`
	Source          string    `json:"source"`
	Summary         string    `json:"summary"`
	MainGenre       string    `json:"main_genre"`
	Subgenre        string    `json:"subgenre"`
	DisplaySubgenre string    `json:"display_subgenre"`
	ImageKey        string    `json:"image_key"`
	Published       time.Time `json:"published"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// Store persists processed articles so later runs can skip them.
type Store interface {
	Has(ctx context.Context, hash string) (bool, error)
	Save(ctx context.Context, rec Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Cleanup(ctx context.Context) error
	Close() error
}

// Hash creates a stable key for an article link. Scheme, "www.", fragment,
// tracking parameters and a trailing slash do not affect it.
func Hash(link string) string {
	h := sha256.New()
	h.Write([]byte(normalizeLink(link)))
	return hex.EncodeToString(h.Sum(nil))[:16] // Use first 16 characters
}

func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return strings.ToLower(link)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	q := u.Query()
	for key := range q {
		if strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}

	normalized := host + strings.TrimSuffix(u.EscapedPath(), "/")
	if encoded := q.Encode(); encoded != "" {
		normalized += "?" + encoded
	}
	return normalized
}
