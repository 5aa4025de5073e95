package ratelimit

import (
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

// Budget caps how many pages one run may fetch, overall and per host.
// A limit of zero means unlimited.
type Budget struct {
	mu         sync.Mutex
	maxTotal   int
	maxPerHost int
	total      int
	perHost    map[string]int
	denied     int
}

// NewBudget creates a fetch budget with the given limits.
func NewBudget(maxTotal, maxPerHost int) *Budget {
	return &Budget{
		maxTotal:   maxTotal,
		maxPerHost: maxPerHost,
		perHost:    make(map[string]int),
	}
}

// Allow reports whether rawURL may be fetched and, if so, charges it to the
// budget. Unparseable URLs are denied.
func (b *Budget) Allow(rawURL string) bool {
	host := hostOf(rawURL)
	if host == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxTotal > 0 && b.total >= b.maxTotal {
		b.denied++
		slog.Debug("fetch budget exhausted", "used", b.total, "limit", b.maxTotal)
		return false
	}

	if b.maxPerHost > 0 && b.perHost[host] >= b.maxPerHost {
		b.denied++
		slog.Debug("host fetch budget exhausted", "host", host, "limit", b.maxPerHost)
		return false
	}

	b.total++
	b.perHost[host]++
	return true
}

// Stats returns current budget usage.
func (b *Budget) Stats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"total_used":     b.total,
		"total_limit":    b.maxTotal,
		"per_host_limit": b.maxPerHost,
		"hosts":          len(b.perHost),
		"denied":         b.denied,
	}
}

// Reset clears all counters, typically at the start of a run.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = 0
	b.denied = 0
	b.perHost = make(map[string]int)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
