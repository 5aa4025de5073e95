package ratelimit

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetTotal(t *testing.T) {
	b := NewBudget(2, 0)
	assert.True(t, b.Allow("https://a.example/1"))
	assert.True(t, b.Allow("https://b.example/1"))
	assert.False(t, b.Allow("https://c.example/1"))

	stats := b.Stats()
	assert.Equal(t, 2, stats["total_used"])
	assert.Equal(t, 1, stats["denied"])
}

func TestBudgetPerHost(t *testing.T) {
	b := NewBudget(0, 1)
	assert.True(t, b.Allow("https://www.news.example/a"))
	assert.False(t, b.Allow("https://NEWS.example/b"), "www prefix and case are ignored")
	assert.True(t, b.Allow("https://other.example/a"))
}

func TestBudgetRejectsBadURL(t *testing.T) {
	b := NewBudget(0, 0)
	assert.False(t, b.Allow("::not a url"))
	assert.False(t, b.Allow("/relative/path"))
}

func TestBudgetReset(t *testing.T) {
	b := NewBudget(1, 0)
	assert.True(t, b.Allow("https://a.example/"))
	assert.False(t, b.Allow("https://a.example/2"))
	b.Reset()
	assert.True(t, b.Allow("https://a.example/3"))
}

func TestBudgetConcurrent(t *testing.T) {
	b := NewBudget(10, 0)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if b.Allow(fmt.Sprintf("https://h%d.example/", i)) {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}
