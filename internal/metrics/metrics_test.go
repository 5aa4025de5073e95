package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCountersAreConcurrencySafe(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementArticlesProcessed()
			m.AddFeedItemsFetched(2)
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	assert.Equal(t, int64(50), stats["articles_processed"])
	assert.Equal(t, int64(100), stats["feed_items_fetched"])
}

func TestProcessingTimeAverage(t *testing.T) {
	m := New()
	m.RecordProcessingTime(100 * time.Millisecond)
	m.RecordProcessingTime(300 * time.Millisecond)

	stats := m.GetStats()
	assert.Equal(t, int64(300), stats["last_processing_time_ms"])
	assert.Equal(t, int64(200), stats["average_processing_time_ms"])
}

func TestAverageBeforeAnyRecording(t *testing.T) {
	m := New()
	assert.Equal(t, int64(0), m.GetStats()["average_processing_time_ms"])

	m.RecordProcessingTime(0)
	stats := m.GetStats()
	assert.Equal(t, int64(0), stats["average_processing_time_ms"])
	assert.Equal(t, int64(1), m.ProcessingCount)
}

func TestHealthTransitions(t *testing.T) {
	m := New()
	assert.True(t, m.Healthy())
	assert.Equal(t, "", m.GetStats()["last_run_time"])

	m.SetError("feed down")
	assert.False(t, m.Healthy())
	assert.Equal(t, "feed down", m.GetStats()["last_error"])

	m.SetLastRun()
	assert.True(t, m.Healthy())
	assert.NotEmpty(t, m.GetStats()["last_run_time"])
}
