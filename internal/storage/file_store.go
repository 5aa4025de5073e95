package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"
)

// FileStore keeps processed records in a JSON file
type FileStore struct {
	filePath string
	ttlHours int
	items    map[string]Record
	mu       sync.RWMutex
	now      func() time.Time
}

// NewFileStore creates a new file store instance
func NewFileStore(filePath string, ttlHours int) *FileStore {
	return &FileStore{
		filePath: filePath,
		ttlHours: ttlHours,
		items:    make(map[string]Record),
		now:      time.Now,
	}
}

// Load loads existing records from file, dropping expired ones
func (fs *FileStore) Load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(fs.filePath)
	if os.IsNotExist(err) {
		// File doesn't exist, start empty
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	var items []Record
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to unmarshal store: %w", err)
	}

	cutoff := fs.cutoff()
	for _, item := range items {
		if item.ProcessedAt.After(cutoff) {
			fs.items[item.Hash] = item
		}
	}

	return nil
}

// Flush writes current records to file
func (fs *FileStore) Flush() error {
	records := fs.sorted()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	if err := os.WriteFile(fs.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}

	return nil
}

// Has checks if an article was processed within the TTL window
func (fs *FileStore) Has(_ context.Context, hash string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	item, exists := fs.items[hash]
	if !exists {
		return false, nil
	}
	return item.ProcessedAt.After(fs.cutoff()), nil
}

// Save records a processed article. ProcessedAt defaults to now.
func (fs *FileStore) Save(_ context.Context, rec Record) error {
	if rec.Hash == "" {
		rec.Hash = Hash(rec.Link)
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = fs.now()
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.items[rec.Hash] = rec
	return nil
}

// Recent returns the most recently processed records, newest first
func (fs *FileStore) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 10
	}
	records := fs.sorted()
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Cleanup removes expired records from memory
func (fs *FileStore) Cleanup(_ context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	cutoff := fs.cutoff()
	for hash, item := range fs.items {
		if !item.ProcessedAt.After(cutoff) {
			delete(fs.items, hash)
		}
	}
	return nil
}

// Close flushes records to disk
func (fs *FileStore) Close() error {
	return fs.Flush()
}

// Len returns the number of records held
func (fs *FileStore) Len() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.items)
}

func (fs *FileStore) sorted() []Record {
	fs.mu.RLock()
	records := make([]Record, 0, len(fs.items))
	for _, item := range fs.items {
		records = append(records, item)
	}
	fs.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].ProcessedAt.Equal(records[j].ProcessedAt) {
			return records[i].ProcessedAt.After(records[j].ProcessedAt)
		}
		return records[i].Hash < records[j].Hash
	})
	return records
}

func (fs *FileStore) cutoff() time.Time {
	return fs.now().Add(-time.Duration(fs.ttlHours) * time.Hour)
}
