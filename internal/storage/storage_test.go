package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashNormalizesLinks(t *testing.T) {
	base := Hash("https://www.news.example/world/story-1/")
	assert.Len(t, base, 16)
	assert.Equal(t, base, Hash("http://news.example/world/story-1"))
	assert.Equal(t, base, Hash("https://NEWS.example/world/story-1?utm_source=rss#top"))
	assert.NotEqual(t, base, Hash("https://news.example/world/story-2"))
	assert.NotEqual(t, base, Hash("https://news.example/world/story-1?id=2"))
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "processed.json")

	fs := NewFileStore(path, 24)
	require.NoError(t, fs.Load())

	rec := Record{Link: "https://news.example/a", Title: "A", MainGenre: "Sports", Subgenre: "Cricket"}
	require.NoError(t, fs.Save(ctx, rec))

	ok, err := fs.Has(ctx, Hash(rec.Link))
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, fs.Close())

	reloaded := NewFileStore(path, 24)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 1, reloaded.Len())

	recent, err := reloaded.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "Cricket", recent[0].Subgenre)
	assert.Equal(t, Hash(rec.Link), recent[0].Hash)
}

func TestFileStoreTTL(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "s.json"), 1)

	now := time.Now()
	fs.now = func() time.Time { return now }
	require.NoError(t, fs.Save(ctx, Record{Hash: "old", ProcessedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, fs.Save(ctx, Record{Hash: "new"}))

	ok, _ := fs.Has(ctx, "old")
	assert.False(t, ok)
	ok, _ = fs.Has(ctx, "new")
	assert.True(t, ok)

	require.NoError(t, fs.Cleanup(ctx))
	assert.Equal(t, 1, fs.Len())
}

func TestFileStoreRecentOrder(t *testing.T) {
	ctx := context.Background()
	fs := NewFileStore(filepath.Join(t.TempDir(), "s.json"), 48)
	now := time.Now()
	for i, h := range []string{"a", "b", "c"} {
		require.NoError(t, fs.Save(ctx, Record{Hash: h, ProcessedAt: now.Add(time.Duration(i) * time.Minute)}))
	}

	recent, err := fs.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Hash)
	assert.Equal(t, "b", recent[1].Hash)
}

func TestFileStoreLoadErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Error(t, NewFileStore(path, 24).Load())

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.NoError(t, NewFileStore(empty, 24).Load())
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS processed_news").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store, err := newPostgresStore(context.Background(), db, 72)
	require.NoError(t, err)
	return store, mock
}

func TestPostgresHas(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM processed_news WHERE hash = \$1`).
		WithArgs("abc", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := store.Has(context.Background(), "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSave(t *testing.T) {
	store, mock := newMockStore(t)
	rec := Record{
		Link: "https://news.example/a", Title: "A", Source: "Desk", Summary: "S.",
		MainGenre: "Sports", Subgenre: "Cricket", DisplaySubgenre: "Cricket", ImageKey: "cricket",
	}

	mock.ExpectExec(`INSERT INTO processed_news`).
		WithArgs(Hash(rec.Link), rec.Link, "A", "Desk", "S.", "Sports", "Cricket", "Cricket", "cricket",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO processed_news`).
		WillReturnError(errors.New("db error"))

	err := store.Save(context.Background(), Record{Link: "https://news.example/a"})
	assert.ErrorContains(t, err, "failed to save record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecent(t *testing.T) {
	store, mock := newMockStore(t)
	processed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cols := []string{"hash", "link", "title", "source", "summary", "main_genre", "subgenre",
		"display_subgenre", "image_key", "published_at", "processed_at"}
	mock.ExpectQuery(`SELECT hash, link, title`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("h1", "https://n.example/1", "T1", nil, "S1", "Sports", "Cricket", "Cricket", "cricket", nil, processed))

	recs, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cricket", recs[0].Subgenre)
	assert.Equal(t, "", recs[0].Source)
	assert.True(t, recs[0].Published.IsZero())
	assert.Equal(t, processed, recs[0].ProcessedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCleanup(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM processed_news WHERE processed_at < \$1`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectClose()

	require.NoError(t, store.Cleanup(context.Background()))
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStats(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM processed_news`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT main_genre, COUNT\(\*\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"main_genre", "count"}).
			AddRow("Sports", 3).AddRow("Politics", 2))

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"total_items": 5, "genre_Sports": 3, "genre_Politics": 2}, stats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSatisfiesStore(t *testing.T) {
	var _ Store = (*PostgresStore)(nil)
	var _ Store = (*FileStore)(nil)
}
