package persistence

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/docvec/docvec/domain/index"
	"github.com/docvec/docvec/internal/config"
	"github.com/docvec/docvec/internal/database"
	"github.com/docvec/docvec/internal/testdb"
)

func testConfig() config.AppConfig {
	return config.NewAppConfigWithOptions(
		config.WithEmbeddingDimension(3),
		config.WithRetryBaseDelay(time.Millisecond),
		config.WithDeleteBatchSize(100),
	)
}

func newTestStore(t *testing.T) *EmbeddingStore {
	t.Helper()
	return NewEmbeddingStore(testdb.New(t), testConfig(), nil)
}

func record(id, text, filePath string, vector []float64) index.Record {
	return index.NewRecord(id, text, vector, filePath, "hash-"+id)
}

func TestUpsert_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := record("src/a.ts:foo", "first text", "src/a.ts", []float64{1, 0, 0})
	require.NoError(t, store.Upsert(ctx, first))

	second := record("src/a.ts:foo", "second text", "src/a.ts", []float64{0, 1, 0})
	require.NoError(t, store.Upsert(ctx, second))

	ids, err := store.IDsByFilePath(ctx, "src/a.ts")
	require.NoError(t, err)
	require.Len(t, ids, 1, "exactly one live record per id")

	results, err := store.Search(ctx, []float64{0, 1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second text", results[0].Text(), "latest text wins")
}

func TestUpsert_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		rec  index.Record
	}{
		{"empty id", record("", "text", "src/a.ts", []float64{1, 0, 0})},
		{"empty text", record("src/a.ts:foo", "", "src/a.ts", []float64{1, 0, 0})},
		{"empty file path", record("src/a.ts:foo", "text", "", []float64{1, 0, 0})},
		{"empty vector", record("src/a.ts:foo", "text", "src/a.ts", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Upsert(ctx, tt.rec)
			var verr *index.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestUpsert_RecoversFromTransientFailures(t *testing.T) {
	// The first two sessions come from a closed database (connection-class
	// failure), the third from a healthy one: the retry loop must absorb
	// both failures and succeed on the final attempt.
	healthy := testdb.New(t)
	flaky := &flakyDatabase{healthy: healthy, broken: brokenDatabase(t), failures: 2}

	store := NewEmbeddingStore(flaky, testConfig(), nil)
	require.NoError(t, store.Initialize(context.Background()))
	flaky.armed = true

	err := store.Upsert(context.Background(),
		record("src/a.ts:foo", "text", "src/a.ts", []float64{1, 0, 0}))
	require.NoError(t, err, "transient failures within the retry cap must not surface")

	ids, err := store.IDsByFilePath(context.Background(), "src/a.ts")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts:foo"}, ids)
}

func TestDelete_Batches(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 250; i++ {
		id := fmt.Sprintf("src/big.ts:sym%03d", i)
		require.NoError(t, store.Upsert(ctx, record(id, "text", "src/big.ts", []float64{1, 0, 0})))
		ids = append(ids, id)
	}

	require.NoError(t, store.Delete(ctx, ids))

	remaining, err := store.IDsByFilePath(ctx, "src/big.ts")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDelete_EmptyIDsIsNoop(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Delete(context.Background(), nil))
}

func TestDelete_ConnectionFailureAbortsRemainingBatches(t *testing.T) {
	store := NewEmbeddingStore(brokenDatabase(t), testConfig(), nil)
	// Mark the store ready so Delete reaches the batch loop; the broken
	// connection then fails the first batch with a connection-class error.
	store.ready = true

	var ids []string
	for i := 0; i < 250; i++ {
		ids = append(ids, fmt.Sprintf("src/big.ts:sym%03d", i))
	}

	err := store.Delete(context.Background(), ids)
	var pderr *index.PartialDeleteError
	require.ErrorAs(t, err, &pderr)
	assert.Equal(t, 0, pderr.Deleted)
	assert.Equal(t, 250, pderr.Failed, "remaining batches count as failed after abort")
	assert.NotEmpty(t, pderr.Sample)
	assert.LessOrEqual(t, len(pderr.Sample), deleteSampleSize)
}

func TestIDsByFilePath_FiltersNatively(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("src/a.ts:foo", "a", "src/a.ts", []float64{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/a.ts:bar", "b", "src/a.ts", []float64{0, 1, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/b.ts:foo", "c", "src/b.ts", []float64{0, 0, 1})))

	ids, err := store.IDsByFilePath(ctx, "src/a.ts")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/a.ts:foo", "src/a.ts:bar"}, ids)

	none, err := store.IDsByFilePath(ctx, "src/missing.ts")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDeleteFileEmbeddings_RemovesOnlyThatFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("src/a.ts:foo", "a", "src/a.ts", []float64{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/a.ts:bar", "b", "src/a.ts", []float64{0, 1, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/a.tsx:foo", "c", "src/a.tsx", []float64{0, 0, 1})))
	require.NoError(t, store.Upsert(ctx, record("src/b.ts:foo", "d", "src/b.ts", []float64{0, 0, 1})))

	require.NoError(t, store.DeleteFileEmbeddings(ctx, "src/a.ts"))

	gone, err := store.IDsByFilePath(ctx, "src/a.ts")
	require.NoError(t, err)
	assert.Empty(t, gone)

	// Files sharing the path prefix but not the id prefix are untouched.
	kept, err := store.IDsByFilePath(ctx, "src/a.tsx")
	require.NoError(t, err)
	assert.Len(t, kept, 1)

	other, err := store.IDsByFilePath(ctx, "src/b.ts")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("src/a.ts:exact", "exact", "src/a.ts", []float64{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/a.ts:close", "close", "src/a.ts", []float64{0.9, 0.1, 0})))
	require.NoError(t, store.Upsert(ctx, record("src/a.ts:far", "far", "src/a.ts", []float64{0, 1, 0})))

	results, err := store.Search(ctx, []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "src/a.ts:exact", results[0].ID())
	assert.Equal(t, "src/a.ts:close", results[1].ID())
	assert.InDelta(t, 1.0, results[0].Score(), 0.001, "zero distance maps to score 1")
	assert.Greater(t, results[0].Score(), results[1].Score())
	for _, r := range results {
		assert.Greater(t, r.Score(), 0.0)
		assert.LessOrEqual(t, r.Score(), 1.0)
	}
}

func TestSearch_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var verr *index.ValidationError

	_, err := store.Search(ctx, []float64{1, 0, 0}, 0)
	assert.ErrorAs(t, err, &verr, "limit must be positive")

	_, err = store.Search(ctx, nil, 5)
	assert.ErrorAs(t, err, &verr, "vector must not be empty")

	_, err = store.Search(ctx, []float64{1, 0}, 5)
	assert.ErrorAs(t, err, &verr, "dimension mismatch must be rejected")
}

func TestInitialize_Concurrent(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Initialize(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "initializer %d", i)
	}
}

func TestInitialize_SchemaVersionMismatchRecreatesTable(t *testing.T) {
	db := testdb.New(t)
	ctx := context.Background()

	first := NewEmbeddingStore(db, testConfig(), nil)
	require.NoError(t, first.Initialize(ctx))
	require.NoError(t, first.Upsert(ctx, record("src/a.ts:foo", "text", "src/a.ts", []float64{1, 0, 0})))

	// Simulate a table written by an incompatible release.
	require.NoError(t, db.GORM().
		Exec("UPDATE docvec_meta SET value = '999' WHERE key = 'schema_version'").Error)

	second := NewEmbeddingStore(db, testConfig(), nil)
	require.NoError(t, second.Initialize(ctx))

	ids, err := second.IDsByFilePath(ctx, "src/a.ts")
	require.NoError(t, err)
	assert.Empty(t, ids, "incompatible table must be dropped and recreated")

	// The marker is rewritten so the next start does not drop again.
	require.NoError(t, first.Upsert(ctx, record("src/a.ts:foo", "text", "src/a.ts", []float64{1, 0, 0})))
	third := NewEmbeddingStore(db, testConfig(), nil)
	require.NoError(t, third.Initialize(ctx))
	ids, err = third.IDsByFilePath(ctx, "src/a.ts")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

// brokenDatabase returns a handle whose connection pool is already closed,
// so every operation fails with a connection-class error.
func brokenDatabase(t *testing.T) database.Database {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.db")
	db, err := database.NewDatabase(context.Background(), path)
	if err != nil {
		t.Fatalf("open broken db: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close broken db: %v", err)
	}
	return db
}

// flakyDatabase serves broken sessions for the first `failures` calls once
// armed, then healthy ones. Initialization goes through the healthy handle
// so only the operation under test sees failures.
type flakyDatabase struct {
	healthy  database.Database
	broken   database.Database
	failures int
	armed    bool
	mu       sync.Mutex
}

func (f *flakyDatabase) Session(ctx context.Context) *gorm.DB {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.armed && f.failures > 0 {
		f.failures--
		return f.broken.Session(ctx)
	}
	return f.healthy.Session(ctx)
}

func (f *flakyDatabase) GORM() *gorm.DB { return f.healthy.GORM() }

func (f *flakyDatabase) Close() error { return f.healthy.Close() }
