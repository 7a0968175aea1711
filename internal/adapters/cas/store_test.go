package cas_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/adapters/cas"
	"go.trai.ch/protanno/internal/core/domain"
)

func newSet() (domain.IdentifierSet, domain.CacheKey) {
	set := domain.NewIdentifierSet([]string{"P1", "P2"})
	return set, domain.ComputeCacheKey(set)
}

func TestStore_GetMissing(t *testing.T) {
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)
	_, key := newSet()

	entry, err := store.Get(context.Background(), key)

	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestStore_PutMergesAndPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	set, key := newSet()

	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	_, err = store.Put(ctx, key, set, domain.CacheDelta{
		Fields: []string{"reviewed"},
		Table:  domain.Table{"P1": {"reviewed": "Swiss-Prot"}, "P2": {"reviewed": "TrEMBL"}},
	})
	require.NoError(t, err)

	merged, err := store.Put(ctx, key, set, domain.CacheDelta{
		Fields: []string{"kingdom"},
		Table:  domain.Table{"P1": {"kingdom": "Metazoa"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kingdom", "reviewed"}, merged.Present())
	require.NoError(t, store.Close())

	// A new store instance sees the same entry.
	reopened, err := cas.NewStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Swiss-Prot", got.Table.Value("P1", "reviewed"))
	assert.Equal(t, "Metazoa", got.Table.Value("P1", "kingdom"))
	assert.Equal(t, "", got.Table.Value("P2", "kingdom"))
	assert.True(t, got.Has("kingdom"))
	assert.FileExists(t, filepath.Join(dir, key.String()+".json"))
}

func TestStore_ConcurrentPutsAreSerialized(t *testing.T) {
	ctx := context.Background()
	set, key := newSet()
	store, err := cas.NewStore(t.TempDir())
	require.NoError(t, err)

	fields := []string{"ec", "keyword", "reviewed", "kingdom", "phylum", "pfam", "cath", "smart"}
	var wg sync.WaitGroup
	for _, f := range fields {
		wg.Go(func() {
			_, err := store.Put(ctx, key, set, domain.CacheDelta{
				Fields: []string{f},
				Table:  domain.Table{"P1": {f: "v"}},
			})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Len(t, got.Present(), len(fields), "no write is lost")
}

func TestStore_Corruption(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	set, key := newSet()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	t.Run("undecodable document", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, key.String()+".json"), []byte("{not json"), domain.FilePerm))

		_, err := store.Get(ctx, key)

		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindCacheCorruption))
	})

	t.Run("partial field", func(t *testing.T) {
		doc := `{"key":"` + key.String() + `","identifiers":["P1","P2"],"fields":["ec"],"table":{"P1":{"ec":"1.1.1.1"}}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, key.String()+".json"), []byte(doc), domain.FilePerm))

		_, err := store.Get(ctx, key)

		require.Error(t, err)
		assert.True(t, domain.IsKind(err, domain.KindCacheCorruption))
		assert.ErrorContains(t, err, domain.ErrEntryPartialField.Error())
	})

	t.Run("invalidate then rebuild", func(t *testing.T) {
		require.NoError(t, store.Invalidate(ctx, key))
		require.NoError(t, store.Invalidate(ctx, key), "missing entry is not an error")

		entry, err := store.Put(ctx, key, set, domain.CacheDelta{Fields: []string{"ec"}, Table: domain.Table{}})
		require.NoError(t, err)
		assert.True(t, entry.Has("ec"))
	})
}

func TestStore_PutHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	set, key := newSet()
	store, err := cas.NewStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Put(ctx, key, set, domain.CacheDelta{Fields: []string{"ec"}, Table: domain.Table{}})
	require.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is written for a cancelled put")
}
