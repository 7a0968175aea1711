package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/protanno/internal/adapters/cas"
	"go.trai.ch/protanno/internal/adapters/sqlite"
	"go.trai.ch/protanno/internal/adapters/storage"
	"go.trai.ch/protanno/internal/core/domain"
)

func TestOpener_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("file backend", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewOpener().Open(ctx, domain.CacheSettings{Backend: domain.BackendFile, Dir: dir})
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		fileStore, ok := store.(*cas.Store)
		require.True(t, ok)
		assert.Equal(t, dir, fileStore.Dir())
	})

	t.Run("sqlite backend", func(t *testing.T) {
		dir := t.TempDir()
		store, err := storage.NewOpener().Open(ctx, domain.CacheSettings{Backend: domain.BackendSQLite, Dir: dir})
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		dbStore, ok := store.(*sqlite.Store)
		require.True(t, ok)
		assert.Equal(t, filepath.Join(dir, domain.SQLiteFileName), dbStore.Path())
		assert.FileExists(t, dbStore.Path())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := storage.NewOpener().Open(ctx, domain.CacheSettings{Backend: "redis", Dir: t.TempDir()})

		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrUnknownCacheBackend.Error())
		assert.True(t, domain.IsKind(err, domain.KindConfiguration))
	})
}
