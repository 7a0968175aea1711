// Package cas implements the CacheStore port with one JSON document per
// identifier-set digest.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/protanno/internal/adapters/keylock"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

const entryExt = ".json"

// Store keeps each cache entry in <dir>/<key>.json.
type Store struct {
	dir   string
	locks keylock.Map[domain.CacheKey]
	now   func() time.Time
}

var _ ports.CacheStore = (*Store)(nil)

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	clean := filepath.Clean(dir)
	if err := os.MkdirAll(clean, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "dir", clean)
	}
	return &Store{dir: clean, now: time.Now}, nil
}

// Dir returns the directory holding the entries.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(key domain.CacheKey) string {
	return filepath.Join(s.dir, key.String()+entryExt)
}

// Get returns the entry for key, or nil, nil when absent.
func (s *Store) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(key)
	defer unlock()
	return s.read(key)
}

func (s *Store) read(key domain.CacheKey) (*domain.CacheEntry, error) {
	//nolint:gosec // Path is built from the store dir and a hex digest.
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, domain.Classify(domain.KindCacheCorruption,
			zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String()))
	}
	if err := entry.Validate(key); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put merges delta into the stored entry under the key lock and writes the
// result atomically.
func (s *Store) Put(
	ctx context.Context,
	key domain.CacheKey,
	set domain.IdentifierSet,
	delta domain.CacheDelta,
) (*domain.CacheEntry, error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	entry, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = domain.NewCacheEntry(key, set)
	}
	entry.Merge(delta, s.now().UTC())

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	// A cancelled run must not leave a partial field behind.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := atomicWriteFile(s.path(key), data); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return entry, nil
}

// Invalidate removes the entry for key.
func (s *Store) Invalidate(_ context.Context, key domain.CacheKey) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrStoreInvalidateFailed.Error())
	}
	return nil
}

// Close releases the store. Every Put is durable when it returns.
func (s *Store) Close() error {
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temp file and renaming it.
func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(dir, "entry-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}

	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
