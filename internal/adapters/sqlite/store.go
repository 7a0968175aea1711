// Package sqlite implements the CacheStore port on a single SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/protanno/internal/adapters/keylock"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	updated_at INTEGER NOT NULL
)`

// Store keeps every cache entry as a JSON payload in the entries table.
type Store struct {
	db    *sql.DB
	path  string
	locks keylock.Map[domain.CacheKey]
	now   func() time.Time
}

var _ ports.CacheStore = (*Store)(nil)

// NewStore opens or creates the database at path.
func NewStore(ctx context.Context, path string) (*Store, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", clean)
	}
	db, err := sql.Open("sqlite", clean)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", clean)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreCreateFailed.Error()), "path", clean)
	}
	return &Store{db: db, path: clean, now: time.Now}, nil
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry for key, or nil, nil when absent.
func (s *Store) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	unlock := s.locks.Lock(key)
	defer unlock()
	return read(ctx, s.db, key)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func read(ctx context.Context, q queryer, key domain.CacheKey) (*domain.CacheEntry, error) {
	var payload []byte
	err := q.QueryRowContext(ctx, `SELECT payload FROM entries WHERE key = ?`, key.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, domain.Classify(domain.KindCacheCorruption,
			zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "key", key.String()))
	}
	if err := entry.Validate(key); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put merges delta into the stored entry inside one transaction.
func (s *Store) Put(
	ctx context.Context,
	key domain.CacheKey,
	set domain.IdentifierSet,
	delta domain.CacheDelta,
) (_ *domain.CacheEntry, retErr error) {
	unlock := s.locks.Lock(key)
	defer unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	entry, err := read(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = domain.NewCacheEntry(key, set)
	}
	now := s.now().UTC()
	entry.Merge(delta, now)

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entries (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key.String(), payload, now.Unix(),
	); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tx.Commit(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return entry, nil
}

// Invalidate deletes the entry for key.
func (s *Store) Invalidate(ctx context.Context, key domain.CacheKey) error {
	unlock := s.locks.Lock(key)
	defer unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE key = ?`, key.String()); err != nil {
		return zerr.Wrap(err, domain.ErrStoreInvalidateFailed.Error())
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
