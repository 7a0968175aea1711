// Package storage opens the configured cache backend.
package storage

import (
	"context"

	"go.trai.ch/protanno/internal/adapters/cas"
	"go.trai.ch/protanno/internal/adapters/sqlite"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/zerr"
)

// Opener implements ports.StoreOpener.
type Opener struct{}

var _ ports.StoreOpener = (*Opener)(nil)

// NewOpener creates an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open returns the file store or the SQLite store rooted at settings.Dir.
func (o *Opener) Open(ctx context.Context, settings domain.CacheSettings) (ports.CacheStore, error) {
	dir := settings.Path()

	switch settings.Backend {
	case domain.BackendFile, "":
		store, err := cas.NewStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	case domain.BackendSQLite:
		store, err := sqlite.NewStore(ctx, domain.SQLitePath(dir))
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, domain.Classify(domain.KindConfiguration,
			zerr.With(domain.ErrUnknownCacheBackend, "backend", settings.Backend))
	}
}
