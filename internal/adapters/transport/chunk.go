package transport

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// ChunkFailure is a chunk whose request failed after retries.
type ChunkFailure[T any] struct {
	Items []T
	Err   error
}

// Chunks runs fn over items split into chunks of at most size, with up to
// workers chunks in flight. A failing chunk never stops the others. The
// returned failures are in chunk order.
//
// When every chunk failed the joined error is returned as ErrSourceOutage.
func Chunks[T any](ctx context.Context, items []T, size, workers int, fn func(context.Context, []T) error) ([]ChunkFailure[T], error) {
	if len(items) == 0 {
		return nil, nil
	}
	parts := slices.Collect(slices.Chunk(items, max(size, 1)))

	var (
		mu     sync.Mutex
		failed = make(map[int]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, part := range parts {
		g.Go(func() error {
			if err := fn(gctx, part); err != nil {
				mu.Lock()
				failed[i] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := make([]ChunkFailure[T], 0, len(failed))
	errs := make([]error, 0, len(failed))
	for i, part := range parts {
		if err, ok := failed[i]; ok {
			failures = append(failures, ChunkFailure[T]{Items: part, Err: err})
			errs = append(errs, err)
		}
	}

	if len(failures) == len(parts) {
		return failures, zerr.With(zerr.Wrap(errors.Join(errs...), domain.ErrSourceOutage.Error()), "chunks", len(parts))
	}
	return failures, nil
}
