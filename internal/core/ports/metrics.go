package ports

import (
	"time"

	"go.trai.ch/protanno/internal/core/domain"
)

// Metrics records run counters.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// ObserveFetch records one source call with its size, failures and duration.
	ObserveFetch(source domain.Source, identifiers, failed int, elapsed time.Duration)
	// ObserveOutage records a source that failed completely.
	ObserveOutage(source domain.Source)
	// ObserveCacheLookup records a cache hit or miss.
	ObserveCacheLookup(hit bool)
	// Flush writes the collected metrics to path in text exposition format.
	// An empty path writes nothing.
	Flush(path string) error
}
