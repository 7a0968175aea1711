package domain

import (
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.trai.ch/zerr"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default source endpoints.
const (
	DefaultUniProtURL  = "https://rest.uniprot.org"
	DefaultInterProURL = "https://www.ebi.ac.uk/interpro/matches/api"
	DefaultTaxonomyURL = "https://rest.uniprot.org"
)

// Settings is the resolved run configuration.
type Settings struct {
	Fields        []string
	ForceRefresh  bool
	StripEvidence bool
	RetainCache   bool
	Delimiter     string

	Cache   CacheSettings
	Sources SourceSettings

	MetricsFile string
	Trace       bool
}

// CacheSettings selects and locates the cache store.
type CacheSettings struct {
	Backend string
	Dir     string
}

// Path returns the cache directory, falling back to DefaultCachePath when Dir
// is empty.
func (c CacheSettings) Path() string {
	if c.Dir == "" {
		return DefaultCachePath()
	}
	return filepath.Clean(c.Dir)
}

// SourceSettings configures the network clients.
type SourceSettings struct {
	UniProtURL  string
	InterProURL string
	TaxonomyURL string
	Workers     int
	Timeout     time.Duration
	MaxAttempts int
	// BackoffUnit scales the retry schedule. Each schedule step is a multiple of it.
	BackoffUnit time.Duration
	MaxBackoff  time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Fields:      []string{"default"},
		RetainCache: true,
		Delimiter:   ",",
		Cache: CacheSettings{
			Backend: BackendFile,
			Dir:     DefaultCachePath(),
		},
		Sources: SourceSettings{
			UniProtURL:  DefaultUniProtURL,
			InterProURL: DefaultInterProURL,
			TaxonomyURL: DefaultTaxonomyURL,
			Workers:     4,
			Timeout:     30 * time.Second,
			MaxAttempts: 4,
			BackoffUnit: time.Second,
			MaxBackoff:  time.Minute,
		},
	}
}

// DelimiterRune returns the delimiter as a rune. Validate must have passed.
func (s Settings) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(s.Delimiter)
	return r
}

// Validate reports the first invalid setting as a configuration error.
func (s Settings) Validate() error {
	if utf8.RuneCountInString(s.Delimiter) != 1 {
		return Classify(KindConfiguration, zerr.With(ErrInvalidDelimiter, "delimiter", s.Delimiter))
	}
	if _, err := ExpandFields(s.Fields); err != nil {
		return err
	}
	switch s.Cache.Backend {
	case BackendFile, BackendSQLite:
	default:
		return Classify(KindConfiguration, zerr.With(ErrUnknownCacheBackend, "backend", s.Cache.Backend))
	}
	if s.Sources.Workers <= 0 {
		return Classify(KindConfiguration, zerr.With(ErrInvalidWorkers, "workers", s.Sources.Workers))
	}
	if s.Sources.Timeout <= 0 {
		return Classify(KindConfiguration, zerr.With(ErrInvalidTimeout, "timeout", s.Sources.Timeout.String()))
	}
	return nil
}
