package config

import (
	"time"

	"go.trai.ch/protanno/internal/core/domain"
)

// File is the structure of protanno.yaml. Every key is optional and can also be
// set through a PROTANNO_ prefixed environment variable.
type File struct {
	Fields        []string `yaml:"fields"         env:"FIELDS"         envSeparator:","`
	ForceRefresh  bool     `yaml:"force_refresh"  env:"FORCE_REFRESH"`
	StripEvidence bool     `yaml:"strip_evidence" env:"STRIP_EVIDENCE"`
	RetainCache   bool     `yaml:"retain_cache"   env:"RETAIN_CACHE"`
	Delimiter     string   `yaml:"delimiter"      env:"DELIMITER"`
	MetricsFile   string   `yaml:"metrics_file"   env:"METRICS_FILE"`
	Trace         bool     `yaml:"trace"          env:"TRACE"`

	Cache   CacheDTO   `yaml:"cache"   envPrefix:"CACHE_"`
	Sources SourcesDTO `yaml:"sources" envPrefix:"SOURCES_"`
}

// CacheDTO configures the cache store.
type CacheDTO struct {
	Backend string `yaml:"backend" env:"BACKEND"`
	Dir     string `yaml:"dir"     env:"DIR"`
}

// SourcesDTO configures the source clients.
type SourcesDTO struct {
	UniProtURL  string        `yaml:"uniprot_url"  env:"UNIPROT_URL"`
	InterProURL string        `yaml:"interpro_url" env:"INTERPRO_URL"`
	TaxonomyURL string        `yaml:"taxonomy_url" env:"TAXONOMY_URL"`
	Workers     int           `yaml:"workers"      env:"WORKERS"`
	Timeout     time.Duration `yaml:"timeout"      env:"TIMEOUT"`
	MaxAttempts int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	BackoffUnit time.Duration `yaml:"backoff_unit" env:"BACKOFF_UNIT"`
	MaxBackoff  time.Duration `yaml:"max_backoff"  env:"MAX_BACKOFF"`
}

func fromSettings(s domain.Settings) File {
	return File{
		Fields:        s.Fields,
		ForceRefresh:  s.ForceRefresh,
		StripEvidence: s.StripEvidence,
		RetainCache:   s.RetainCache,
		Delimiter:     s.Delimiter,
		MetricsFile:   s.MetricsFile,
		Trace:         s.Trace,
		Cache:         CacheDTO{Backend: s.Cache.Backend, Dir: s.Cache.Dir},
		Sources: SourcesDTO{
			UniProtURL:  s.Sources.UniProtURL,
			InterProURL: s.Sources.InterProURL,
			TaxonomyURL: s.Sources.TaxonomyURL,
			Workers:     s.Sources.Workers,
			Timeout:     s.Sources.Timeout,
			MaxAttempts: s.Sources.MaxAttempts,
			BackoffUnit: s.Sources.BackoffUnit,
			MaxBackoff:  s.Sources.MaxBackoff,
		},
	}
}

func (f *File) settings() domain.Settings {
	return domain.Settings{
		Fields:        f.Fields,
		ForceRefresh:  f.ForceRefresh,
		StripEvidence: f.StripEvidence,
		RetainCache:   f.RetainCache,
		Delimiter:     f.Delimiter,
		MetricsFile:   f.MetricsFile,
		Trace:         f.Trace,
		Cache:         domain.CacheSettings{Backend: f.Cache.Backend, Dir: f.Cache.Dir},
		Sources: domain.SourceSettings{
			UniProtURL:  f.Sources.UniProtURL,
			InterProURL: f.Sources.InterProURL,
			TaxonomyURL: f.Sources.TaxonomyURL,
			Workers:     f.Sources.Workers,
			Timeout:     f.Sources.Timeout,
			MaxAttempts: f.Sources.MaxAttempts,
			BackoffUnit: f.Sources.BackoffUnit,
			MaxBackoff:  f.Sources.MaxBackoff,
		},
	}
}
