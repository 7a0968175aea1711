package commands

import (
	"time"

	"github.com/spf13/pflag"
	"go.trai.ch/protanno/internal/app"
	"go.trai.ch/protanno/internal/core/domain"
)

// inputFlags select the identifiers of a command.
type inputFlags struct {
	idsFile string
	csvPath string
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.idsFile, "ids", "i", "", "File with identifiers, one per line, or FASTA")
	fs.StringVar(&f.csvPath, "csv", "", "Annotation table whose first column holds identifiers")
}

func (f *inputFlags) input(args []string) app.Input {
	return app.Input{Identifiers: args, IdentifiersFile: f.idsFile, CSVPath: f.csvPath}
}

// settingsFlags overlay the loaded settings. Only flags set on the command
// line take effect.
type settingsFlags struct {
	fields        []string
	force         bool
	stripEvidence bool
	retainCache   bool
	delimiter     string
	backend       string
	cacheDir      string
	workers       int
	timeout       time.Duration
	metricsFile   string
	trace         bool
}

func (f *settingsFlags) registerCache(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "cache-backend", domain.BackendFile, "Cache backend: file or sqlite")
	fs.StringVar(&f.cacheDir, "cache-dir", domain.DefaultCachePath(), "Cache directory")
	fs.StringVarP(&f.delimiter, "delimiter", "d", ",", "Table delimiter")
}

func (f *settingsFlags) registerRun(fs *pflag.FlagSet) {
	f.registerCache(fs)
	fs.StringSliceVarP(&f.fields, "fields", "F", nil, "Fields or groups to annotate (default group when empty)")
	fs.BoolVarP(&f.force, "force", "f", false, "Refetch every requested field, bypassing the cache")
	fs.BoolVar(&f.stripEvidence, "strip-evidence", false, "Remove evidence codes from the output")
	fs.BoolVar(&f.retainCache, "retain-cache", true, "Keep the cache entry after writing the output")
	fs.IntVarP(&f.workers, "workers", "w", 4, "Concurrent requests per source")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "Timeout of one source request")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	fs.BoolVar(&f.trace, "trace", false, "Log finished spans")
}

func (f *settingsFlags) override(fs *pflag.FlagSet) func(*domain.Settings) {
	return func(s *domain.Settings) {
		if fs.Changed("fields") {
			s.Fields = f.fields
		}
		if fs.Changed("force") {
			s.ForceRefresh = f.force
		}
		if fs.Changed("strip-evidence") {
			s.StripEvidence = f.stripEvidence
		}
		if fs.Changed("retain-cache") {
			s.RetainCache = f.retainCache
		}
		if fs.Changed("delimiter") {
			s.Delimiter = f.delimiter
		}
		if fs.Changed("cache-backend") {
			s.Cache.Backend = f.backend
		}
		if fs.Changed("cache-dir") {
			s.Cache.Dir = f.cacheDir
		}
		if fs.Changed("workers") {
			s.Sources.Workers = f.workers
		}
		if fs.Changed("timeout") {
			s.Sources.Timeout = f.timeout
		}
		if fs.Changed("metrics-file") {
			s.MetricsFile = f.metricsFile
		}
		if fs.Changed("trace") {
			s.Trace = f.trace
		}
	}
}
