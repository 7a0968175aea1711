// Package app implements the application layer for protanno.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/protanno/internal/adapters/telemetry" //nolint:depguard // Trace switch lives in the app layer
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/protanno/internal/engine/acquisition"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	engine       *acquisition.Engine
	opener       ports.StoreOpener
	sources      ports.SourceFactory
	reader       ports.TableReader
	writer       ports.TableWriter
	metrics      ports.Metrics
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	engine *acquisition.Engine,
	opener ports.StoreOpener,
	sources ports.SourceFactory,
	reader ports.TableReader,
	writer ports.TableWriter,
	metrics ports.Metrics,
	logger ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		engine:       engine,
		opener:       opener,
		sources:      sources,
		reader:       reader,
		writer:       writer,
		metrics:      metrics,
		logger:       logger,
	}
}

// Input selects where identifiers come from.
type Input struct {
	// Identifiers given directly, e.g. as arguments.
	Identifiers []string
	// IdentifiersFile is a plain list or a FASTA file.
	IdentifiersFile string
	// CSVPath is an annotation table. Its first column supplies identifiers
	// when no other source does.
	CSVPath string
}

// AnnotateOptions configures one annotate run.
type AnnotateOptions struct {
	Input
	ConfigPath string
	// OutputPath receives the table. Empty means Stdout.
	OutputPath string
	Stdout     io.Writer
	// Override is applied to the loaded settings, e.g. for command line flags.
	Override func(*domain.Settings)
}

// CleanOptions configures the clean command.
type CleanOptions struct {
	Input
	ConfigPath string
	Override   func(*domain.Settings)
}

// Annotate runs one annotation request and writes the resulting table.
func (a *App) Annotate(ctx context.Context, opts AnnotateOptions) (*domain.RunReport, error) {
	settings, err := a.settings(opts.ConfigPath, opts.Override)
	if err != nil {
		return nil, err
	}
	fields, err := domain.ExpandFields(settings.Fields)
	if err != nil {
		return nil, err
	}

	if settings.Trace {
		shutdown := telemetry.InstallLogging(a.logger)
		defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()
	}

	ids, csv, err := a.identifiers(opts.Input, settings.DelimiterRune())
	if err != nil {
		return nil, err
	}

	store, err := a.opener.Open(ctx, settings.Cache)
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	res, err := a.engine.Run(ctx, acquisition.Request{
		Identifiers:   ids,
		Fields:        fields,
		Force:         settings.ForceRefresh,
		StripEvidence: settings.StripEvidence,
		CSV:           csv,
		Store:         store,
		Sources:       a.sources.NewSources(settings.Sources),
	})
	if err != nil {
		return nil, zerr.Wrap(err, "annotation run failed")
	}

	if err := a.write(res.Output, opts, settings.DelimiterRune()); err != nil {
		return nil, err
	}

	if !settings.RetainCache {
		if err := store.Invalidate(ctx, res.Report.Key); err != nil {
			return nil, err
		}
	}
	if err := a.metrics.Flush(settings.MetricsFile); err != nil {
		return nil, err
	}

	report := res.Report
	a.logger.Info(summary(&report))
	return &report, nil
}

// Clean removes cached annotations. With identifiers, only the entry of that
// identifier set is invalidated. Otherwise the whole cache directory goes.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	settings, err := a.settings(opts.ConfigPath, opts.Override)
	if err != nil {
		return err
	}

	ids, _, err := a.identifiers(opts.Input, settings.DelimiterRune())
	if err != nil {
		return err
	}
	set := domain.NewIdentifierSet(ids)
	if set.Len() == 0 {
		dir := settings.Cache.Path()
		if err := os.RemoveAll(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrCacheCleanFailed.Error()), "dir", dir)
		}
		a.logger.Info("removed " + dir)
		return nil
	}

	store, err := a.opener.Open(ctx, settings.Cache)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	key := domain.ComputeCacheKey(set)
	if err := store.Invalidate(ctx, key); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("invalidated %s (%d identifiers)", key, set.Len()))
	return nil
}

// settings loads the configuration and applies override on top.
func (a *App) settings(path string, override func(*domain.Settings)) (domain.Settings, error) {
	if path == "" {
		path = domain.ConfigFileName
	}
	settings, err := a.configLoader.Load(path)
	if err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}
	if override == nil {
		return settings, nil
	}
	override(&settings)
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// identifiers collects identifiers from every input in order: arguments, the
// identifier file, then the CSV when nothing else named any.
func (a *App) identifiers(in Input, delimiter rune) ([]string, *domain.AnnotationTable, error) {
	ids := append([]string(nil), in.Identifiers...)
	if in.IdentifiersFile != "" {
		fromFile, err := a.reader.ReadIdentifiers(in.IdentifiersFile)
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, fromFile...)
	}

	var csv *domain.AnnotationTable
	if in.CSVPath != "" {
		table, err := a.reader.ReadAnnotations(in.CSVPath, delimiter)
		if err != nil {
			return nil, nil, err
		}
		csv = table
		if len(ids) == 0 {
			for _, id := range table.Order {
				ids = append(ids, string(id))
			}
		}
	}
	return ids, csv, nil
}

func (a *App) write(out *domain.OutputTable, opts AnnotateOptions, delimiter rune) error {
	if opts.OutputPath == "" {
		w := opts.Stdout
		if w == nil {
			w = os.Stdout
		}
		return a.writer.Write(w, out, delimiter)
	}

	path := filepath.Clean(opts.OutputPath)
	f, err := os.Create(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrOutputCreateFailed.Error()), "path", path)
	}
	if err := a.writer.Write(f, out, delimiter); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTableWriteFailed.Error()), "path", path)
	}
	return nil
}

func summary(r *domain.RunReport) string {
	s := fmt.Sprintf("annotated %d identifiers", r.Rows)
	switch {
	case r.CacheHit:
		s += " from cache"
	case len(r.Fetched) > 0:
		s += fmt.Sprintf(" (%d sources called)", len(r.Fetched))
	}
	if r.Failed > 0 {
		s += fmt.Sprintf(", %d unresolved", r.Failed)
	}
	if r.Repaired {
		s += ", cache repaired"
	}
	return s
}
