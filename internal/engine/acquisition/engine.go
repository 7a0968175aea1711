// Package acquisition runs one annotation request end to end: cache lookup,
// delta planning, staged source fetches, cache update and merge.
package acquisition

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/protanno/internal/engine/merge"
	"go.trai.ch/protanno/internal/engine/planner"
	"go.trai.ch/protanno/internal/engine/transform"
	"go.trai.ch/zerr"
)

// Engine executes annotation runs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	tracer  ports.Tracer
	metrics ports.Metrics
	logger  ports.Logger
}

// New creates an Engine.
func New(tracer ports.Tracer, metrics ports.Metrics, logger ports.Logger) *Engine {
	return &Engine{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Request describes one run.
type Request struct {
	// Identifiers in input order. Blanks are skipped and repeats collapse.
	Identifiers []string
	// Fields is the expanded field request.
	Fields        []domain.Field
	Force         bool
	StripEvidence bool
	// CSV is an optional user table merged into the output.
	CSV *domain.AnnotationTable

	Store   ports.CacheStore
	Sources []ports.SourceClient
}

// Result is the outcome of a successful run.
type Result struct {
	Output  *domain.OutputTable
	Report  domain.RunReport
	History []domain.RunState
}

// Run executes req. The returned error is nil only when the run reached DONE.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "annotate",
		ports.WithAttribute("identifiers", len(req.Identifiers)),
		ports.WithAttribute("fields", domain.FieldNames(req.Fields)),
	)
	defer span.End()

	r := &run{
		Engine:  e,
		req:     req,
		span:    span,
		machine: domain.NewRunMachine(),
		clients: make(map[domain.Source]ports.SourceClient, len(req.Sources)),
		failed:  make(map[domain.Identifier]struct{}),
		report:  domain.RunReport{Fetched: make(map[domain.Source][]string)},
	}
	for _, c := range req.Sources {
		r.clients[c.Source()] = c
	}

	out, err := r.execute(ctx)
	if err != nil {
		r.machine.Fail()
		span.SetAttribute("run.state", r.machine.State().String())
		span.RecordError(err)
		return nil, err
	}

	r.report.State = r.machine.State()
	r.report.Rows = len(out.Rows)
	return &Result{Output: out, Report: r.report, History: r.machine.History()}, nil
}

// run holds the state of one execution.
type run struct {
	*Engine
	req     Request
	span    ports.Span
	machine *domain.RunMachine
	clients map[domain.Source]ports.SourceClient

	set   domain.IdentifierSet
	key   domain.CacheKey
	entry *domain.CacheEntry

	failed map[domain.Identifier]struct{}
	report domain.RunReport
}

// advance checks for cancellation and moves the machine to next.
func (r *run) advance(ctx context.Context, next domain.RunState) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.machine.Advance(next); err != nil {
		return err
	}
	r.span.SetAttribute("run.state", next.String())
	r.span.SetAttribute("run.history", stateNames(r.machine.History()))
	return nil
}

func (r *run) execute(ctx context.Context) (*domain.OutputTable, error) {
	order := ordered(r.req.Identifiers)
	if len(order) == 0 {
		return nil, domain.Classify(domain.KindConfiguration, domain.ErrNoIdentifiers)
	}
	r.set = domain.NewIdentifierSet(r.req.Identifiers)
	r.key = domain.ComputeCacheKey(r.set)
	r.report.Key = r.key
	r.span.SetAttribute("cache.key", r.key.String())
	if err := r.advance(ctx, domain.StateKeyComputed); err != nil {
		return nil, err
	}

	if r.req.Force {
		if err := r.req.Store.Invalidate(ctx, r.key); err != nil {
			return nil, err
		}
	}
	if err := r.lookup(ctx); err != nil {
		return nil, err
	}
	if err := r.advance(ctx, domain.StateLookedUp); err != nil {
		return nil, err
	}

	if err := r.acquire(ctx); err != nil {
		return nil, err
	}

	r.report.Failed = len(r.failed)
	if r.report.Failed > 0 {
		r.logger.Warn(fmt.Sprintf("%d of %d identifiers could not be resolved", r.report.Failed, r.set.Len()))
	}

	output := planner.WithAlwaysIncluded(r.req.Fields)
	r.report.Dropped = r.unavailable(output)
	if len(r.report.Dropped) > 0 {
		r.logger.Warn("dropped fields: " + strings.Join(r.report.Dropped, ", "))
	}

	var derived []string
	for _, f := range output {
		if f.Source == domain.SourceDerived && !slices.Contains(r.report.Dropped, f.Name) {
			derived = append(derived, f.Name)
		}
	}
	table := r.table()

	if err := r.advance(ctx, domain.StateMerged); err != nil {
		return nil, err
	}
	out := merge.Assemble(merge.Input{
		Identifiers:   order,
		Table:         table,
		Fields:        r.req.Fields,
		Derived:       transform.Derive(r.set.Slice(), table, derived),
		CSV:           r.req.CSV,
		StripEvidence: r.req.StripEvidence,
		Dropped:       r.report.Dropped,
	})

	if err := r.advance(ctx, domain.StateDone); err != nil {
		return nil, err
	}
	return out, nil
}

// lookup loads the entry, repairing a corrupted one.
func (r *run) lookup(ctx context.Context) error {
	entry, err := r.req.Store.Get(ctx, r.key)
	if domain.IsKind(err, domain.KindCacheCorruption) {
		return r.repair(ctx, err)
	}
	if err != nil {
		return err
	}
	r.entry = entry
	return nil
}

// repair invalidates a corrupted entry. Only one repair is allowed per run.
func (r *run) repair(ctx context.Context, cause error) error {
	if r.report.Repaired {
		err := zerr.With(zerr.Wrap(cause, domain.ErrCacheRepairFailed.Error()), "key", r.key.String())
		return domain.Classify(domain.KindCacheCorruption, err)
	}
	r.logger.Warn(fmt.Sprintf("cache entry %s is corrupted, refetching", r.key))
	if err := r.req.Store.Invalidate(ctx, r.key); err != nil {
		return err
	}
	r.report.Repaired = true
	r.entry = nil
	return nil
}

// acquire plans and fetches until the requested fields are cached or
// unavailable. A corrupted write re-enters the lookup once.
func (r *run) acquire(ctx context.Context) error {
	force := r.req.Force
	first := true
	for {
		plan := planner.New(r.req.Fields, r.entry, force)
		force = false

		if first {
			r.report.CacheHit = plan.Empty()
			r.metrics.ObserveCacheLookup(plan.Empty())
			first = false
		}
		if plan.Empty() {
			return r.advance(ctx, domain.StateHitComplete)
		}
		if err := r.advance(ctx, domain.StateDeltaComputed); err != nil {
			return err
		}
		r.span.SetAttribute("plan.missing", plan.Missing())
		r.tracer.EmitPlan(ctx, plan.Summary())

		err := r.fetch(ctx, plan)
		if !domain.IsKind(err, domain.KindCacheCorruption) {
			return err
		}
		if err := r.repair(ctx, err); err != nil {
			return err
		}
		if err := r.advance(ctx, domain.StateCacheUpdated); err != nil {
			return err
		}
		if err := r.advance(ctx, domain.StateLookedUp); err != nil {
			return err
		}
	}
}

// unavailable lists the output fields with no cached values after the fetch.
// A derived field is unavailable when any of its inputs is.
func (r *run) unavailable(fields []domain.Field) []string {
	var out []string
	for _, f := range fields {
		if f.Source == domain.SourceDerived {
			if slices.ContainsFunc(f.Requires, func(in string) bool { return !r.entry.Has(in) }) {
				out = append(out, f.Name)
			}
			continue
		}
		if !r.entry.Has(f.Name) {
			out = append(out, f.Name)
		}
	}
	return out
}

func (r *run) table() domain.Table {
	if r.entry == nil {
		return domain.Table{}
	}
	return r.entry.Table
}

// ordered returns raw as identifiers in first-occurrence order.
func ordered(raw []string) []domain.Identifier {
	seen := make(map[domain.Identifier]struct{}, len(raw))
	out := make([]domain.Identifier, 0, len(raw))
	for _, s := range raw {
		id := domain.Identifier(strings.TrimSpace(s))
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func stateNames(states []domain.RunState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = s.String()
	}
	return out
}
