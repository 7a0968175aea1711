package acquisition

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/protanno/internal/engine/planner"
	"go.trai.ch/protanno/internal/engine/resolver"
	"go.trai.ch/protanno/internal/engine/transform"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// outcome is the result of one partition in a stage.
type outcome struct {
	part   planner.Partition
	result *ports.FetchResult
	err    error
	// skipped partitions were not called because an input is unavailable.
	skipped bool
	raw     map[domain.Identifier]domain.RawRecord
}

// fetch runs the plan stage by stage. Each stage ends with its deltas stored,
// so later stages read their inputs from the updated entry.
func (r *run) fetch(ctx context.Context, plan planner.Plan) error {
	for _, stage := range plan.Stages {
		if err := r.advance(ctx, domain.StateFetching); err != nil {
			return err
		}
		outcomes := r.fetchStage(ctx, stage)
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := r.advance(ctx, domain.StateTransforming); err != nil {
			return err
		}
		ids := r.set.Slice()
		for i := range outcomes {
			o := &outcomes[i]
			switch {
			case o.skipped:
				r.logger.Warn(fmt.Sprintf("skipping %s: inputs unavailable", o.part.Source))
			case o.err != nil:
				r.outage(o.part, o.err)
			default:
				o.raw = canonicalize(ids, o.part, o.result)
			}
		}

		if err := r.advance(ctx, domain.StateResolving); err != nil {
			return err
		}
		for _, o := range outcomes {
			if o.raw == nil {
				continue
			}
			delta := resolve(o.part, o.raw)
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := r.req.Store.Put(ctx, r.key, r.set, delta)
			if err != nil {
				return err
			}
			r.entry = entry
			r.report.Fetched[o.part.Source] = o.part.FieldNames()
			for id := range o.result.Failed {
				if r.set.Contains(id) {
					r.failed[id] = struct{}{}
				}
			}
		}

		if err := r.advance(ctx, domain.StateCacheUpdated); err != nil {
			return err
		}
	}
	return nil
}

// fetchStage calls the sources of one stage concurrently. Source errors are
// kept per partition and never cancel the other sources.
func (r *run) fetchStage(ctx context.Context, stage []planner.Partition) []outcome {
	outcomes := make([]outcome, len(stage))
	var g errgroup.Group
	for i, part := range stage {
		outcomes[i].part = part
		inputs, ok := r.inputs(part)
		if !ok {
			outcomes[i].skipped = true
			continue
		}
		g.Go(func() error {
			outcomes[i].result, outcomes[i].err = r.call(ctx, part, inputs)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

// inputs projects the cached input fields of part. It reports false when an
// input is not cached.
func (r *run) inputs(part planner.Partition) (domain.Table, bool) {
	inputs := make(domain.Table)
	for _, in := range part.Inputs {
		if !r.entry.Has(in) {
			return nil, false
		}
		for id, rec := range r.entry.Table {
			inputs.Set(id, in, rec[in])
		}
	}
	return inputs, true
}

func (r *run) call(ctx context.Context, part planner.Partition, inputs domain.Table) (*ports.FetchResult, error) {
	ctx, span := r.tracer.Start(ctx, "fetch."+part.Source.String(),
		ports.WithAttribute("source", part.Source.String()),
		ports.WithAttribute("fields", part.FieldNames()),
		ports.WithAttribute("identifiers", r.set.Len()),
	)
	defer span.End()

	client, ok := r.clients[part.Source]
	if !ok {
		err := zerr.With(domain.ErrSourceOutage, "source", part.Source.String())
		span.RecordError(err)
		return nil, err
	}

	r.logger.Info(fmt.Sprintf("fetching %s from %s", strings.Join(part.FieldNames(), ", "), part.Source))
	start := time.Now()
	res, err := client.Fetch(ctx, ports.FetchRequest{
		Identifiers: r.set.Slice(),
		Fields:      part.Fields,
		Inputs:      inputs,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if res == nil {
		res = ports.NewFetchResult()
	}
	r.metrics.ObserveFetch(part.Source, r.set.Len(), len(res.Failed), time.Since(start))
	span.SetAttribute("failed", len(res.Failed))
	return res, nil
}

// outage records a source that failed completely. Its fields stay absent from
// the entry, so the next run retries them.
func (r *run) outage(part planner.Partition, err error) {
	r.metrics.ObserveOutage(part.Source)
	r.report.Outages = append(r.report.Outages, part.Source)
	r.logger.Warn(fmt.Sprintf("%s unavailable, dropping %s: %v",
		part.Source, strings.Join(part.FieldNames(), ", "), err))
}

// canonicalize applies the field rules to every observation of the resolved
// identifiers. A resolved identifier without observations for a field gets a
// single empty observation.
func canonicalize(
	ids []domain.Identifier,
	part planner.Partition,
	res *ports.FetchResult,
) map[domain.Identifier]domain.RawRecord {
	out := make(map[domain.Identifier]domain.RawRecord, len(ids))
	for _, id := range ids {
		if _, failed := res.Failed[id]; failed {
			continue
		}
		rec := res.Records[id]
		canon := make(domain.RawRecord, len(part.Fields))
		for _, f := range part.Fields {
			obs := rec[f.Name]
			if len(obs) == 0 {
				obs = []domain.Observation{{}}
			}
			canon[f.Name] = transform.Observations(f.Name, obs)
		}
		out[id] = canon
	}
	return out
}

// resolve collapses canonical observations into a cache delta. Failed
// identifiers are absent and are stored with empty values.
func resolve(part planner.Partition, raw map[domain.Identifier]domain.RawRecord) domain.CacheDelta {
	table := make(domain.Table, len(raw))
	for id, rec := range raw {
		for _, f := range part.Fields {
			table.Set(id, f.Name, resolver.Resolve(f, rec[f.Name]))
		}
	}
	return domain.CacheDelta{Fields: part.FieldNames(), Table: table}
}
