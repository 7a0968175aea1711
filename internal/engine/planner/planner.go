// Package planner computes which fields a run must fetch and from which source.
package planner

import (
	"slices"

	"go.trai.ch/protanno/internal/core/domain"
)

// Partition is the set of missing fields owned by one source.
type Partition struct {
	Source domain.Source
	Fields []domain.Field
	// Inputs lists the internal fields the source reads from other sources.
	Inputs []string
}

// FieldNames returns the names of the partition's fields.
func (p Partition) FieldNames() []string {
	return domain.FieldNames(p.Fields)
}

// Plan is the fetch plan of one run.
type Plan struct {
	// Present fields are served from the cache.
	Present []string
	// Stages run in order; the partitions of one stage run concurrently.
	Stages [][]Partition
}

// Empty reports whether nothing has to be fetched.
func (p Plan) Empty() bool {
	return len(p.Stages) == 0
}

// Partitions returns every partition in stage order.
func (p Plan) Partitions() []Partition {
	var out []Partition
	for _, stage := range p.Stages {
		out = append(out, stage...)
	}
	return out
}

// Missing returns the names of every field to fetch.
func (p Plan) Missing() []string {
	var out []string
	for _, part := range p.Partitions() {
		out = append(out, part.FieldNames()...)
	}
	return out
}

// Summary maps source names to the fields fetched from them.
func (p Plan) Summary() map[string][]string {
	out := make(map[string][]string)
	for _, part := range p.Partitions() {
		out[part.Source.String()] = part.FieldNames()
	}
	return out
}

// WithAlwaysIncluded prepends the always-included fields to requested, dropping
// duplicates. The first occurrence of a field wins.
func WithAlwaysIncluded(requested []domain.Field) []domain.Field {
	out := make([]domain.Field, 0, len(domain.AlwaysIncluded)+len(requested))
	seen := make(map[string]struct{}, cap(out))
	add := func(f domain.Field) {
		if _, dup := seen[f.Name]; dup {
			return
		}
		seen[f.Name] = struct{}{}
		out = append(out, f)
	}
	for _, name := range domain.AlwaysIncluded {
		add(domain.MustField(name))
	}
	for _, f := range requested {
		add(f)
	}
	return out
}

// New plans the fetch of requested fields against entry. Always-included fields
// are added to the request. Derived fields are never fetched, only their inputs.
// With force set, the entry is ignored and every field is fetched again.
func New(requested []domain.Field, entry *domain.CacheEntry, force bool) Plan {
	plan := Plan{}
	if !force {
		plan.Present = entry.Present()
	}
	present := func(name string) bool {
		_, ok := slices.BinarySearch(plan.Present, name)
		return ok
	}

	needed := make(map[string]struct{})
	var visit func(f domain.Field)
	visit = func(f domain.Field) {
		for _, in := range f.Requires {
			visit(domain.MustField(in))
		}
		if f.Source == domain.SourceDerived || present(f.Name) {
			return
		}
		needed[f.Name] = struct{}{}
	}
	for _, f := range WithAlwaysIncluded(requested) {
		visit(f)
	}
	if len(needed) == 0 {
		return plan
	}

	// Catalog order keeps partitions deterministic.
	bySource := make(map[domain.Source]*Partition)
	for _, f := range domain.Catalog() {
		if _, ok := needed[f.Name]; !ok {
			continue
		}
		part, ok := bySource[f.Source]
		if !ok {
			part = &Partition{Source: f.Source}
			bySource[f.Source] = part
		}
		part.Fields = append(part.Fields, f)
		for _, in := range f.Requires {
			if !slices.Contains(part.Inputs, in) {
				part.Inputs = append(part.Inputs, in)
			}
		}
	}

	stageOf := make(map[domain.Source]int, len(bySource))
	var stage func(src domain.Source) int
	stage = func(src domain.Source) int {
		if s, ok := stageOf[src]; ok {
			return s
		}
		s := 0
		for _, in := range bySource[src].Inputs {
			if _, fetched := needed[in]; !fetched {
				continue
			}
			if owner := domain.MustField(in).Source; owner != src {
				s = max(s, stage(owner)+1)
			}
		}
		stageOf[src] = s
		return s
	}

	for _, src := range domain.Sources {
		part, ok := bySource[src]
		if !ok {
			continue
		}
		s := stage(src)
		for len(plan.Stages) <= s {
			plan.Stages = append(plan.Stages, nil)
		}
		plan.Stages[s] = append(plan.Stages[s], *part)
	}
	return plan
}
