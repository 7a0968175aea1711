// Package sources builds the annotation source clients of a run.
package sources

import (
	"go.trai.ch/protanno/internal/adapters/interpro"
	"go.trai.ch/protanno/internal/adapters/taxonomy"
	"go.trai.ch/protanno/internal/adapters/uniprot"
	"go.trai.ch/protanno/internal/core/domain"
	"go.trai.ch/protanno/internal/core/ports"
)

// Factory implements ports.SourceFactory.
type Factory struct{}

var _ ports.SourceFactory = (*Factory)(nil)

// NewFactory creates a Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewSources returns one client per network source, in domain.Sources order.
func (f *Factory) NewSources(settings domain.SourceSettings) []ports.SourceClient {
	return []ports.SourceClient{
		uniprot.New(settings),
		taxonomy.New(settings),
		interpro.New(settings),
	}
}
