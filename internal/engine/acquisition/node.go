package acquisition

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/protanno/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/protanno/internal/adapters/metrics"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/protanno/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/protanno/internal/core/ports"
)

// NodeID is the unique identifier for the acquisition engine Graft node.
const NodeID graft.ID = "engine.acquisition"

func init() {
	graft.Register(graft.Node[*Engine]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			telemetry.TracerNodeID,
			metrics.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Engine, error) {
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			m, err := graft.Dep[ports.Metrics](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(tracer, m, log), nil
		},
	})
}
