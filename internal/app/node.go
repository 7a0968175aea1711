package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/protanno/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/adapters/csvtable" //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/adapters/metrics"  //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/adapters/sources"  //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/adapters/storage"  //nolint:depguard // Wired in app layer
	"go.trai.ch/protanno/internal/core/ports"
	"go.trai.ch/protanno/internal/engine/acquisition"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			acquisition.NodeID,
			storage.NodeID,
			sources.NodeID,
			csvtable.ReaderNodeID,
			csvtable.WriterNodeID,
			metrics.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	engine, err := graft.Dep[*acquisition.Engine](ctx)
	if err != nil {
		return nil, err
	}

	opener, err := graft.Dep[ports.StoreOpener](ctx)
	if err != nil {
		return nil, err
	}

	factory, err := graft.Dep[ports.SourceFactory](ctx)
	if err != nil {
		return nil, err
	}

	reader, err := graft.Dep[ports.TableReader](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.TableWriter](ctx)
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

	return New(loader, engine, opener, factory, reader, writer, m, log), nil
}
