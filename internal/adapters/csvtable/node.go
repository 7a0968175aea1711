package csvtable

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/protanno/internal/core/ports"
)

const (
	// ReaderNodeID is the unique identifier for the table reader Graft node.
	ReaderNodeID graft.ID = "adapter.table_reader"
	// WriterNodeID is the unique identifier for the table writer Graft node.
	WriterNodeID graft.ID = "adapter.table_writer"
)

func init() {
	graft.Register(graft.Node[ports.TableReader]{
		ID:        ReaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TableReader, error) {
			return NewReader(), nil
		},
	})

	graft.Register(graft.Node[ports.TableWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TableWriter, error) {
			return NewWriter(), nil
		},
	})
}
