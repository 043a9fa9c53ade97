package formatter

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/adapters/logger"
	"go.trai.ch/shade/internal/core/ports"
)

// NodeID is the unique identifier for the formatter Graft node.
const NodeID graft.ID = "adapter.formatter"

func init() {
	graft.Register(graft.Node[ports.Formatter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FilesystemNodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Formatter, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(fsys, log), nil
		},
	})
}
