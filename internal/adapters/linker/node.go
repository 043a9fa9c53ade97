package linker

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/core/ports"
)

// NodeID is the unique identifier for the asset linker Graft node.
const NodeID graft.ID = "adapter.linker"

func init() {
	graft.Register(graft.Node[ports.AssetLinker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.FilesystemNodeID},
		Run: func(ctx context.Context) (ports.AssetLinker, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return New(fsys), nil
		},
	})
}
