package driver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shade/internal/adapters/compiler" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/shade/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/shade/internal/adapters/lockfile" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/shade/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/shade/internal/core/ports"
)

// NodeID is the unique identifier for the driver Graft node.
const NodeID graft.ID = "engine.driver"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.WorkspaceNodeID,
			fs.HasherNodeID,
			lockfile.NodeID,
			compiler.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			workspace, err := graft.Dep[ports.Workspace](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			opener, err := graft.Dep[ports.LockStoreOpener](ctx)
			if err != nil {
				return nil, err
			}

			comp, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(workspace, hasher, opener, comp, log), nil
		},
	})
}
