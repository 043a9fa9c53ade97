package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/shade/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/formatter" //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/linker"    //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/engine/driver"
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
			driver.NodeID,
			linker.NodeID,
			formatter.NodeID,
			watcher.NodeID,
			logger.NodeID,
			logger.ConcreteNodeID,
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
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(a, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	drv, err := graft.Dep[*driver.Driver](ctx)
	if err != nil {
		return nil, err
	}

	lnk, err := graft.Dep[ports.AssetLinker](ctx)
	if err != nil {
		return nil, err
	}

	fmtr, err := graft.Dep[ports.Formatter](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	concrete, err := graft.Dep[*logger.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, drv, lnk, fmtr, newWatcher, log).WithLogSwitch(concrete.SetJSON), nil
}
