package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/ports"
)

const (
	// FilesystemNodeID provides the afero filesystem shared by every adapter.
	FilesystemNodeID graft.ID = "adapter.fs.filesystem"
	HasherNodeID     graft.ID = "adapter.fs.hasher"
	WorkspaceNodeID  graft.ID = "adapter.fs.workspace"
)

func init() {
	graft.Register(graft.Node[afero.Fs]{
		ID:        FilesystemNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (afero.Fs, error) {
			return afero.NewOsFs(), nil
		},
	})

	graft.Register(graft.Node[ports.Hasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FilesystemNodeID},
		Run: func(ctx context.Context) (ports.Hasher, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(fsys), nil
		},
	})

	graft.Register(graft.Node[ports.Workspace]{
		ID:        WorkspaceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{FilesystemNodeID},
		Run: func(ctx context.Context) (ports.Workspace, error) {
			fsys, err := graft.Dep[afero.Fs](ctx)
			if err != nil {
				return nil, err
			}
			return NewWorkspace(fsys), nil
		},
	})
}
