package ports

import "go.trai.ch/shade/internal/core/domain"

// Workspace enumerates source artifacts and prepares directories.
//
//go:generate mockgen -source=workspace.go -destination=mocks/mock_workspace.go -package=mocks
type Workspace interface {
	// Resolve returns the absolute form of sourceDir after checking that it is a directory.
	Resolve(sourceDir string) (string, error)

	// Artifacts returns the regular files directly inside sourceDir, sorted by identity.
	// The lock document named lockFile and its sidecar files are never returned.
	Artifacts(sourceDir, lockFile string, filter domain.ArtifactFilter) ([]domain.Artifact, error)

	// EnsureDir creates dir and any missing parents.
	EnsureDir(dir string) error
}
