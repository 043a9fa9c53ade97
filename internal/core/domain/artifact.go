package domain

import (
	"path/filepath"
)

// Artifact is a single source file eligible for compilation.
type Artifact struct {
	// Identity is the absolute, cleaned, forward-slash path of the file.
	// It is the key under which the artifact is stored in the lock document.
	Identity string

	// Name is the base name of the file.
	Name string

	// Path is the native path used to open the file.
	Path string
}

// NewArtifact builds an Artifact from a file path.
// The path is made absolute against the working directory when it is relative.
func NewArtifact(path string) (Artifact, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Identity: IdentityOf(abs),
		Name:     filepath.Base(abs),
		Path:     abs,
	}, nil
}

// IdentityOf normalizes an absolute path into the identity form used as a lock key.
func IdentityOf(abs string) string {
	return filepath.ToSlash(filepath.Clean(abs))
}
