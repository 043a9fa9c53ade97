package fs

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Workspace = (*Workspace)(nil)

// Workspace enumerates the artifacts of a source directory.
type Workspace struct {
	fs afero.Fs
}

// NewWorkspace creates a new Workspace on fsys.
func NewWorkspace(fsys afero.Fs) *Workspace {
	return &Workspace{fs: fsys}
}

// Resolve returns the absolute form of sourceDir after checking that it is a directory.
func (w *Workspace) Resolve(sourceDir string) (string, error) {
	abs, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", errors.Join(domain.ErrSourceDirInvalid,
			zerr.With(zerr.Wrap(err, "failed to resolve source directory"), "path", sourceDir))
	}

	info, err := w.fs.Stat(abs)
	if err != nil {
		return "", errors.Join(domain.ErrSourceDirInvalid,
			zerr.With(zerr.Wrap(err, "failed to stat source directory"), "path", abs))
	}
	if !info.IsDir() {
		return "", errors.Join(domain.ErrSourceDirInvalid,
			zerr.With(zerr.New("not a directory"), "path", abs))
	}

	return abs, nil
}

// Artifacts lists the regular files directly inside sourceDir.
// Subdirectories are not descended into. The lock document and any file whose
// name starts with the lock document name followed by a dot are skipped.
func (w *Workspace) Artifacts(
	sourceDir, lockFile string,
	filter domain.ArtifactFilter,
) ([]domain.Artifact, error) {
	if err := ValidatePatterns(filter.Include, filter.Exclude); err != nil {
		return nil, err
	}

	abs, err := w.Resolve(sourceDir)
	if err != nil {
		return nil, err
	}

	if lockFile == "" {
		lockFile = domain.LockFileName
	}

	infos, err := afero.ReadDir(w.fs, abs)
	if err != nil {
		return nil, errors.Join(domain.ErrSourceDirInvalid,
			zerr.With(zerr.Wrap(err, "failed to list source directory"), "path", abs))
	}

	artifacts := make([]domain.Artifact, 0, len(infos))
	for _, info := range infos {
		name := info.Name()
		if name == lockFile || strings.HasPrefix(name, lockFile+".") {
			continue
		}

		path := filepath.Join(abs, name)
		if !w.isRegular(path, info) {
			continue
		}

		if !matches(name, filter) {
			continue
		}

		artifacts = append(artifacts, domain.Artifact{
			Identity: domain.IdentityOf(path),
			Name:     name,
			Path:     path,
		})
	}

	slices.SortFunc(artifacts, func(a, b domain.Artifact) int {
		return strings.Compare(a.Identity, b.Identity)
	})

	return artifacts, nil
}

// EnsureDir creates dir and any missing parents.
func (w *Workspace) EnsureDir(dir string) error {
	if err := w.fs.MkdirAll(dir, domain.DirPerm); err != nil {
		return errors.Join(domain.ErrOutputDirCreate,
			zerr.With(zerr.Wrap(err, "failed to create directory"), "path", dir))
	}

	isDir, err := afero.IsDir(w.fs, dir)
	if err != nil {
		return errors.Join(domain.ErrOutputDirCreate,
			zerr.With(zerr.Wrap(err, "failed to stat directory"), "path", dir))
	}
	if !isDir {
		return errors.Join(domain.ErrOutputDirCreate,
			zerr.With(zerr.New("path exists and is not a directory"), "path", dir))
	}

	return nil
}

// isRegular follows symlinks so that linked sources are compiled like plain files.
func (w *Workspace) isRegular(path string, info os.FileInfo) bool {
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := w.fs.Stat(path)
		if err != nil {
			return false
		}
		info = target
	}
	return info.Mode().IsRegular()
}

// ValidatePatterns checks that every pattern is a well-formed doublestar glob.
func ValidatePatterns(groups ...[]string) error {
	for _, patterns := range groups {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return errors.Join(domain.ErrInvalidPattern,
					zerr.With(zerr.New("malformed pattern"), "pattern", p))
			}
		}
	}
	return nil
}

func matches(name string, filter domain.ArtifactFilter) bool {
	if len(filter.Include) > 0 && !matchAny(filter.Include, name) {
		return false
	}
	return !matchAny(filter.Exclude, name)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
