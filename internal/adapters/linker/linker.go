// Package linker exposes an asset directory under a second path via a symbolic link.
package linker

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.AssetLinker = (*Linker)(nil)

// Linker implements ports.AssetLinker on an afero filesystem that supports symlinks.
type Linker struct {
	fs afero.Fs
}

// New creates a new Linker.
func New(fsys afero.Fs) *Linker {
	return &Linker{fs: fsys}
}

// Link creates dst as a symbolic link to the absolute form of src.
// An existing dst, including a dangling link, is left untouched and reported as false.
func (l *Linker) Link(src, dst string) (bool, error) {
	exists, err := l.exists(dst)
	if err != nil {
		return false, errors.Join(domain.ErrLinkFailed,
			zerr.With(zerr.Wrap(err, "failed to stat link target"), "path", dst))
	}
	if exists {
		return false, nil
	}

	linker, ok := l.fs.(afero.Linker)
	if !ok {
		return false, errors.Join(domain.ErrSymlinkUnsupported,
			zerr.With(zerr.New("cannot create link"), "fs", l.fs.Name()))
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return false, errors.Join(domain.ErrLinkFailed,
			zerr.With(zerr.Wrap(err, "failed to resolve source"), "path", src))
	}

	if err := l.fs.MkdirAll(filepath.Dir(dst), domain.DirPerm); err != nil {
		return false, errors.Join(domain.ErrLinkFailed,
			zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", dst))
	}

	if err := linker.SymlinkIfPossible(absSrc, dst); err != nil {
		err = zerr.With(zerr.Wrap(err, "failed to create symlink"), "source", absSrc)
		return false, errors.Join(domain.ErrLinkFailed, zerr.With(err, "path", dst))
	}

	return true, nil
}

func (l *Linker) exists(path string) (bool, error) {
	var err error
	if lstater, ok := l.fs.(afero.Lstater); ok {
		_, _, err = lstater.LstatIfPossible(path)
	} else {
		_, err = l.fs.Stat(path)
	}

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}
