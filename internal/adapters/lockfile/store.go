// Package lockfile implements the persistent fingerprint cache of a source directory.
package lockfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.LockStore = (*Store)(nil)

// errFound stops the output directory walk at the first regular file.
var errFound = errors.New("found")

// Store implements ports.LockStore as a flat JSON object on disk.
// Every Record rewrites the whole document through a temp file and a rename.
type Store struct {
	fs      afero.Fs
	path    string
	logger  ports.Logger
	lock    *flock.Flock
	mu      sync.RWMutex
	entries map[string]domain.Fingerprint
}

// Path returns the location of the lock document.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the recorded fingerprint for identity.
func (s *Store) Lookup(identity string) (domain.Fingerprint, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fp, ok := s.entries[identity]
	return fp, ok
}

// Record replaces the entry for identity and persists the document.
func (s *Store) Record(identity string, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[identity]
	s.entries[identity] = fp

	if err := s.persist(); err != nil {
		if had {
			s.entries[identity] = prev
		} else {
			delete(s.entries, identity)
		}
		return err
	}
	return nil
}

// InvalidateIfOutputEmpty discards every entry when outputDir is missing or holds no files.
// It must run before the first Lookup of a session.
func (s *Store) InvalidateIfOutputEmpty(outputDir string) (bool, error) {
	empty, err := s.outputEmpty(outputDir)
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return false, nil
	}

	discarded := s.entries
	s.entries = make(map[string]domain.Fingerprint)
	if err := s.persist(); err != nil {
		s.entries = discarded
		return false, err
	}

	s.logger.Info(fmt.Sprintf("output directory %s is empty, discarding %d cached fingerprints",
		outputDir, len(discarded)))
	return true, nil
}

// Entries returns a copy of the current mapping.
func (s *Store) Entries() map[string]domain.Fingerprint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Fingerprint, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}

// Close releases the advisory lock, if held.
func (s *Store) Close() error {
	if s.lock == nil {
		return nil
	}
	lk := s.lock
	s.lock = nil
	if err := lk.Unlock(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to release lock"), "path", lk.Path())
	}
	return nil
}

// load reads the document from disk. A missing, empty or malformed document
// is replaced by a fresh empty one; only an unreadable file is an error.
func (s *Store) load() error {
	data, err := afero.ReadFile(s.fs, s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.logger.Info(fmt.Sprintf("creating new lock file %s", s.path))
		return s.persist()
	case err != nil:
		return errors.Join(domain.ErrLockReadFailed,
			zerr.With(zerr.Wrap(err, "failed to read lock file"), "path", s.path))
	}

	var doc map[string]string
	if len(bytes.TrimSpace(data)) == 0 {
		s.logger.Info(fmt.Sprintf("lock file %s is empty, creating new lock file", s.path))
		return s.persist()
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Info(fmt.Sprintf("lock file %s is corrupt, creating new lock file", s.path))
		return s.persist()
	}

	outdated := 0
	for identity, digest := range doc {
		fp := domain.Fingerprint(digest)
		if !fp.Current() {
			outdated++
		}
		s.entries[identity] = fp
	}
	if outdated > 0 {
		s.logger.Info(fmt.Sprintf("%d lock entries use an outdated fingerprint scheme and will be recompiled", outdated))
	}

	return nil
}

// persist writes the full mapping atomically. Callers must hold mu or own s exclusively.
func (s *Store) persist() error {
	doc := make(map[string]string, len(s.entries))
	for identity, fp := range s.entries {
		doc[identity] = string(fp)
	}

	// encoding/json sorts map keys.
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Join(domain.ErrLockWriteFailed, zerr.Wrap(err, "failed to encode lock file"))
	}
	data = append(data, '\n')

	if err := s.writeAtomic(data); err != nil {
		return errors.Join(domain.ErrLockWriteFailed, zerr.With(err, "path", s.path))
	}
	return nil
}

func (s *Store) writeAtomic(data []byte) (err error) {
	dir := filepath.Dir(s.path)
	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to write temp file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, "failed to sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, "failed to close temp file")
	}
	if err := s.fs.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.Wrap(err, "failed to set lock file permissions")
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		return zerr.Wrap(err, "failed to replace lock file")
	}
	return nil
}

func (s *Store) outputEmpty(outputDir string) (bool, error) {
	exists, err := afero.DirExists(s.fs, outputDir)
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, "failed to stat output directory"), "path", outputDir)
	}
	if !exists {
		return true, nil
	}

	err = afero.Walk(s.fs, outputDir, func(_ string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return errFound
		}
		return nil
	})
	switch {
	case errors.Is(err, errFound):
		return false, nil
	case err != nil:
		return false, zerr.With(zerr.Wrap(err, "failed to scan output directory"), "path", outputDir)
	}
	return true, nil
}
