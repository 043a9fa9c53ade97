package ports

import (
	"context"

	"go.trai.ch/shade/internal/core/domain"
)

// LockReader is the read side of the lock document.
type LockReader interface {
	// Lookup returns the recorded fingerprint for identity.
	Lookup(identity string) (domain.Fingerprint, bool)
}

// LockStore is the persistent identity to fingerprint mapping of one source directory.
//
//go:generate mockgen -source=lock_store.go -destination=mocks/mock_lock_store.go -package=mocks
type LockStore interface {
	LockReader

	// Record replaces the entry for identity and persists the whole document.
	Record(identity string, fp domain.Fingerprint) error

	// InvalidateIfOutputEmpty discards every entry when outputDir is missing or holds no files.
	// It reports whether entries were discarded.
	InvalidateIfOutputEmpty(outputDir string) (bool, error)

	// Entries returns a copy of the current mapping.
	Entries() map[string]domain.Fingerprint

	// Close releases any lock held on the document.
	Close() error
}

// LockStoreOpener opens the lock document at a path.
type LockStoreOpener interface {
	Open(ctx context.Context, path string) (LockStore, error)
}
