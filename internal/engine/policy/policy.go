// Package policy decides whether an artifact must be recompiled.
package policy

import (
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
)

// NeedsRecompile reports whether the artifact at identity must be compiled.
// It is true when forced, when no fingerprint is recorded, or when the recorded
// fingerprint differs from current. It is false only on an exact match.
func NeedsRecompile(store ports.LockReader, identity string, current domain.Fingerprint, force bool) bool {
	if force {
		return true
	}

	recorded, ok := store.Lookup(identity)
	if !ok {
		return true
	}

	return recorded != current
}
