package ports

import "go.trai.ch/shade/internal/core/domain"

// Hasher computes content fingerprints of artifacts.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint reads the full content at path and returns its digest.
	Fingerprint(path string) (domain.Fingerprint, error)
}
