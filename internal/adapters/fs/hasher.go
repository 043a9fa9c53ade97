package fs

import (
	"errors"
	"io"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

const bufferSize = 32 * 1024

// bufferPool holds read buffers shared by concurrent Fingerprint calls.
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, bufferSize)
		return &buf
	},
}

// Hasher fingerprints artifact content with xxHash64.
type Hasher struct {
	fs afero.Fs
}

// NewHasher creates a new Hasher reading from fsys.
func NewHasher(fsys afero.Fs) *Hasher {
	return &Hasher{fs: fsys}
}

// Fingerprint streams the full content at path through the hash.
// Only the bytes are hashed; the path does not contribute to the digest.
func (h *Hasher) Fingerprint(path string) (domain.Fingerprint, error) {
	f, err := h.fs.Open(path)
	if err != nil {
		return "", errors.Join(domain.ErrArtifactRead,
			zerr.With(zerr.Wrap(err, "failed to open artifact"), "path", path))
	}
	defer f.Close() //nolint:errcheck // Read-only handle

	bufPtr := bufferPool.Get().(*[]byte) //nolint:forcetypeassert // Pool only holds *[]byte
	defer bufferPool.Put(bufPtr)

	digest := xxhash.New()
	if _, err := io.CopyBuffer(digest, f, *bufPtr); err != nil {
		return "", errors.Join(domain.ErrArtifactRead,
			zerr.With(zerr.Wrap(err, "failed to hash artifact content"), "path", path))
	}

	return domain.NewFingerprint(digest.Sum64()), nil
}
