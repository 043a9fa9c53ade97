package fs_test

import (
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/core/domain"
)

func TestHasher_Fingerprint(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := []byte("#version 450\nvoid main() {}\n")
	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", content, 0o644))

	h := fs.NewHasher(fsys)
	fp, err := h.Fingerprint("/src/a.vert")
	require.NoError(t, err)

	assert.Equal(t, domain.NewFingerprint(xxhash.Sum64(content)), fp)
	assert.True(t, fp.Current())
}

func TestHasher_Fingerprint_IdentityNotHashed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", []byte("same"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/other/b.frag", []byte("same"), 0o644))

	h := fs.NewHasher(fsys)
	a, err := h.Fingerprint("/src/a.vert")
	require.NoError(t, err)
	b, err := h.Fingerprint("/other/b.frag")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHasher_Fingerprint_ContentChange(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", []byte("v1"), 0o644))

	h := fs.NewHasher(fsys)
	before, err := h.Fingerprint("/src/a.vert")
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", []byte("v2"), 0o644))
	after, err := h.Fingerprint("/src/a.vert")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestHasher_Fingerprint_BinaryAndLarge(t *testing.T) {
	fsys := afero.NewMemMapFs()
	binary := []byte{0x00, 0xff, 0xfe, 0x80, 0x03}
	large := []byte(strings.Repeat("x", 100*1024+7))
	require.NoError(t, afero.WriteFile(fsys, "/src/bin.spv", binary, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/src/large.comp", large, 0o644))

	h := fs.NewHasher(fsys)

	fp, err := h.Fingerprint("/src/bin.spv")
	require.NoError(t, err)
	assert.Equal(t, domain.NewFingerprint(xxhash.Sum64(binary)), fp)

	fp, err = h.Fingerprint("/src/large.comp")
	require.NoError(t, err)
	assert.Equal(t, domain.NewFingerprint(xxhash.Sum64(large)), fp)
}

func TestHasher_Fingerprint_Missing(t *testing.T) {
	h := fs.NewHasher(afero.NewMemMapFs())

	_, err := h.Fingerprint("/src/missing.vert")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArtifactRead)
}
