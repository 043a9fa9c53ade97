package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/core/domain"
)

func newSourceTree(t *testing.T) afero.Fs {
	t.Helper()

	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/src/c.frag":                  "c",
		"/src/a.vert":                  "a",
		"/src/b.comp":                  "b",
		"/src/.shader.lock.json":       "{}",
		"/src/.shader.lock.json.lock":  "",
		"/src/.shader.lock.json.tmp-1": "",
		"/src/nested/d.vert":           "d",
		"/src/notes.txt":               "n",
	}
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0o644))
	}
	return fsys
}

func names(artifacts []domain.Artifact) []string {
	out := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, a.Name)
	}
	return out
}

func TestWorkspace_Artifacts(t *testing.T) {
	ws := fs.NewWorkspace(newSourceTree(t))

	artifacts, err := ws.Artifacts("/src", domain.LockFileName, domain.ArtifactFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.vert", "b.comp", "c.frag", "notes.txt"}, names(artifacts))

	first := artifacts[0]
	assert.Equal(t, filepath.Join("/src", "a.vert"), first.Path)
	assert.Equal(t, domain.IdentityOf(filepath.Join("/src", "a.vert")), first.Identity)
}

func TestWorkspace_Artifacts_Filter(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.ArtifactFilter
		want   []string
	}{
		{
			name:   "include brace pattern",
			filter: domain.ArtifactFilter{Include: []string{"*.{vert,frag}"}},
			want:   []string{"a.vert", "c.frag"},
		},
		{
			name:   "exclude only",
			filter: domain.ArtifactFilter{Exclude: []string{"*.txt"}},
			want:   []string{"a.vert", "b.comp", "c.frag"},
		},
		{
			name: "exclude wins over include",
			filter: domain.ArtifactFilter{
				Include: []string{"*"},
				Exclude: []string{"b.*", "*.txt"},
			},
			want: []string{"a.vert", "c.frag"},
		},
		{
			name:   "nothing matches",
			filter: domain.ArtifactFilter{Include: []string{"*.glsl"}},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := fs.NewWorkspace(newSourceTree(t))

			artifacts, err := ws.Artifacts("/src", "", tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(artifacts))
		})
	}
}

func TestWorkspace_Artifacts_CustomLockFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", []byte("a"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/src/cache.json", []byte("{}"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/src/.shader.lock.json", []byte("{}"), 0o644))

	ws := fs.NewWorkspace(fsys)
	artifacts, err := ws.Artifacts("/src", "cache.json", domain.ArtifactFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{".shader.lock.json", "a.vert"}, names(artifacts))
}

func TestWorkspace_Artifacts_InvalidPattern(t *testing.T) {
	ws := fs.NewWorkspace(newSourceTree(t))

	_, err := ws.Artifacts("/src", "", domain.ArtifactFilter{Include: []string{"[a-"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestWorkspace_Resolve(t *testing.T) {
	fsys := newSourceTree(t)
	ws := fs.NewWorkspace(fsys)

	abs, err := ws.Resolve("/src/nested/..")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean("/src"), abs)

	_, err = ws.Resolve("/missing")
	assert.ErrorIs(t, err, domain.ErrSourceDirInvalid)

	_, err = ws.Resolve("/src/a.vert")
	assert.ErrorIs(t, err, domain.ErrSourceDirInvalid)
}

func TestWorkspace_EnsureDir(t *testing.T) {
	fsys := newSourceTree(t)
	ws := fs.NewWorkspace(fsys)

	require.NoError(t, ws.EnsureDir("/out/deep/spv"))
	ok, err := afero.DirExists(fsys, "/out/deep/spv")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, ws.EnsureDir("/out/deep/spv"), "existing directory is fine")

	err = ws.EnsureDir("/src/a.vert")
	assert.ErrorIs(t, err, domain.ErrOutputDirCreate)
}

func TestWorkspace_Artifacts_FollowsSymlinks(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.MkdirAll(src, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.glsl"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.vert"), []byte("a"), 0o600))
	require.NoError(t, os.Symlink(filepath.Join(dir, "shared.glsl"), filepath.Join(src, "shared.glsl")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "missing"), filepath.Join(src, "dangling.vert")))

	ws := fs.NewWorkspace(afero.NewOsFs())
	artifacts, err := ws.Artifacts(src, "", domain.ArtifactFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.vert", "shared.glsl"}, names(artifacts))
}
