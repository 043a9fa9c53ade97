package domain

import "path/filepath"

const (
	// LockFileName is the default name of the lock document inside the source directory.
	LockFileName = ".shader.lock.json"

	// LockSuffix is appended to the lock document path to form the advisory lock path.
	LockSuffix = ".lock"

	// DefaultOutputExt is the extension appended to compiled artifacts.
	DefaultOutputExt = "spv"

	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "shade.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// LockPath returns the path of the lock document for a source directory.
func LockPath(sourceDir, lockFile string) string {
	if lockFile == "" {
		lockFile = LockFileName
	}
	return filepath.Join(sourceDir, lockFile)
}

// OutputPath returns the path of the compiled artifact for name inside outputDir.
// The extension is appended to the full file name, so "a.vert" becomes "a.vert.spv".
func OutputPath(outputDir, name, ext string) string {
	if ext == "" {
		ext = DefaultOutputExt
	}
	return filepath.Join(outputDir, name+"."+ext)
}
