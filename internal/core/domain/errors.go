package domain

import "go.trai.ch/zerr"

var (
	// ErrArtifactRead is returned when a source artifact cannot be opened or read.
	ErrArtifactRead = zerr.New("failed to read artifact")

	// ErrLockReadFailed is returned when the lock document exists but cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lock file")

	// ErrLockWriteFailed is returned when the lock document cannot be persisted.
	ErrLockWriteFailed = zerr.New("failed to write lock file")

	// ErrLockHeld is returned when another pipeline holds the lock for the source directory.
	ErrLockHeld = zerr.New("lock file is held by another process")

	// ErrSourceDirInvalid is returned when the source directory is missing or not a directory.
	ErrSourceDirInvalid = zerr.New("source directory is not a readable directory")

	// ErrOutputDirCreate is returned when the output directory cannot be created.
	ErrOutputDirCreate = zerr.New("failed to create output directory")

	// ErrCompilerFailed is returned when a single compiler invocation exits unsuccessfully.
	ErrCompilerFailed = zerr.New("compiler invocation failed")

	// ErrCompilationFailed is returned after a run in which at least one artifact failed to compile.
	ErrCompilationFailed = zerr.New("one or more artifacts failed to compile")

	// ErrConfigNotFound is returned when an explicitly requested config file does not exist.
	ErrConfigNotFound = zerr.New("config file not found")

	// ErrConfigParseFailed is returned when the config file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidFailurePolicy is returned when on_failure names an unknown policy.
	ErrInvalidFailurePolicy = zerr.New("invalid failure policy")

	// ErrInvalidPattern is returned when an include, exclude or format pattern is malformed.
	ErrInvalidPattern = zerr.New("invalid glob pattern")

	// ErrInvalidOutputExt is returned when the output extension is empty or contains a separator.
	ErrInvalidOutputExt = zerr.New("invalid output extension")

	// ErrSymlinkUnsupported is returned when the filesystem cannot create symbolic links.
	ErrSymlinkUnsupported = zerr.New("filesystem does not support symlinks")

	// ErrLinkFailed is returned when the asset link cannot be created.
	ErrLinkFailed = zerr.New("failed to link assets")

	// ErrFormatFailed is returned when one or more files could not be formatted.
	ErrFormatFailed = zerr.New("formatting failed")

	// ErrWatcherStart is returned when the filesystem watcher cannot be started.
	ErrWatcherStart = zerr.New("failed to start watcher")
)
