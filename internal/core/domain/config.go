package domain

import "time"

// FailurePolicy decides whether a failed compilation is recorded in the lock document.
type FailurePolicy string

const (
	// FailureSkip leaves the lock entry untouched when the compiler fails,
	// so the artifact is retried on the next run.
	FailureSkip FailurePolicy = "skip"

	// FailureRecord records the fingerprint even when the compiler fails.
	// The artifact is then skipped until its content changes.
	FailureRecord FailurePolicy = "record"
)

// Valid reports whether p names a known policy.
func (p FailurePolicy) Valid() bool {
	return p == FailureSkip || p == FailureRecord
}

// DefaultLockTimeout is how long a run waits for another process to release the lock.
const DefaultLockTimeout = 10 * time.Second

// Config is the project configuration loaded from shade.yaml.
type Config struct {
	CompilerArgs []string
	OutputExt    string
	LockFile     string
	Include      []string
	Exclude      []string
	OnFailure    FailurePolicy
	LockTimeout  time.Duration
	Format       FormatConfig
}

// FormatConfig configures the source formatter.
type FormatConfig struct {
	Command  string
	Args     []string
	Patterns []string
	Workers  int
	Roots    []string
}

// DefaultConfig returns the configuration used when no shade.yaml is present.
func DefaultConfig() *Config {
	return &Config{
		OutputExt:   DefaultOutputExt,
		LockFile:    LockFileName,
		OnFailure:   FailureSkip,
		LockTimeout: DefaultLockTimeout,
		Format: FormatConfig{
			Command:  "clang-format",
			Args:     []string{"-i"},
			Patterns: []string{"**/*.{cxx,hxx,cpp,hpp}"},
			Roots:    []string{"engine/public", "engine/private"},
		},
	}
}
