package domain

import "time"

// ArtifactFilter narrows the set of enumerated artifacts by base name.
// An empty Include list admits every file.
type ArtifactFilter struct {
	Include []string
	Exclude []string
}

// RunRequest describes one pass of the compilation pipeline.
type RunRequest struct {
	CompilerPath string
	SourceDir    string
	OutputDir    string
	Force        bool

	CompilerArgs []string
	OutputExt    string
	LockFile     string
	Filter       ArtifactFilter
	OnFailure    FailurePolicy

	// Timeout bounds each compiler invocation. Zero means no limit.
	Timeout time.Duration
	// LockTimeout bounds the wait for the advisory lock. Zero means a single attempt.
	LockTimeout time.Duration
}

// RunSummary lists artifact identities by outcome, in processing order.
type RunSummary struct {
	Compiled []string
	Skipped  []string
	Failed   []string
}

// Total returns the number of artifacts the run looked at.
func (s RunSummary) Total() int {
	return len(s.Compiled) + len(s.Skipped) + len(s.Failed)
}

// Invocation is a single call of the external compiler.
type Invocation struct {
	Compiler string
	Args     []string
	Input    string
	Output   string
	Timeout  time.Duration
}

// Argv returns the full argument list passed to the compiler, excluding the compiler itself.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, len(i.Args)+3)
	argv = append(argv, i.Args...)
	return append(argv, i.Input, "-o", i.Output)
}

// FormatSpec describes a formatting pass over one or more source trees.
type FormatSpec struct {
	Command  string
	Args     []string
	Patterns []string
	Workers  int
	Roots    []string
}

// FormatReport lists the files the formatter touched.
type FormatReport struct {
	Formatted []string
	Failed    []string
}
