// Package formatter reformats source trees in place with an external tool.
package formatter

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
	fsadapter "go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.Formatter = (*Formatter)(nil)

// RunFunc executes the formatter command for a single file.
type RunFunc func(ctx context.Context, name string, args ...string) error

// Formatter implements ports.Formatter with a bounded pool of workers.
type Formatter struct {
	fs     afero.Fs
	logger ports.Logger
	run    RunFunc
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithRunner replaces the process runner.
func WithRunner(run RunFunc) Option {
	return func(f *Formatter) {
		f.run = run
	}
}

// New creates a new Formatter.
func New(fsys afero.Fs, logger ports.Logger, opts ...Option) *Formatter {
	f := &Formatter{
		fs:     fsys,
		logger: logger,
		run:    execRun,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format walks every root and runs the command on each matching file.
// At most spec.Workers files are formatted concurrently; Format returns only
// after every started invocation has finished.
func (f *Formatter) Format(ctx context.Context, spec domain.FormatSpec) (domain.FormatReport, error) {
	if err := fsadapter.ValidatePatterns(spec.Patterns); err != nil {
		return domain.FormatReport{}, err
	}

	files, err := f.collect(spec)
	if err != nil {
		return domain.FormatReport{}, err
	}

	workers := spec.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu     sync.Mutex
		report domain.FormatReport
		errs   []error
	)

	g := &errgroup.Group{}
	g.SetLimit(workers)

	for _, file := range files {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			args := append(slices.Clone(spec.Args), file)
			runErr := f.run(ctx, spec.Command, args...)

			mu.Lock()
			defer mu.Unlock()
			if runErr != nil {
				report.Failed = append(report.Failed, file)
				errs = append(errs, zerr.With(runErr, "path", file))
				return nil
			}
			report.Formatted = append(report.Formatted, file)
			return nil
		})
	}

	_ = g.Wait()

	slices.Sort(report.Formatted)
	slices.Sort(report.Failed)

	if ctx.Err() != nil {
		return report, zerr.Wrap(ctx.Err(), "formatting interrupted")
	}
	if len(errs) > 0 {
		detail := zerr.With(errors.Join(errs...), "count", len(errs))
		return report, errors.Join(domain.ErrFormatFailed, detail)
	}
	return report, nil
}

func (f *Formatter) collect(spec domain.FormatSpec) ([]string, error) {
	var files []string

	for _, root := range spec.Roots {
		exists, err := afero.DirExists(f.fs, root)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to stat format root"), "path", root)
		}
		if !exists {
			f.logger.Warn(fmt.Sprintf("format root %s does not exist, skipping", root))
			continue
		}

		err = afero.Walk(f.fs, root, func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			if matchAny(spec.Patterns, filepath.ToSlash(rel)) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to walk format root"), "path", root)
		}
	}

	return files, nil
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func execRun(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // formatter command is user provided
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return zerr.With(zerr.Wrap(err, "formatter failed"), "output", msg)
		}
		return zerr.Wrap(err, "formatter failed")
	}
	return nil
}
