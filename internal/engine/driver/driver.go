// Package driver implements the incremental compilation loop.
package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/engine/policy"
	"go.trai.ch/zerr"
)

// Driver compiles the artifacts of a source directory whose content changed since the last run.
type Driver struct {
	workspace ports.Workspace
	hasher    ports.Hasher
	opener    ports.LockStoreOpener
	compiler  ports.Compiler
	logger    ports.Logger
}

// New creates a new Driver.
func New(
	workspace ports.Workspace,
	hasher ports.Hasher,
	opener ports.LockStoreOpener,
	compiler ports.Compiler,
	logger ports.Logger,
) *Driver {
	return &Driver{
		workspace: workspace,
		hasher:    hasher,
		opener:    opener,
		compiler:  compiler,
		logger:    logger,
	}
}

// Run processes every artifact of req.SourceDir sequentially.
//
// Each artifact is fingerprinted, checked against the lock document and compiled when
// stale. A successful compilation is recorded before the next artifact is considered.
// Compiler failures do not stop the loop; they are collected and reported as
// domain.ErrCompilationFailed once every artifact has been visited. Hashing and lock
// persistence failures abort the run immediately.
func (d *Driver) Run(ctx context.Context, req domain.RunRequest) (summary domain.RunSummary, err error) {
	sourceDir, err := d.workspace.Resolve(req.SourceDir)
	if err != nil {
		return summary, err
	}

	outputDir, err := filepath.Abs(req.OutputDir)
	if err != nil {
		return summary, errors.Join(domain.ErrOutputDirCreate, zerr.With(err, "path", req.OutputDir))
	}
	if err := d.workspace.EnsureDir(outputDir); err != nil {
		return summary, err
	}

	store, err := d.openStore(ctx, domain.LockPath(sourceDir, req.LockFile), req.LockTimeout)
	if err != nil {
		return summary, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = zerr.Wrap(cerr, "failed to release lock file")
		}
	}()

	if _, err := store.InvalidateIfOutputEmpty(outputDir); err != nil {
		return summary, err
	}

	artifacts, err := d.workspace.Artifacts(sourceDir, req.LockFile, req.Filter)
	if err != nil {
		return summary, err
	}

	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return summary, zerr.Wrap(err, "compilation interrupted")
		}

		fp, err := d.hasher.Fingerprint(a.Path)
		if err != nil {
			return summary, err
		}

		if !policy.NeedsRecompile(store, a.Identity, fp, req.Force) {
			summary.Skipped = append(summary.Skipped, a.Identity)
			continue
		}

		d.logger.Info(fmt.Sprintf("compiling %s...", a.Name))
		cerr := d.compiler.Compile(ctx, domain.Invocation{
			Compiler: req.CompilerPath,
			Args:     req.CompilerArgs,
			Input:    a.Path,
			Output:   domain.OutputPath(outputDir, a.Name, req.OutputExt),
			Timeout:  req.Timeout,
		})
		if cerr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, zerr.Wrap(ctxErr, "compilation interrupted")
			}
			d.logger.Error(zerr.With(cerr, "artifact", a.Name))
			summary.Failed = append(summary.Failed, a.Identity)
			if req.OnFailure != domain.FailureRecord {
				continue
			}
		} else {
			summary.Compiled = append(summary.Compiled, a.Identity)
		}

		if err := store.Record(a.Identity, fp); err != nil {
			return summary, err
		}
	}

	if n := len(summary.Failed); n > 0 {
		return summary, errors.Join(
			domain.ErrCompilationFailed,
			zerr.With(zerr.New(fmt.Sprintf("%d of %d artifacts failed", n, summary.Total())), "count", n),
		)
	}
	return summary, nil
}

func (d *Driver) openStore(ctx context.Context, path string, timeout time.Duration) (ports.LockStore, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return d.opener.Open(ctx, path)
}
