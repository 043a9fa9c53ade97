// Package app implements the application layer for shade.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/shade/internal/adapters/config"  //nolint:depguard // Output extension normalization
	"go.trai.ch/shade/internal/adapters/watcher" //nolint:depguard // Debouncing lives with the watcher
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/engine/driver"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	driver       *driver.Driver
	linker       ports.AssetLinker
	formatter    ports.Formatter
	newWatcher   ports.WatcherFactory
	logger       ports.Logger
	debounce     time.Duration
	setJSON      func(bool)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	drv *driver.Driver,
	linker ports.AssetLinker,
	formatter ports.Formatter,
	newWatcher ports.WatcherFactory,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		driver:       drv,
		linker:       linker,
		formatter:    formatter,
		newWatcher:   newWatcher,
		logger:       log,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithDebounceWindow sets the quiet period Watch waits for before re-running.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

// WithLogSwitch registers the function ConfigureLogging uses to toggle JSON output.
func (a *App) WithLogSwitch(fn func(json bool)) *App {
	a.setJSON = fn
	return a
}

// ConfigureLogging switches the log output between the pretty and JSON handlers.
func (a *App) ConfigureLogging(json bool) {
	if a.setJSON != nil {
		a.setJSON(json)
	}
}

// ConfigOptions selects the configuration file.
type ConfigOptions struct {
	// Path of the config file. Empty means domain.ConfigFileName.
	Path string
	// Explicit reports whether the user named the file. A missing implicit file
	// falls back to the defaults; a missing explicit file is an error.
	Explicit bool
}

// CompileOptions configuration for the Compile and Watch methods.
type CompileOptions struct {
	Config ConfigOptions

	CompilerPath string
	SourceDir    string
	OutputDir    string
	Force        bool

	// OutputExt overrides compiler.output_ext when set.
	OutputExt string
	// RecordFailures overrides on_failure with "record".
	RecordFailures bool
	// Timeout bounds each compiler invocation.
	Timeout time.Duration
	// LockTimeout overrides lock_timeout when positive.
	LockTimeout time.Duration
}

// Compile runs the incremental pipeline once.
func (a *App) Compile(ctx context.Context, opts CompileOptions) (domain.RunSummary, error) {
	req, err := a.request(opts)
	if err != nil {
		return domain.RunSummary{}, err
	}
	return a.compile(ctx, req)
}

// Watch runs the pipeline once and again after every burst of changes in the
// source directory, until ctx is done. Failed compilations are logged and do not
// end the loop.
func (a *App) Watch(ctx context.Context, opts CompileOptions) error {
	req, err := a.request(opts)
	if err != nil {
		return err
	}

	if _, err := a.compile(ctx, req); err != nil && !errors.Is(err, domain.ErrCompilationFailed) {
		return err
	}

	sourceDir, err := filepath.Abs(req.SourceDir)
	if err != nil {
		return zerr.Wrap(err, "failed to resolve source directory")
	}

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Stop()
	}()

	if err := w.Start(ctx, sourceDir); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("watching %s for changes", sourceDir))

	trigger := make(chan struct{}, 1)
	deb := watcher.NewDebouncer(a.debounce, func([]string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	defer deb.Stop()

	lockFile := req.LockFile
	if lockFile == "" {
		lockFile = domain.LockFileName
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range w.Events() {
			if isLockFile(filepath.Base(event.Path), lockFile) {
				continue
			}
			deb.Add(event.Path)
		}
		if ctx.Err() == nil {
			return zerr.With(zerr.New("watcher closed unexpectedly"), "path", sourceDir)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-trigger:
				if _, err := a.compile(ctx, req); err != nil && ctx.Err() == nil &&
					!errors.Is(err, domain.ErrCompilationFailed) {
					a.logger.Error(err)
				}
			}
		}
	})

	return g.Wait()
}

// Link exposes src under dst unless dst already exists.
func (a *App) Link(_ context.Context, src, dst string) error {
	created, err := a.linker.Link(src, dst)
	if err != nil {
		return err
	}
	if created {
		a.logger.Info(fmt.Sprintf("linked %s -> %s", dst, src))
	} else {
		a.logger.Info(fmt.Sprintf("%s already exists, skipping", dst))
	}
	return nil
}

// FormatOptions configuration for the Format method.
type FormatOptions struct {
	Config ConfigOptions
	// Roots overrides format.roots when not empty.
	Roots []string
	// Workers overrides format.workers when positive.
	Workers int
}

// Format runs the configured formatter over the source roots and waits for every file.
func (a *App) Format(ctx context.Context, opts FormatOptions) (domain.FormatReport, error) {
	cfg, err := a.loadConfig(opts.Config)
	if err != nil {
		return domain.FormatReport{}, err
	}

	spec := domain.FormatSpec{
		Command:  cfg.Format.Command,
		Args:     cfg.Format.Args,
		Patterns: cfg.Format.Patterns,
		Workers:  cfg.Format.Workers,
		Roots:    cfg.Format.Roots,
	}
	if len(opts.Roots) > 0 {
		spec.Roots = opts.Roots
	}
	if opts.Workers > 0 {
		spec.Workers = opts.Workers
	}

	report, err := a.formatter.Format(ctx, spec)
	a.logger.Info(fmt.Sprintf("formatted %d files, %d failed", len(report.Formatted), len(report.Failed)))
	return report, err
}

func (a *App) compile(ctx context.Context, req domain.RunRequest) (domain.RunSummary, error) {
	summary, err := a.driver.Run(ctx, req)
	if err == nil || errors.Is(err, domain.ErrCompilationFailed) {
		a.logger.Info(fmt.Sprintf("%d compiled, %d up to date, %d failed",
			len(summary.Compiled), len(summary.Skipped), len(summary.Failed)))
	}
	return summary, err
}

func (a *App) request(opts CompileOptions) (domain.RunRequest, error) {
	cfg, err := a.loadConfig(opts.Config)
	if err != nil {
		return domain.RunRequest{}, err
	}

	ext := cfg.OutputExt
	if opts.OutputExt != "" {
		ext, err = config.NormalizeOutputExt(opts.OutputExt)
		if err != nil {
			return domain.RunRequest{}, err
		}
	}

	onFailure := cfg.OnFailure
	if opts.RecordFailures {
		onFailure = domain.FailureRecord
	}

	lockTimeout := cfg.LockTimeout
	if opts.LockTimeout > 0 {
		lockTimeout = opts.LockTimeout
	}

	return domain.RunRequest{
		CompilerPath: opts.CompilerPath,
		SourceDir:    opts.SourceDir,
		OutputDir:    opts.OutputDir,
		Force:        opts.Force,
		CompilerArgs: cfg.CompilerArgs,
		OutputExt:    ext,
		LockFile:     cfg.LockFile,
		Filter:       domain.ArtifactFilter{Include: cfg.Include, Exclude: cfg.Exclude},
		OnFailure:    onFailure,
		Timeout:      opts.Timeout,
		LockTimeout:  lockTimeout,
	}, nil
}

func (a *App) loadConfig(opts ConfigOptions) (*domain.Config, error) {
	path := opts.Path
	if path == "" {
		path = domain.ConfigFileName
	}

	cfg, err := a.configLoader.Load(path)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) && !opts.Explicit {
			return domain.DefaultConfig(), nil
		}
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func isLockFile(name, lockFile string) bool {
	return name == lockFile || strings.HasPrefix(name, lockFile+".")
}
