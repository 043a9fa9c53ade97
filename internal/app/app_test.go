package app_test

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/adapters/lockfile"
	"go.trai.ch/shade/internal/app"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/shade/internal/core/ports/mocks"
	"go.trai.ch/shade/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

type recordingCompiler struct {
	mu    sync.Mutex
	fs    afero.Fs
	calls []domain.Invocation
	fail  bool
}

func (c *recordingCompiler) Compile(_ context.Context, inv domain.Invocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, inv)
	if c.fail {
		return errors.Join(domain.ErrCompilerFailed, errors.New("exit status 1"))
	}
	return afero.WriteFile(c.fs, inv.Output, []byte("spirv"), 0o644)
}

func (c *recordingCompiler) invocations() []domain.Invocation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.Invocation(nil), c.calls...)
}

// chanWatcher forwards events written to in until the Start context is done.
type chanWatcher struct {
	in   chan ports.WatchEvent
	out  chan ports.WatchEvent
	root string
}

func newChanWatcher() *chanWatcher {
	return &chanWatcher{in: make(chan ports.WatchEvent), out: make(chan ports.WatchEvent)}
}

func (w *chanWatcher) Start(ctx context.Context, root string) error {
	w.root = root
	go func() {
		defer close(w.out)
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-w.in:
				select {
				case w.out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

func (w *chanWatcher) Stop() error { return nil }

func (w *chanWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for e := range w.out {
			if !yield(e) {
				return
			}
		}
	}
}

type harness struct {
	fs        afero.Fs
	compiler  *recordingCompiler
	loader    *mocks.MockConfigLoader
	linker    *mocks.MockAssetLinker
	formatter *mocks.MockFormatter
	logger    *mocks.MockLogger
	watcher   *chanWatcher
	app       *app.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/src", 0o750))
	require.NoError(t, afero.WriteFile(fsys, "/src/a.vert", []byte("X"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/src/b.frag", []byte("Y"), 0o644))

	h := &harness{
		fs:        fsys,
		compiler:  &recordingCompiler{fs: fsys},
		loader:    mocks.NewMockConfigLoader(ctrl),
		linker:    mocks.NewMockAssetLinker(ctrl),
		formatter: mocks.NewMockFormatter(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
		watcher:   newChanWatcher(),
	}
	h.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	h.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	drv := driver.New(
		fs.NewWorkspace(fsys),
		fs.NewHasher(fsys),
		lockfile.NewOpener(fsys, h.logger),
		h.compiler,
		h.logger,
	)
	h.app = app.New(h.loader, drv, h.linker, h.formatter, func() (ports.Watcher, error) {
		return h.watcher, nil
	}, h.logger)
	return h
}

func (h *harness) quiet() *harness {
	h.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	return h
}

func notFound() error {
	return errors.Join(domain.ErrConfigNotFound, errors.New("open shade.yaml: file does not exist"))
}

func compileOpts() app.CompileOptions {
	return app.CompileOptions{CompilerPath: "glslc", SourceDir: "/src", OutputDir: "/out"}
}

func TestApp_Compile_DefaultsWithoutConfig(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(nil, notFound())

	summary, err := h.app.Compile(context.Background(), compileOpts())
	require.NoError(t, err)
	assert.Len(t, summary.Compiled, 2)

	calls := h.compiler.invocations()
	require.Len(t, calls, 2)
	assert.Equal(t, filepath.Join("/out", "a.vert.spv"), calls[0].Output)
	assert.Empty(t, calls[0].Args)
}

func TestApp_Compile_ExplicitConfigMissing(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load("custom.yaml").Return(nil, notFound())

	opts := compileOpts()
	opts.Config = app.ConfigOptions{Path: "custom.yaml", Explicit: true}

	_, err := h.app.Compile(context.Background(), opts)
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
	assert.Empty(t, h.compiler.invocations())
}

func TestApp_Compile_ConfigInvalid(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(nil, domain.ErrInvalidFailurePolicy)

	_, err := h.app.Compile(context.Background(), compileOpts())
	require.ErrorIs(t, err, domain.ErrInvalidFailurePolicy)
	assert.Empty(t, h.compiler.invocations())
}

func TestApp_Compile_AppliesConfig(t *testing.T) {
	h := newHarness(t).quiet()

	cfg := domain.DefaultConfig()
	cfg.CompilerArgs = []string{"-O"}
	cfg.OutputExt = "bin"
	cfg.Include = []string{"*.vert"}
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(cfg, nil)

	_, err := h.app.Compile(context.Background(), compileOpts())
	require.NoError(t, err)

	calls := h.compiler.invocations()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-O"}, calls[0].Args)
	assert.Equal(t, filepath.Join("/out", "a.vert.bin"), calls[0].Output)
}

func TestApp_Compile_FlagOverrides(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

	opts := compileOpts()
	opts.OutputExt = ".dxil"
	opts.Timeout = time.Minute

	_, err := h.app.Compile(context.Background(), opts)
	require.NoError(t, err)

	calls := h.compiler.invocations()
	require.Len(t, calls, 2)
	assert.Equal(t, filepath.Join("/out", "a.vert.dxil"), calls[0].Output)
	assert.Equal(t, time.Minute, calls[0].Timeout)
}

func TestApp_Compile_InvalidOutputExt(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

	opts := compileOpts()
	opts.OutputExt = "a/b"

	_, err := h.app.Compile(context.Background(), opts)
	require.ErrorIs(t, err, domain.ErrInvalidOutputExt)
}

func TestApp_Compile_RecordFailures(t *testing.T) {
	tests := []struct {
		name           string
		recordFailures bool
		wantEntries    int
	}{
		{name: "default skips failed artifacts", recordFailures: false, wantEntries: 0},
		{name: "record failures flag", recordFailures: true, wantEntries: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t).quiet()
			h.compiler.fail = true
			h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

			opts := compileOpts()
			opts.RecordFailures = tt.recordFailures

			summary, err := h.app.Compile(context.Background(), opts)
			require.ErrorIs(t, err, domain.ErrCompilationFailed)
			assert.Len(t, summary.Failed, 2)

			store, err := lockfile.NewOpener(h.fs, h.logger).Open(context.Background(), "/src/.shader.lock.json")
			require.NoError(t, err)
			defer store.Close() //nolint:errcheck // Test cleanup
			assert.Len(t, store.Entries(), tt.wantEntries)
		})
	}
}

func TestApp_Compile_LogsSummary(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)
	h.logger.EXPECT().Info(gomock.Not("2 compiled, 0 up to date, 0 failed")).AnyTimes()
	h.logger.EXPECT().Info("2 compiled, 0 up to date, 0 failed").Times(1)

	_, err := h.app.Compile(context.Background(), compileOpts())
	require.NoError(t, err)
}

func TestApp_Link(t *testing.T) {
	tests := []struct {
		name    string
		created bool
		err     error
		wantLog string
	}{
		{name: "creates link", created: true, wantLog: "linked out/assets -> assets"},
		{name: "existing target", created: false, wantLog: "out/assets already exists, skipping"},
		{name: "link error", err: domain.ErrLinkFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.linker.EXPECT().Link("assets", "out/assets").Return(tt.created, tt.err)
			if tt.wantLog != "" {
				h.logger.EXPECT().Info(tt.wantLog).Times(1)
			}

			err := h.app.Link(context.Background(), "assets", "out/assets")
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestApp_Format(t *testing.T) {
	h := newHarness(t).quiet()

	cfg := domain.DefaultConfig()
	cfg.Format.Workers = 2
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(cfg, nil)

	want := domain.FormatReport{Formatted: []string{"src/a.cpp"}}
	h.formatter.EXPECT().Format(gomock.Any(), domain.FormatSpec{
		Command:  "clang-format",
		Args:     []string{"-i"},
		Patterns: []string{"**/*.{cxx,hxx,cpp,hpp}"},
		Workers:  8,
		Roots:    []string{"src"},
	}).Return(want, nil)

	report, err := h.app.Format(context.Background(), app.FormatOptions{Roots: []string{"src"}, Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, want, report)
}

func TestApp_Format_UsesConfigRoots(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(nil, notFound())

	h.formatter.EXPECT().Format(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, spec domain.FormatSpec) (domain.FormatReport, error) {
			assert.Equal(t, []string{"engine/public", "engine/private"}, spec.Roots)
			assert.Equal(t, 0, spec.Workers)
			return domain.FormatReport{Failed: []string{"engine/public/x.cpp"}}, domain.ErrFormatFailed
		})

	report, err := h.app.Format(context.Background(), app.FormatOptions{})
	require.ErrorIs(t, err, domain.ErrFormatFailed)
	assert.Equal(t, []string{"engine/public/x.cpp"}, report.Failed)
}

func TestApp_ConfigureLogging(t *testing.T) {
	h := newHarness(t)

	var got []bool
	h.app.WithLogSwitch(func(json bool) { got = append(got, json) })
	h.app.ConfigureLogging(true)
	h.app.ConfigureLogging(false)

	assert.Equal(t, []bool{true, false}, got)
}

func TestApp_Watch_RecompilesOnChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t).quiet()
		h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)
		h.app.WithDebounceWindow(50 * time.Millisecond)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() {
			done <- h.app.Watch(ctx, compileOpts())
		}()

		synctest.Wait()
		require.Len(t, h.compiler.invocations(), 2)
		assert.Equal(t, "/src", h.watcher.root)

		// Lock document churn alone does not trigger a run.
		h.watcher.in <- ports.WatchEvent{Path: "/src/.shader.lock.json", Operation: ports.OpWrite}
		h.watcher.in <- ports.WatchEvent{Path: "/src/.shader.lock.json.tmp-123", Operation: ports.OpCreate}
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		require.Len(t, h.compiler.invocations(), 2)

		require.NoError(t, afero.WriteFile(h.fs, "/src/a.vert", []byte("Z"), 0o644))
		h.watcher.in <- ports.WatchEvent{Path: "/src/a.vert", Operation: ports.OpWrite}
		h.watcher.in <- ports.WatchEvent{Path: "/src/a.vert", Operation: ports.OpWrite}
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		calls := h.compiler.invocations()
		require.Len(t, calls, 3)
		assert.Equal(t, "/src/a.vert", calls[2].Input)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestApp_Watch_InitialRunErrors(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

	opts := compileOpts()
	opts.SourceDir = "/missing"

	err := h.app.Watch(context.Background(), opts)
	require.ErrorIs(t, err, domain.ErrSourceDirInvalid)
}

func TestApp_Watch_WatcherFactoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/src", 0o750))
	drv := driver.New(fs.NewWorkspace(fsys), fs.NewHasher(fsys), lockfile.NewOpener(fsys, log),
		mocks.NewMockCompiler(ctrl), log)

	a := app.New(loader, drv, mocks.NewMockAssetLinker(ctrl), mocks.NewMockFormatter(ctrl),
		func() (ports.Watcher, error) { return nil, domain.ErrWatcherStart }, log)

	err := a.Watch(context.Background(), compileOpts())
	require.ErrorIs(t, err, domain.ErrWatcherStart)
}

func TestApp_Watch_StartError(t *testing.T) {
	h := newHarness(t).quiet()
	h.loader.EXPECT().Load(domain.ConfigFileName).Return(domain.DefaultConfig(), nil)

	ctrl := gomock.NewController(t)
	w := mocks.NewMockWatcher(ctrl)
	w.EXPECT().Start(gomock.Any(), "/src").Return(domain.ErrWatcherStart)
	w.EXPECT().Stop().Return(nil)

	drv := driver.New(fs.NewWorkspace(h.fs), fs.NewHasher(h.fs), lockfile.NewOpener(h.fs, h.logger), h.compiler, h.logger)
	a := app.New(h.loader, drv, h.linker, h.formatter, func() (ports.Watcher, error) { return w, nil }, h.logger)

	err := a.Watch(context.Background(), compileOpts())
	require.ErrorIs(t, err, domain.ErrWatcherStart)
}
