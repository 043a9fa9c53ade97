package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shade/internal/adapters/compiler"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

// writeScript creates an executable shell script acting as a fake compiler.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fakec")
	//nolint:gosec // Test script must be executable
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecutor_Compile_WritesOutput(t *testing.T) {
	script := writeScript(t, `
in=""; out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    *) in="$1"; shift ;;
  esac
done
cp "$in" "$out"
`)
	dir := t.TempDir()
	input := filepath.Join(dir, "a.vert")
	output := filepath.Join(dir, "a.vert.spv")
	require.NoError(t, os.WriteFile(input, []byte("shader"), 0o600))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: script,
		Input:    input,
		Output:   output,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(output) //nolint:gosec // Test path
	require.NoError(t, err)
	assert.Equal(t, "shader", string(data))
}

func TestExecutor_Compile_PassesArgsBeforeInput(t *testing.T) {
	script := writeScript(t, `echo "$@"`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info("-O --target-env=vulkan1.2 in.vert -o out.spv")

	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: script,
		Args:     []string{"-O", "--target-env=vulkan1.2"},
		Input:    "in.vert",
		Output:   "out.spv",
	})
	require.NoError(t, err)
}

func TestExecutor_Compile_StreamsOutput(t *testing.T) {
	script := writeScript(t, `echo line1; printf part1; sleep 0.05; echo part2; echo diag >&2; printf tail >&2`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	gomock.InOrder(
		log.EXPECT().Info("line1"),
		log.EXPECT().Info("part1part2"),
	)
	gomock.InOrder(
		log.EXPECT().Warn("diag"),
		log.EXPECT().Warn("tail"),
	)

	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: script,
		Input:    "in",
		Output:   "out",
	})
	require.NoError(t, err)
}

func TestExecutor_Compile_NonZeroExit(t *testing.T) {
	script := writeScript(t, `echo "error: syntax" >&2; exit 3`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn("error: syntax")

	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: script,
		Input:    "broken.frag",
		Output:   "broken.frag.spv",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilerFailed)
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecutor_Compile_MissingCompiler(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: filepath.Join(t.TempDir(), "does-not-exist"),
		Input:    "a.vert",
		Output:   "a.vert.spv",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilerFailed)
}

func TestExecutor_Compile_Timeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	start := time.Now()
	err := compiler.NewExecutor(log).Compile(context.Background(), domain.Invocation{
		Compiler: script,
		Input:    "a.vert",
		Output:   "a.vert.spv",
		Timeout:  50 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCompilerFailed)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExecutor_Compile_Canceled(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := compiler.NewExecutor(log).Compile(ctx, domain.Invocation{
		Compiler: script,
		Input:    "a.vert",
		Output:   "a.vert.spv",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
