// Package compiler runs the external shader compiler.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Executor)(nil)

// waitDelay bounds how long output pipes are drained after the compiler exits or is killed.
const waitDelay = 2 * time.Second

// Executor implements ports.Compiler using os/exec.
// Compiler stdout is logged at info level and stderr at warn level, line by line.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Compile runs `<compiler> [args...] <input> -o <output>` and waits for it to exit.
// The exit status is the only success signal.
func (e *Executor) Compile(ctx context.Context, inv domain.Invocation) error {
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	stdout := &logWriter{logger: e.logger, level: levelInfo}
	stderr := &logWriter{logger: e.logger, level: levelWarn}

	cmd := exec.CommandContext(ctx, inv.Compiler, inv.Argv()...) //nolint:gosec // compiler path is user provided
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	_ = stdout.Close()
	_ = stderr.Close()

	if err == nil {
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	detail := zerr.With(zerr.Wrap(err, "compiler failed"), "exit_code", exitCode)
	detail = zerr.With(detail, "input", inv.Input)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && inv.Timeout > 0 {
		detail = zerr.With(detail, "timeout", inv.Timeout.String())
	}

	return errors.Join(domain.ErrCompilerFailed, detail)
}

type level uint8

const (
	levelInfo level = iota
	levelWarn
)

// logWriter forwards complete lines to the logger and buffers partial ones.
type logWriter struct {
	logger ports.Logger
	level  level
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

// Close flushes any trailing partial line.
func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")

	if w.level == levelInfo {
		w.logger.Info(msg)
	} else {
		w.logger.Warn(msg)
	}
}
