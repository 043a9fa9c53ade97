// Package config provides the configuration loader for shade.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/afero"
	fsadapter "go.trai.ch/shade/internal/adapters/fs"
	"go.trai.ch/shade/internal/core/domain"
	"go.trai.ch/shade/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a new Loader reading from fsys.
func NewLoader(fsys afero.Fs) *Loader {
	return &Loader{fs: fsys}
}

// Load reads the configuration at path and overlays it on domain.DefaultConfig.
// Keys that are absent keep their defaults. Unknown keys are rejected.
func (l *Loader) Load(path string) (*domain.Config, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Join(domain.ErrConfigNotFound,
				zerr.With(zerr.Wrap(err, "failed to open config"), "path", path))
		}
		return nil, errors.Join(domain.ErrConfigParseFailed,
			zerr.With(zerr.Wrap(err, "failed to read config"), "path", path))
	}

	var file Shadefile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(domain.ErrConfigParseFailed,
			zerr.With(zerr.Wrap(err, "invalid yaml"), "path", path))
	}

	cfg, err := toDomain(&file)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return cfg, nil
}

func toDomain(file *Shadefile) (*domain.Config, error) {
	cfg := domain.DefaultConfig()

	if file.Compiler.Args != nil {
		cfg.CompilerArgs = file.Compiler.Args
	}
	if file.Compiler.OutputExt != "" {
		ext, err := NormalizeOutputExt(file.Compiler.OutputExt)
		if err != nil {
			return nil, err
		}
		cfg.OutputExt = ext
	}

	if file.LockFile != "" {
		if strings.ContainsAny(file.LockFile, `/\`) {
			return nil, errors.Join(domain.ErrConfigParseFailed,
				zerr.With(zerr.New("lock_file must be a file name"), "lock_file", file.LockFile))
		}
		cfg.LockFile = file.LockFile
	}

	if err := fsadapter.ValidatePatterns(file.Include, file.Exclude); err != nil {
		return nil, err
	}
	cfg.Include = file.Include
	cfg.Exclude = file.Exclude

	if file.OnFailure != "" {
		policy := domain.FailurePolicy(file.OnFailure)
		if !policy.Valid() {
			return nil, errors.Join(domain.ErrInvalidFailurePolicy,
				zerr.With(zerr.New("expected skip or record"), "on_failure", file.OnFailure))
		}
		cfg.OnFailure = policy
	}

	if file.LockTimeout != "" {
		d, err := time.ParseDuration(file.LockTimeout)
		if err != nil || d < 0 {
			return nil, errors.Join(domain.ErrConfigParseFailed,
				zerr.With(zerr.New("lock_timeout must be a non-negative duration"), "lock_timeout", file.LockTimeout))
		}
		cfg.LockTimeout = d
	}

	if err := applyFormat(&cfg.Format, &file.Format); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyFormat(cfg *domain.FormatConfig, dto *FormatDTO) error {
	if dto.Command != "" {
		cfg.Command = dto.Command
	}
	if dto.Args != nil {
		cfg.Args = dto.Args
	}
	if dto.Patterns != nil {
		if err := fsadapter.ValidatePatterns(dto.Patterns); err != nil {
			return err
		}
		cfg.Patterns = dto.Patterns
	}
	if dto.Workers != nil {
		if *dto.Workers < 0 {
			return errors.Join(domain.ErrConfigParseFailed,
				zerr.With(zerr.New("format.workers must not be negative"), "workers", *dto.Workers))
		}
		cfg.Workers = *dto.Workers
	}
	if dto.Roots != nil {
		cfg.Roots = dto.Roots
	}
	return nil
}

// NormalizeOutputExt strips a leading dot and rejects empty or path-like extensions.
func NormalizeOutputExt(ext string) (string, error) {
	trimmed := strings.TrimPrefix(ext, ".")
	if trimmed == "" || strings.ContainsAny(trimmed, `/\`) {
		return "", errors.Join(domain.ErrInvalidOutputExt,
			zerr.With(zerr.New("extension must be a plain suffix"), "output_ext", ext))
	}
	return trimmed, nil
}
