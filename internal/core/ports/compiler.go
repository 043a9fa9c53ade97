package ports

import (
	"context"

	"go.trai.ch/shade/internal/core/domain"
)

// Compiler runs the external shader compiler.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile runs a single invocation. A nil error means the compiler exited with status zero.
	Compile(ctx context.Context, inv domain.Invocation) error
}
