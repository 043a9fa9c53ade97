package ports

import (
	"context"

	"go.trai.ch/shade/internal/core/domain"
)

// Formatter reformats source files in place.
//
//go:generate mockgen -source=formatter.go -destination=mocks/mock_formatter.go -package=mocks
type Formatter interface {
	Format(ctx context.Context, spec domain.FormatSpec) (domain.FormatReport, error)
}
