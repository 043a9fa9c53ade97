package ports

import "go.trai.ch/shade/internal/core/domain"

// ConfigLoader loads the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration at path.
	// It returns domain.ErrConfigNotFound when the file does not exist.
	Load(path string) (*domain.Config, error)
}
