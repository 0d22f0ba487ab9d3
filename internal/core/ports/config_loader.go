// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/cicd/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds cicd.yaml at or above cwd and returns the project with its environments.
	// When stages is non-empty only those deployment stages are returned, in the given order.
	Load(cwd string, stages []string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to find the directory containing cicd.yaml.
	DiscoverRoot(cwd string) (string, error)
}
