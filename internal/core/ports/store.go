package ports

import (
	"context"

	"go.trai.ch/cicd/internal/core/domain"
)

// AssemblyStore persists synthesized templates and their manifest.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type AssemblyStore interface {
	// Put writes the artifact's template and manifest entry.
	// It returns false when the stored template already had the same content.
	Put(ctx context.Context, artifact *domain.StackArtifact) (bool, error)

	// Get retrieves the manifest entry for an artifact ID.
	// Returns nil, nil if not found.
	Get(ctx context.Context, id string) (*domain.SynthInfo, error)

	// Close releases the underlying bucket.
	Close() error
}

// AssemblyStoreOpener opens an assembly store at a location (directory or blob URL).
type AssemblyStoreOpener interface {
	Open(ctx context.Context, location string) (AssemblyStore, error)
}
