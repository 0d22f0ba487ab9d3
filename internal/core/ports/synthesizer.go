package ports

import "go.trai.ch/cicd/internal/core/domain"

// Synthesizer renders a validated pipeline topology into a deployable template.
//
//go:generate mockgen -source=synthesizer.go -destination=mocks/mock_synthesizer.go -package=mocks
type Synthesizer interface {
	// Synthesize returns the template declaring the pipeline and its supporting resources.
	Synthesize(pipeline *domain.Pipeline, params domain.Params, stackName string) (*domain.Template, error)

	// Encode serializes the template in the given format ("json" or "yaml").
	Encode(tmpl *domain.Template, format string) ([]byte, error)
}
