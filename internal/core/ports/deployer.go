package ports

import (
	"context"

	"go.trai.ch/cicd/internal/core/domain"
)

// StackDeployer hands synthesized templates to the external deployment service.
//
//go:generate mockgen -source=deployer.go -destination=mocks/mock_deployer.go -package=mocks
type StackDeployer interface {
	// Deploy creates the stack if it does not exist and updates it otherwise.
	Deploy(ctx context.Context, req domain.DeployRequest) (*domain.DeployResult, error)

	// CurrentTemplate returns the template body of the deployed stack.
	// found is false when the stack does not exist.
	CurrentTemplate(ctx context.Context, stackName string, env domain.Env) (body string, found bool, err error)
}
