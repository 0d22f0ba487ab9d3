package cloudformation

import (
	"context"
	"time"

	"go.trai.ch/cicd/internal/core/domain"
)

// WaitFunc exposes waitFunc for tests.
type WaitFunc = waitFunc

// NewDeployerWithClients creates a Deployer backed by the given clients.
func NewDeployerWithClients(api API, identity IdentityAPI, wait WaitFunc, token string) *Deployer {
	if wait == nil {
		wait = func(context.Context, API, string, domain.DeployOperation, time.Duration) error { return nil }
	}
	return &Deployer{
		clients: func(context.Context, domain.Env) (API, IdentityAPI, error) {
			return api, identity, nil
		},
		wait:     wait,
		newToken: func() string { return token },
	}
}
