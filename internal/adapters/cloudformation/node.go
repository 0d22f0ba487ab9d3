package cloudformation

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cicd/internal/core/ports"
)

// NodeID is the unique identifier for the stack deployer Graft node.
const NodeID graft.ID = "adapter.cloudformation"

func init() {
	graft.Register(graft.Node[ports.StackDeployer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StackDeployer, error) {
			return NewDeployer(), nil
		},
	})
}
