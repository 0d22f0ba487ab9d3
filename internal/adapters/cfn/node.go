package cfn

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cicd/internal/core/ports"
)

// NodeID is the unique identifier for the CloudFormation synthesizer Graft node.
const NodeID graft.ID = "adapter.cfn"

func init() {
	graft.Register(graft.Node[ports.Synthesizer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Synthesizer, error) {
			return NewSynthesizer(), nil
		},
	})
}
