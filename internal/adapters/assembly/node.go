package assembly

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cicd/internal/core/ports"
)

// NodeID is the unique identifier for the assembly store opener Graft node.
const NodeID graft.ID = "adapter.assembly"

func init() {
	graft.Register(graft.Node[ports.AssemblyStoreOpener]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.AssemblyStoreOpener, error) {
			return NewOpener(), nil
		},
	})
}
