package topology

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the topology builder Graft node.
const NodeID graft.ID = "engine.topology"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Builder, error) {
			return NewBuilder(), nil
		},
	})
}
