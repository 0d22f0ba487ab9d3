package diff

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/cicd/internal/core/ports"
)

// NodeID is the unique identifier for the template differ Graft node.
const NodeID graft.ID = "adapter.diff"

func init() {
	graft.Register(graft.Node[ports.TemplateDiffer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.TemplateDiffer, error) {
			return NewDiffer(), nil
		},
	})
}
