package reduce

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource produces fresh item ids. Production uses UUIDs; tests use the
// sequential source so ids are deterministic.
type IDSource interface {
	Next() string
}

// UUIDSource generates globally unique random ids.
type UUIDSource struct{}

func (UUIDSource) Next() string { return uuid.NewString() }

// SequentialIDs generates "item-1", "item-2", ... in dispatch order.
type SequentialIDs struct {
	n atomic.Uint64
}

func NewSequentialIDs() *SequentialIDs { return &SequentialIDs{} }

func (s *SequentialIDs) Next() string {
	return fmt.Sprintf("item-%d", s.n.Add(1))
}
