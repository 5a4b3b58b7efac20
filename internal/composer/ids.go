package composer

import "github.com/google/uuid"

// IDGenerator allocates instance ids.
type IDGenerator interface {
	NewID(componentID string) string
}

// UUIDGenerator prefixes a random UUID with the component id, e.g.
// "hero-classic-3f0c...".
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(componentID string) string {
	return componentID + "-" + uuid.NewString()
}
