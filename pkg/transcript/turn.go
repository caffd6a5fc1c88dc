package transcript

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in the conversation transcript. Turns are values and
// are never modified once they have been appended to a Store
type Turn struct {
	ID        string    `json:"id"`         // Unique within a session
	Role      Role      `json:"role"`       // Author of the turn
	Content   string    `json:"content"`    // Text payload, stored verbatim
	CreatedAt time.Time `json:"created_at"` // Creation timestamp
}

// NewTurn creates a turn with an ID drawn from ids and a timestamp from now
func NewTurn(ids IDGenerator, now func() time.Time, role Role, content string) Turn {
	return Turn{
		ID:        ids.NextID(),
		Role:      role,
		Content:   content,
		CreatedAt: now(),
	}
}

// IDGenerator produces turn identifiers that are unique within a session
type IDGenerator interface {
	NextID() string
}

// UUIDGenerator hands out random UUIDs
type UUIDGenerator struct{}

// NextID returns a new random UUID string
func (UUIDGenerator) NextID() string {
	return uuid.NewString()
}

// SequenceGenerator hands out monotonically increasing identifiers with an optional prefix.
// It is safe for concurrent use
type SequenceGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequenceGenerator creates a sequence generator starting at 1
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// NextID returns the next identifier in the sequence
func (g *SequenceGenerator) NextID() string {
	return g.Prefix + strconv.FormatUint(g.n.Add(1), 10)
}
