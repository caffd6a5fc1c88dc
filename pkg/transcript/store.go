package transcript

import (
	"slices"
	"sync"
)

// EventKind describes which store mutation produced an event
type EventKind int

const (
	EventTurnAppended EventKind = iota
	EventPendingChanged
)

func (k EventKind) String() string {
	switch k {
	case EventTurnAppended:
		return "turn_appended"
	case EventPendingChanged:
		return "pending_changed"
	default:
		return "unknown"
	}
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is delivered to subscribers after every store mutation
type Event struct {
	Kind    EventKind `json:"kind"`
	Turn    Turn      `json:"turn"`    // Appended turn (EventTurnAppended)
	Index   int       `json:"index"`   // Insertion index of the appended turn
	Pending bool      `json:"pending"` // Pending flag after the mutation
}

// Reader is the read-only view of a transcript handed to presentation layers
type Reader interface {
	Turns() []Turn
	Turn(i int) (Turn, bool)
	Len() int
	Pending() bool
	Subscribe(fn func(Event)) (unsubscribe func())
	Watch(fn func(Event)) (snapshot Snapshot, unsubscribe func())
}

// Snapshot is the transcript state at one point in the event sequence
type Snapshot struct {
	Turns   []Turn
	Pending bool
}

// Store is an append-only sequence of turns plus a single pending flag.
//
// The session controller is the only writer. Readers may call the accessors
// from any goroutine. Subscribers are called synchronously, in mutation order,
// after the mutation is visible to readers; they must not mutate the store
type Store struct {
	mu      sync.RWMutex
	turns   []Turn
	pending bool

	emitMu sync.Mutex // serializes mutation + delivery so events arrive in order

	subsMu  sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

var _ Reader = (*Store)(nil)

// NewStore creates a store whose only turn is the greeting
func NewStore(greeting Turn) *Store {
	return &Store{
		turns: []Turn{greeting},
		subs:  make(map[int]func(Event)),
	}
}

// Append inserts a turn at the end of the transcript and returns its index
func (s *Store) Append(turn Turn) int {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.turns = append(s.turns, turn)
	index := len(s.turns) - 1
	pending := s.pending
	s.mu.Unlock()

	s.emit(Event{Kind: EventTurnAppended, Turn: turn, Index: index, Pending: pending})
	return index
}

// SetPending sets the pending flag. Every call notifies subscribers, even when the value is unchanged
func (s *Store) SetPending(pending bool) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.pending = pending
	index := len(s.turns) - 1
	s.mu.Unlock()

	s.emit(Event{Kind: EventPendingChanged, Index: index, Pending: pending})
}

// Turns returns a snapshot of the transcript in insertion order
func (s *Store) Turns() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Turn returns the turn at index i
func (s *Store) Turn(i int) (Turn, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.turns) {
		return Turn{}, false
	}
	return s.turns[i], true
}

// Len returns the number of turns, greeting included
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.turns)
}

// Pending reports whether an external query is in flight
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// Subscribe registers fn for every subsequent event. The returned function removes the subscription
func (s *Store) Subscribe(fn func(Event)) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			delete(s.subs, id)
		})
	}
}

// Watch captures the current state and subscribes fn in one step: fn receives exactly the
// events that follow the snapshot, so no turn is both in Turns and delivered to fn.
// It must not be called from inside a subscriber
func (s *Store) Watch(fn func(Event)) (Snapshot, func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	snapshot := Snapshot{Turns: s.Turns(), Pending: s.Pending()}
	return snapshot, s.Subscribe(fn)
}

// emit delivers ev to the current subscribers in registration order (called with emitMu held)
func (s *Store) emit(ev Event) {
	s.subsMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(Event), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
