package archive

import (
	"context"
	"sync"
	"time"

	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	queueSize    = 100
	writeTimeout = 10 * time.Second
)

type pendingWrite struct {
	position int
	turn     transcript.Turn
}

// Recorder copies every turn appended to a transcript into a Writer.
// Writes happen on a single background goroutine so the transcript is never blocked on the database;
// when the queue is full, turns are dropped and logged
type Recorder struct {
	writer    Writer
	sessionID uuid.UUID

	queue chan pendingWrite
	done  chan struct{}

	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

// NewRecorder creates the archived session and starts the writer goroutine
func NewRecorder(ctx context.Context, writer Writer, sessionID uuid.UUID) (*Recorder, error) {
	if err := writer.CreateSession(ctx, sessionID); err != nil {
		return nil, errors.Wrap(err, "create archived session")
	}

	r := &Recorder{
		writer:    writer,
		sessionID: sessionID,
		queue:     make(chan pendingWrite, queueSize),
		done:      make(chan struct{}),
	}
	go r.run()

	return r, nil
}

// SessionID returns the archived session identifier
func (r *Recorder) SessionID() uuid.UUID {
	return r.sessionID
}

// Attach archives the turns already in the transcript and every turn appended afterwards
func (r *Recorder) Attach(reader transcript.Reader) {
	current, unsubscribe := reader.Watch(func(ev transcript.Event) {
		if ev.Kind == transcript.EventTurnAppended {
			r.enqueue(ev.Index, ev.Turn)
		}
	})

	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()

	for i, turn := range current.Turns {
		r.enqueue(i, turn)
	}
}

func (r *Recorder) enqueue(position int, turn transcript.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	select {
	case r.queue <- pendingWrite{position: position, turn: turn}:
	default:
		log.Warn().Str("component", "archive").Str("turn_id", turn.ID).Msg("archive queue full, dropping turn")
	}
}

func (r *Recorder) run() {
	defer close(r.done)

	for w := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := r.writer.SaveTurn(ctx, r.sessionID, w.position, w.turn); err != nil {
			log.Error().Err(err).Str("component", "archive").Str("session_id", r.sessionID.String()).Msg("failed to archive turn")
		}
		cancel()
	}
}

// Close detaches from the transcript, flushes queued turns and stops the writer goroutine
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		<-r.done
		return
	}
	r.closed = true
	unsubscribe := r.unsubscribe
	close(r.queue)
	r.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	<-r.done
}
