// Package chat implements the conversation session controller: it owns the transcript,
// sends one query per accepted user turn to the answering service and reconciles the
// outcome into an assistant turn.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ethanbaker/essaychat/pkg/transcript"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultQueryTimeout bounds a single external query when no timeout is configured
const DefaultQueryTimeout = 60 * time.Second

// Answerer is the external answering service
type Answerer interface {
	Query(ctx context.Context, question string) (string, error)
}

// AnswererFunc adapts a plain function to Answerer
type AnswererFunc func(ctx context.Context, question string) (string, error)

func (f AnswererFunc) Query(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// Controller drives one conversation session.
//
// Overlapping submissions are not serialized: callers are expected to hold off while
// Pending is true. If they do not, every accepted call still appends its own assistant
// turn, but replies may land in completion order rather than question order
type Controller struct {
	store    *transcript.Store
	answerer Answerer

	ids      transcript.IDGenerator
	now      func() time.Time
	messages Messages
	timeout  time.Duration

	pendingMu sync.Mutex // guards inFlight and keeps pending writes in the same order
	inFlight  int
}

// Option customizes a Controller
type Option func(*Controller)

// WithIDGenerator sets the turn identifier source
func WithIDGenerator(ids transcript.IDGenerator) Option {
	return func(c *Controller) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// WithClock sets the source of turn timestamps
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMessages overrides the greeting and apology texts
func WithMessages(m Messages) Option {
	return func(c *Controller) {
		c.messages = m.withDefaults()
	}
}

// WithQueryTimeout bounds each external query. Zero or negative disables the timeout
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// NewController creates a session whose transcript starts with the greeting turn
func NewController(answerer Answerer, opts ...Option) *Controller {
	c := &Controller{
		answerer: answerer,
		ids:      transcript.UUIDGenerator{},
		now:      time.Now,
		messages: DefaultMessages(),
		timeout:  DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.store = transcript.NewStore(c.newTurn(transcript.RoleAssistant, c.messages.Greeting))
	return c
}

// Transcript returns the read-only view of the session transcript
func (c *Controller) Transcript() transcript.Reader {
	return c.store
}

// Pending reports whether any query is in flight. With overlapping submissions the flag
// stays true until the last outstanding query settles, so not every call produces its own
// true then false pair
func (c *Controller) Pending() bool {
	return c.store.Pending()
}

// Messages returns the greeting and apology in use
func (c *Controller) Messages() Messages {
	return c.messages
}

// Submit sends rawText as a user turn and blocks until the assistant turn answering it
// has been appended. It returns false, without any side effect, when rawText is blank
func (c *Controller) Submit(ctx context.Context, rawText string) bool {
	accepted, done := c.Dispatch(ctx, rawText)
	if accepted {
		<-done
	}
	return accepted
}

// Dispatch appends the user turn and raises the pending flag before returning, then waits
// for the answer in the background. done is closed once the assistant turn is appended and
// the pending flag is updated. Blank input is rejected with accepted == false and a nil done
func (c *Controller) Dispatch(ctx context.Context, rawText string) (accepted bool, done <-chan struct{}) {
	question := strings.TrimSpace(rawText)
	if question == "" {
		return false, nil
	}

	userIndex := c.store.Append(c.newTurn(transcript.RoleUser, rawText))

	c.begin()

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		c.await(ctx, userIndex, question)
	}()

	return true, ch
}

// await runs the external query and reconciles its outcome into the transcript
func (c *Controller) await(ctx context.Context, userIndex int, question string) {
	answer, err := c.query(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("component", "chat").Int("user_turn", userIndex).Msg("query failed, replying with apology")
		answer = c.messages.Apology
	}

	c.store.Append(c.newTurn(transcript.RoleAssistant, answer))
	c.settle()
}

// begin raises the pending flag for a newly issued query
func (c *Controller) begin() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	c.inFlight++
	c.store.SetPending(true)
}

// settle clears the pending flag unless another query is still outstanding
func (c *Controller) settle() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()

	c.inFlight--
	c.store.SetPending(c.inFlight > 0)
}

func (c *Controller) query(ctx context.Context, question string) (answer string, err error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// A misbehaving Answerer must not leave the session stuck pending
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("answerer panicked: %v", r)
		}
	}()

	return c.answerer.Query(ctx, question)
}

func (c *Controller) newTurn(role transcript.Role, content string) transcript.Turn {
	return transcript.NewTurn(c.ids, c.now, role, content)
}
