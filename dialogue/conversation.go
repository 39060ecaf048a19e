package dialogue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/duet/logging"
	"github.com/hupe1980/duet/model"
)

// Status tracks the run lifecycle of a Conversation.
type Status string

const (
	// StatusNotStarted is the initial state.
	StatusNotStarted Status = "not_started"
	// StatusRunning is entered when Run begins.
	StatusRunning Status = "running"
	// StatusCompleted means the loop reached the configured turn budget.
	StatusCompleted Status = "completed"
	// StatusAborted means the run stopped early (completion failure,
	// callback cancellation or context done); the partial transcript is kept.
	StatusAborted Status = "aborted"
)

var (
	// ErrAlreadyRun is returned by Run once a conversation has left its
	// initial state: each Conversation supports exactly one run.
	ErrAlreadyRun = errors.New("conversation already run")

	// ErrNoModel is returned by Run when no completion model is attached,
	// e.g. on a conversation reconstructed by Load.
	ErrNoModel = errors.New("conversation has no completion model attached")
)

// ProgressFunc observes the transcript as it grows. It is invoked
// synchronously, once per appended message, with the turn number, the
// speaking role and the message content. Returning a non-nil error cancels
// the run; the partial transcript is kept.
type ProgressFunc func(turn int, speaker Role, content string) error

// Metadata is the bookkeeping persisted alongside the transcript.
type Metadata struct {
	StartedAt  time.Time  `json:"started_at"`
	Config     Config     `json:"config"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	TotalTurns int        `json:"total_turns"`
}

// Options holds dependency overrides passed to New and Load.
type Options struct {
	// Logger receives run lifecycle and per-turn events. Defaults to NoOp.
	Logger logging.Logger
	// Clock stamps messages and metadata. Defaults to time.Now.
	Clock func() time.Time
}

// Conversation owns the ordered message log of one scripted two-party
// dialogue. The log is append-only and exclusively mutated by Run; accessors
// return copies. A single instance supports exactly one Run.
type Conversation struct {
	mu       sync.Mutex
	cfg      Config
	backend  model.Model
	logger   logging.Logger
	clock    func() time.Time
	messages []Message
	meta     Metadata
	status   Status
	runErr   error
}

// New constructs a Conversation around a completion model. The config is
// snapshotted into metadata immediately.
func New(cfg Config, m model.Model, optFns ...func(o *Options)) *Conversation {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Conversation{
		cfg:     cfg,
		backend: m,
		logger:  opts.Logger,
		clock:   opts.Clock,
		meta: Metadata{
			StartedAt: opts.Clock(),
			Config:    cfg,
		},
		status: StatusNotStarted,
	}
}

// Run executes the dialogue: turn 0 is seeded from the configured seed
// message under role A, then roles alternate (B on odd turns) until MaxTurns
// messages exist. Each turn hands the speaker's perspective view plus system
// prompt to the completion model and appends the returned text.
//
// A completion failure, a progress callback error or a done context stops
// the loop without propagating: the accumulated transcript is returned with
// a nil error and the cause is retained on Err. The only non-nil error Run
// itself returns is ErrAlreadyRun (or ErrNoModel on a loaded conversation).
func (c *Conversation) Run(ctx context.Context, progress ProgressFunc) ([]Message, error) {
	c.mu.Lock()
	if c.status != StatusNotStarted {
		c.mu.Unlock()
		return nil, ErrAlreadyRun
	}
	if c.backend == nil {
		c.mu.Unlock()
		return nil, ErrNoModel
	}
	c.status = StatusRunning
	c.mu.Unlock()

	c.logger.Info("dialogue starting",
		"model", c.cfg.Model,
		"max_turns", c.cfg.MaxTurns,
		"provider", c.backend.Info().Provider,
	)

	c.append(Message{Role: RoleA, Content: c.cfg.SeedMessage, Turn: 0, Timestamp: c.clock()})
	if progress != nil {
		if err := progress(0, RoleA, c.cfg.SeedMessage); err != nil {
			return c.finish(fmt.Errorf("progress callback: %w", err))
		}
	}

	for t := 1; t < c.cfg.MaxTurns; t++ {
		if err := ctx.Err(); err != nil {
			return c.finish(err)
		}

		speaker := SpeakerForTurn(t)
		req := model.Request{
			Model:     c.cfg.Model,
			System:    c.cfg.SystemFor(speaker),
			Messages:  History(c.messages, speaker),
			MaxTokens: c.cfg.MaxTokensPerResponse,
		}

		resp, err := c.backend.Complete(ctx, req)
		if err != nil {
			return c.finish(fmt.Errorf("turn %d completion: %w", t, err))
		}

		c.append(Message{Role: speaker, Content: resp.Content, Turn: t, Timestamp: c.clock()})
		c.logger.Debug("turn complete",
			"turn", t,
			"speaker", string(speaker),
			"latency_ms", resp.LatencyMs,
			"tokens", resp.Usage.TotalTokens,
		)

		if progress != nil {
			if err := progress(t, speaker, resp.Content); err != nil {
				return c.finish(fmt.Errorf("progress callback: %w", err))
			}
		}
	}

	return c.finish(nil)
}

// append is the only transcript mutation; Run is its sole caller.
func (c *Conversation) append(msg Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}

// finish records the terminal state and returns the transcript snapshot.
func (c *Conversation) finish(cause error) ([]Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	c.meta.EndedAt = &now
	c.meta.TotalTurns = len(c.messages)

	if cause != nil {
		c.status = StatusAborted
		c.runErr = cause
		c.logger.Warn("dialogue aborted", "turns", len(c.messages), "error", cause)
	} else {
		c.status = StatusCompleted
		c.logger.Info("dialogue completed", "turns", len(c.messages))
	}

	return c.snapshotLocked(), nil
}

func (c *Conversation) snapshotLocked() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Messages returns a copy of the transcript accumulated so far.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// History returns the perspective view of the current transcript for the
// given role.
func (c *Conversation) History(perspective Role) []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return History(c.messages, perspective)
}

// Metadata returns the conversation bookkeeping (config snapshot, start/end
// timestamps, final turn count).
func (c *Conversation) Metadata() Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// Config returns the immutable config snapshot.
func (c *Conversation) Config() Config {
	return c.cfg
}

// Status returns the current lifecycle state.
func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err returns the failure that aborted the run, or nil. An aborted
// conversation is still a valid transcript source; Err only explains why it
// stopped early.
func (c *Conversation) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runErr
}
