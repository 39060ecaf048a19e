package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/duet/logging"
)

// ErrMalformedTranscript flags a transcript file whose structure or required
// fields do not match the persistence contract. Unknown extra config fields
// are tolerated; missing required ones are not.
var ErrMalformedTranscript = errors.New("malformed transcript")

// transcriptFile mirrors the on-disk schema: metadata (start/end timestamps,
// config snapshot, final turn count) plus the ordered message list.
type transcriptFile struct {
	Metadata Metadata  `json:"metadata"`
	Messages []Message `json:"messages"`
}

// MarshalTranscript renders the conversation in its persisted JSON form.
func (c *Conversation) MarshalTranscript() ([]byte, error) {
	c.mu.Lock()
	out := transcriptFile{Metadata: c.meta, Messages: c.snapshotLocked()}
	c.mu.Unlock()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// Save writes the transcript and config snapshot as indented JSON, creating
// parent directories as needed.
func (c *Conversation) Save(path string) error {
	data, err := c.MarshalTranscript()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	c.logger.Info("transcript saved", "path", path, "turns", len(c.Messages()))
	return nil
}

// Load reads a transcript produced by Save and reconstructs the conversation
// without a completion model attached (Run is not available on it). The
// terminal status is derived from metadata: an end timestamp with a full
// turn budget means completed, an end timestamp short of it (or messages
// without one) means aborted.
func Load(path string, optFns ...func(o *Options)) (*Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var tf transcriptFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTranscript, err)
	}
	if err := validateTranscript(&tf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTranscript, err)
	}

	opts := Options{
		Logger: logging.NoOpLogger{},
		Clock:  time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Conversation{
		cfg:      tf.Metadata.Config,
		logger:   opts.Logger,
		clock:    opts.Clock,
		messages: tf.Messages,
		meta:     tf.Metadata,
		status:   loadedStatus(&tf),
	}, nil
}

// validateTranscript enforces the required parts of the schema. Message turn
// numbers must be contiguous from 0, the invariant every downstream window
// computation leans on.
func validateTranscript(tf *transcriptFile) error {
	if tf.Metadata.StartedAt.IsZero() {
		return errors.New("metadata.started_at missing")
	}
	if err := tf.Metadata.Config.Validate(); err != nil {
		return fmt.Errorf("metadata.config: %v", err)
	}
	for i, msg := range tf.Messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
		if msg.Turn != i {
			return fmt.Errorf("message %d: turn %d out of sequence", i, msg.Turn)
		}
	}
	return nil
}

func loadedStatus(tf *transcriptFile) Status {
	switch {
	case tf.Metadata.EndedAt == nil && len(tf.Messages) == 0:
		return StatusNotStarted
	case tf.Metadata.EndedAt == nil:
		return StatusAborted
	case len(tf.Messages) >= tf.Metadata.Config.MaxTurns:
		return StatusCompleted
	default:
		return StatusAborted
	}
}
