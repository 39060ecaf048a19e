package testutil

import (
	"time"

	"github.com/hupe1980/duet/dialogue"
)

// TranscriptBuilder provides a fluent helper for constructing message
// transcripts in tests.
// Example:
//
//	msgs := NewTranscriptBuilder().Say("hello").Say("hi there").Build()
//
// Turns are numbered contiguously from zero, speakers alternate
// automatically and deterministic timestamps are applied.
type TranscriptBuilder struct {
	contents []string
}

// NewTranscriptBuilder creates an empty builder.
func NewTranscriptBuilder() *TranscriptBuilder {
	return &TranscriptBuilder{}
}

// Say appends one message for the next speaker in turn order (chainable).
func (b *TranscriptBuilder) Say(content string) *TranscriptBuilder {
	b.contents = append(b.contents, content)
	return b
}

// SayN appends the same content n times (chainable).
func (b *TranscriptBuilder) SayN(content string, n int) *TranscriptBuilder {
	for i := 0; i < n; i++ {
		b.contents = append(b.contents, content)
	}
	return b
}

// Build constructs the message slice. Timestamps start at a fixed
// instant and advance by one second per message.
func (b *TranscriptBuilder) Build() []dialogue.Message {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	msgs := make([]dialogue.Message, 0, len(b.contents))
	for i, c := range b.contents {
		msgs = append(msgs, dialogue.Message{
			Role:      dialogue.SpeakerForTurn(i),
			Content:   c,
			Turn:      i,
			Timestamp: start.Add(time.Duration(i) * time.Second),
		})
	}
	return msgs
}
