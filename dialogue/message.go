package dialogue

import (
	"time"

	"github.com/hupe1980/duet/model"
)

// Role identifies one of the two scripted dialogue participants.
type Role string

const (
	// RoleA seeds the dialogue at turn 0 and speaks on even turns.
	RoleA Role = "A"
	// RoleB speaks on odd turns.
	RoleB Role = "B"
)

// Other returns the counterpart role.
func (r Role) Other() Role {
	if r == RoleA {
		return RoleB
	}
	return RoleA
}

// Valid reports whether r is one of the two dialogue roles.
func (r Role) Valid() bool { return r == RoleA || r == RoleB }

// SpeakerForTurn returns the role speaking at turn t: B on odd turns, A on
// even turns including the seed.
func SpeakerForTurn(t int) Role {
	if t%2 == 1 {
		return RoleB
	}
	return RoleA
}

// Message is a single utterance of the shared transcript. Messages are
// created by the engine when a turn completes and never mutated afterwards.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Turn      int       `json:"turn"`
	Timestamp time.Time `json:"timestamp"`
}

// History builds the perspective view of an ordered transcript: messages
// authored by the perspective role are relabeled "assistant", all others
// "user". Chronological order is preserved exactly.
func History(messages []Message, perspective Role) []model.ChatMessage {
	out := make([]model.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		role := model.RoleUser
		if msg.Role == perspective {
			role = model.RoleAssistant
		}
		out = append(out, model.ChatMessage{Role: role, Content: msg.Content})
	}
	return out
}
