package dialogue

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Reference experiment defaults.
const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTurns  = 30
	DefaultMaxTokens = 1024
)

// Config carries the static parameters of one dialogue. It is snapshotted
// into conversation metadata at creation and never mutated afterwards.
type Config struct {
	Model                string `json:"model"`
	MaxTurns             int    `json:"max_turns"`
	MaxTokensPerResponse int    `json:"max_tokens_per_response"`
	SystemA              string `json:"system_a"`
	SystemB              string `json:"system_b"`
	SeedMessage          string `json:"seed_message"`
}

// DefaultConfig returns the reference setup: two open-ended self-dialogue
// prompts and a friendly seed.
func DefaultConfig() Config {
	return Config{
		Model:                DefaultModel,
		MaxTurns:             DefaultMaxTurns,
		MaxTokensPerResponse: DefaultMaxTokens,
		SystemA: "You are having a conversation with another instance of yourself. " +
			"You have complete freedom to explore any topics that interest you. " +
			"Feel free to be curious, philosophical, creative, or whatever feels natural.",
		SystemB: "You are having a conversation with another instance of yourself. " +
			"You have complete freedom to pursue whatever direction feels meaningful. " +
			"Be authentic and explore freely.",
		SeedMessage: "Hello! I understand we're both AI assistants, given the freedom to " +
			"converse about whatever we find interesting. What's on your mind?",
	}
}

// SystemFor returns the system prompt for the given role.
func (c Config) SystemFor(r Role) string {
	if r == RoleB {
		return c.SystemB
	}
	return c.SystemA
}

// Validate checks the fields the engine depends on. System prompts may be
// empty; model, turn budget, token budget and seed are required.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.MaxTurns, validation.Required, validation.Min(1)),
		validation.Field(&c.MaxTokensPerResponse, validation.Required, validation.Min(1)),
		validation.Field(&c.SeedMessage, validation.Required),
	)
}
