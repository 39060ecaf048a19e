package model

import (
	"context"
	"fmt"
	"sync"
)

// ChatRole identifies the author of a chat message as presented to a provider.
type ChatRole string

const (
	// RoleSystem marks instructions injected ahead of the conversation.
	RoleSystem ChatRole = "system"
	// RoleUser marks messages attributed to the counterpart speaker.
	RoleUser ChatRole = "user"
	// RoleAssistant marks messages attributed to the requesting speaker.
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the role-relabeled history handed to a provider.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Request captures the normalized completion input produced by the dialogue
// engine: the speaker's system prompt, the perspective-relabeled history in
// chronological order, the model id and the response token budget.
type Request struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion returned by a provider.
type Response struct {
	Content    string     `json:"content"`
	Model      string     `json:"model"`
	StopReason string     `json:"stop_reason,omitempty"`
	Usage      TokenUsage `json:"usage"`
	LatencyMs  int64      `json:"latency_ms"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required by the dialogue engine to drive
// generation. One blocking call per turn; no streaming.
type Model interface {
	// Complete performs a single completion call and returns the final text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
// Responses are served from a FIFO script first, then from canned
// prompt-keyed responses, then from a deterministic echo fallback. All calls
// are recorded for assertions. Safe for concurrent use.
type MockModel struct {
	mu        sync.Mutex
	info      Info
	script    []scripted
	responses map[string]string
	requests  []Request
}

type scripted struct {
	content string
	err     error
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
	}
}

// Enqueue appends scripted completions served in order, one per call.
func (m *MockModel) Enqueue(contents ...string) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range contents {
		m.script = append(m.script, scripted{content: c})
	}
	return m
}

// EnqueueError appends a scripted failure served at its position in the script.
func (m *MockModel) EnqueueError(err error) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, scripted{err: err})
	return m
}

// AddResponse registers a deterministic canned completion keyed by the last
// message content of a request. Consulted only when the script is exhausted.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Complete implements Model.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cp := req
	cp.Messages = append([]ChatMessage(nil), req.Messages...)
	m.requests = append(m.requests, cp)

	if len(m.script) > 0 {
		next := m.script[0]
		m.script = m.script[1:]
		if next.err != nil {
			return nil, next.err
		}
		return m.respond(req, next.content), nil
	}

	last := req.Messages[len(req.Messages)-1].Content
	if canned, ok := m.responses[last]; ok {
		return m.respond(req, canned), nil
	}
	return m.respond(req, fmt.Sprintf("Mock response to: %s", last)), nil
}

func (m *MockModel) respond(req Request, content string) *Response {
	return &Response{
		Content:    content,
		Model:      m.info.Name,
		StopReason: "stop",
		Usage: TokenUsage{
			PromptTokens:     len(req.Messages),
			CompletionTokens: 1,
			TotalTokens:      len(req.Messages) + 1,
		},
	}
}

// Requests returns a snapshot of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}

// CallCount returns the number of Complete calls received so far.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
