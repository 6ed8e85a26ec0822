// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// LLMService turns a system instruction and a user message into text.
// This is an optional service.
//
// Implementations include:
//   - OpenAI (chat completions)
//   - Anthropic (messages)
//   - Ollama (generate, with a composed prompt)
//   - Hugging Face inference router (instruction-formatted prompt)
type LLMService interface {
	// Complete returns the model's reply to user under the system instruction.
	Complete(ctx context.Context, system, user string) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}
