package ai

import "github.com/chemsift/toxex/internal/jsonschema"

// MessageRole identifies the author of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single role-tagged message in a completion request.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// ResponseFormat declares the output shape the completion must conform to.
type ResponseFormat struct {
	// Name labels the schema; providers require an identifier alongside
	// the schema document.
	Name string `json:"name"`
	// Schema is the JSON Schema of the expected output.
	Schema *jsonschema.Schema `json:"schema"`
	// Strict requests hard schema enforcement where the provider supports it.
	Strict bool `json:"strict,omitempty"`
}

// ChatRequest is a provider-agnostic completion request.
type ChatRequest struct {
	Model          string          `json:"model,omitempty"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
}

// Usage reports token consumption for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ChatResponse is the completed response from a provider.
type ChatResponse struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	Created      int64  `json:"created"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	// Refusal is set when the model declines to answer for safety reasons.
	Refusal string `json:"refusal,omitempty"`
	Usage   *Usage `json:"usage,omitempty"`
}
