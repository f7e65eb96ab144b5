package openai

import (
	"github.com/chemsift/toxex/internal/jsonschema"
	"github.com/chemsift/toxex/providers/ai"
)

// chatCompletionRequest is the /v1/chat/completions request wire format,
// restricted to the fields this provider uses.
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    *float64            `json:"temperature,omitempty"`
	MaxTokens      *int                `json:"max_completion_tokens,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type       string          `json:"type"` // "text", "json_object", "json_schema"
	JSONSchema *chatJSONSchema `json:"json_schema,omitempty"`
}

type chatJSONSchema struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict,omitempty"`
}

type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int `json:"index"`
	Message      struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Refusal string `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// requestFromGeneric converts the provider-agnostic request into the chat
// completions wire format. A declared output schema becomes a strict
// json_schema response format.
func requestFromGeneric(request ai.ChatRequest) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:       request.Model,
		Messages:    make([]chatMessage, 0, len(request.Messages)),
		Temperature: request.Temperature,
	}
	if request.MaxTokens > 0 {
		req.MaxTokens = &request.MaxTokens
	}
	for _, m := range request.Messages {
		req.Messages = append(req.Messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}
	if rf := request.ResponseFormat; rf != nil && rf.Schema != nil {
		req.ResponseFormat = &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &chatJSONSchema{
				Name:   rf.Name,
				Schema: *rf.Schema,
				Strict: rf.Strict,
			},
		}
	}
	return req
}

// responseToGeneric converts a chat completions response into the
// provider-agnostic shape, taking the first choice.
func responseToGeneric(resp chatCompletionResponse) *ai.ChatResponse {
	out := &ai.ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Created: resp.Created,
	}
	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		out.Content = choice.Message.Content
		out.Refusal = choice.Message.Refusal
		out.FinishReason = choice.FinishReason
	}
	if resp.Usage != nil {
		out.Usage = &ai.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}
	return out
}
