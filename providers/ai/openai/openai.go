// Package openai implements the ai.Provider interface against the OpenAI
// chat completions API, using strict json_schema response formats for
// structured output.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/chemsift/toxex/internal/httpx"
	"github.com/chemsift/toxex/providers/ai"
)

const (
	defaultBaseURL          = "https://api.openai.com/v1"
	chatCompletionsEndpoint = "/chat/completions"
)

// Provider is the OpenAI implementation of ai.Provider. It holds only the
// credential, endpoint and HTTP client; the client's connection pool is
// shared across calls.
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New creates a Provider configured from the OPENAI_API_KEY and
// OPENAI_API_BASE_URL environment variables.
func New() *Provider {
	baseURL := os.Getenv("OPENAI_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Provider{
		apiKey:  os.Getenv("OPENAI_API_KEY"),
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authentication.
func (p *Provider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL overrides the default API endpoint.
func (p *Provider) WithBaseURL(baseURL string) ai.Provider {
	p.baseURL = baseURL
	return p
}

// WithHTTPClient sets a custom HTTP client.
func (p *Provider) WithHTTPClient(client *http.Client) ai.Provider {
	p.client = client
	return p
}

// Complete sends the request to the chat completions endpoint and returns
// the completed response.
func (p *Provider) Complete(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openai: API key is not set")
	}

	resp, err := httpx.PostJSON[chatCompletionResponse](
		ctx, p.client, p.baseURL+chatCompletionsEndpoint, p.apiKey, requestFromGeneric(request))
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices in response")
	}
	return responseToGeneric(*resp), nil
}
