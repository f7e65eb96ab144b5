// Package ai defines the provider-agnostic contract for completion
// services: role-tagged messages in, a completed (optionally
// schema-constrained) response out.
package ai

import (
	"context"
	"net/http"
)

// Provider is the interface every completion-service implementation must
// satisfy. A Provider is a shared, reusable handle: it holds a credential
// and an HTTP client but never per-call state, so one instance serves
// concurrent requests.
type Provider interface {
	// Complete sends a chat request and returns the completed response.
	// It returns an error when the service call fails, the context is
	// cancelled, or the response cannot be decoded.
	Complete(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// WithAPIKey sets the credential used for authentication.
	WithAPIKey(apiKey string) Provider

	// WithBaseURL overrides the default API endpoint.
	WithBaseURL(baseURL string) Provider

	// WithHTTPClient sets the HTTP client used for outbound requests.
	WithHTTPClient(client *http.Client) Provider
}
