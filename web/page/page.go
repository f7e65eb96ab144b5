// Package page turns URLs into clean text by composing the web fetcher with
// the HTML normalizer.
//
// Callers never see the fetcher's or normalizer's own error types: every
// failure is re-wrapped as a *page.Error identifying the URL being resolved.
package page

import (
	"context"
	"fmt"

	"github.com/chemsift/toxex/web/fetch"
	"github.com/chemsift/toxex/web/htmltext"
)

// Error wraps any failure while resolving a URL to text, carrying the
// originating URL and the underlying cause.
type Error struct {
	URL   string
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("resolve %s: %v", e.URL, e.Cause) }

func (e *Error) Unwrap() error { return e.Cause }

// Resolver fetches webpages and converts them to plain text or Markdown.
// It holds only a shared fetcher handle and is safe for concurrent use.
type Resolver struct {
	fetcher *fetch.Fetcher
}

// NewResolver creates a Resolver on top of the given fetcher.
func NewResolver(f *fetch.Fetcher) *Resolver {
	return &Resolver{fetcher: f}
}

// Text fetches url and returns its normalised plain-text content.
// Fetch options (direct mode, custom headers, timeouts) are passed through.
func (r *Resolver) Text(ctx context.Context, url string, opts ...fetch.RequestOption) (string, error) {
	html, err := r.fetcher.Fetch(ctx, url, opts...)
	if err != nil {
		return "", &Error{URL: url, Cause: err}
	}
	return htmltext.ExtractText(html), nil
}

// Markdown fetches url and returns its content converted to Markdown,
// preserving the structure that plain-text extraction discards.
func (r *Resolver) Markdown(ctx context.Context, url string, opts ...fetch.RequestOption) (string, error) {
	html, err := r.fetcher.Fetch(ctx, url, opts...)
	if err != nil {
		return "", &Error{URL: url, Cause: err}
	}
	md, err := htmltext.Markdown(html)
	if err != nil {
		return "", &Error{URL: url, Cause: err}
	}
	return md, nil
}
