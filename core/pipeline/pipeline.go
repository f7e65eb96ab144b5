// Package pipeline orchestrates end-to-end toxin extraction: it scans the
// input for URLs, resolves each one to normalized page text, runs structured
// extraction over every source, and merges the results in source order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chemsift/toxex/toxin"
	"github.com/chemsift/toxex/web/fetch"
	"github.com/chemsift/toxex/web/urlscan"
)

// TextResolver turns a URL into normalized plain text.
type TextResolver interface {
	Text(ctx context.Context, rawURL string, opts ...fetch.RequestOption) (string, error)
}

// ToxinExtractor extracts a toxin list from already-normalized text.
type ToxinExtractor interface {
	Extract(ctx context.Context, system, user string) (toxin.List, error)
}

// Pipeline wires URL scanning, page resolution and structured extraction
// into a single Process call.
type Pipeline struct {
	resolver       TextResolver
	extractor      ToxinExtractor
	systemPrompt   string
	skipFailedURLs bool
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSystemPrompt replaces the default extraction instructions.
func WithSystemPrompt(prompt string) Option {
	return func(p *Pipeline) { p.systemPrompt = prompt }
}

// WithSkipFailedURLs makes Process log and skip URLs that fail to resolve
// or extract instead of aborting. The default is to fail on the first
// broken source.
func WithSkipFailedURLs() Option {
	return func(p *Pipeline) { p.skipFailedURLs = true }
}

// WithLogger sets the logger used for per-source progress and skip events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline from a page resolver and a toxin extractor.
func New(resolver TextResolver, extractor ToxinExtractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver:     resolver,
		extractor:    extractor,
		systemPrompt: ToxinPrompt,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process extracts toxins from free-form text. Every URL found in the input
// is fetched and extracted in discovery order, then the remaining text with
// those URLs removed is extracted last. Each URL instance is removed from
// the remainder once, so repeated mentions keep their later occurrences.
func (p *Pipeline) Process(ctx context.Context, text string) (*toxin.Response, error) {
	urls := urlscan.Extract(text)
	remainder := text

	var all []toxin.Toxin
	for _, rawURL := range urls {
		remainder = strings.Replace(remainder, rawURL, "", 1)

		toxins, err := p.processURL(ctx, rawURL)
		if err != nil {
			if p.skipFailedURLs {
				p.logger.Warn("skipping failed source", "url", rawURL, "error", err)
				continue
			}
			return nil, err
		}
		all = append(all, toxins...)
	}

	if strings.TrimSpace(remainder) != "" {
		list, err := p.extractor.Extract(ctx, p.systemPrompt, remainder)
		if err != nil {
			return nil, fmt.Errorf("extract from remaining text: %w", err)
		}
		all = append(all, list.Toxins...)
	}

	return &toxin.Response{Toxins: all, URLs: urls}, nil
}

// ProcessURL fetches a single URL and extracts toxins from its text.
func (p *Pipeline) ProcessURL(ctx context.Context, rawURL string) (*toxin.Response, error) {
	toxins, err := p.processURL(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return &toxin.Response{Toxins: toxins, URLs: []string{rawURL}}, nil
}

// ProcessText extracts toxins from text as-is, with no URL handling.
func (p *Pipeline) ProcessText(ctx context.Context, text string) (*toxin.List, error) {
	list, err := p.extractor.Extract(ctx, p.systemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("extract from text: %w", err)
	}
	return &list, nil
}

func (p *Pipeline) processURL(ctx context.Context, rawURL string) ([]toxin.Toxin, error) {
	p.logger.Debug("resolving source", "url", rawURL)
	text, err := p.resolver.Text(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rawURL, err)
	}
	list, err := p.extractor.Extract(ctx, p.systemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("extract from %s: %w", rawURL, err)
	}
	return list.Toxins, nil
}
