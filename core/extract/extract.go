// Package extract performs schema-constrained structured extraction.
//
// An Extractor[T] sends exactly two ordered messages (fixed system
// instructions, then the input text) to a completion service, declaring the
// JSON Schema of T as the required output shape, and decodes the response
// into T. A missing or unparseable result is always a hard *Error; the
// extractor never substitutes an empty T. No retries happen at this layer.
package extract

import (
	"context"
	"fmt"
	"sync"

	"github.com/chemsift/toxex/core/parse"
	"github.com/chemsift/toxex/internal/jsonschema"
	"github.com/chemsift/toxex/providers/ai"
)

// Error reports that the completion service returned no parseable
// structured result for the given input.
type Error struct {
	Model string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("structured extraction with %s failed: %v", e.Model, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Extractor extracts values of type T from text. The schema of T is derived
// once at construction and reused for every call; the provider handle is
// shared and the Extractor carries no per-call state.
type Extractor[T any] struct {
	provider   ai.Provider
	model      string
	schemaName string
	schema     *jsonschema.Schema
}

// Option configures an Extractor.
type Option func(*config)

type config struct {
	model      string
	schemaName string
}

// WithModel sets the model identifier used for completions.
func WithModel(model string) Option {
	return func(c *config) { c.model = model }
}

// WithSchemaName overrides the schema label sent to the provider.
func WithSchemaName(name string) Option {
	return func(c *config) { c.schemaName = name }
}

// New creates an Extractor for type T on top of the given provider.
func New[T any](provider ai.Provider, opts ...Option) *Extractor[T] {
	cfg := config{model: "gpt-4o", schemaName: "extraction"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Extractor[T]{
		provider:   provider,
		model:      cfg.model,
		schemaName: cfg.schemaName,
		schema:     jsonschema.For[T](),
	}
}

// Extract sends system and user as two ordered messages with the declared
// schema of T and returns the decoded result. It blocks until the service
// responds or ctx is done.
func (e *Extractor[T]) Extract(ctx context.Context, system, user string) (T, error) {
	var zero T

	resp, err := e.provider.Complete(ctx, ai.ChatRequest{
		Model: e.model,
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: system},
			{Role: ai.RoleUser, Content: user},
		},
		ResponseFormat: &ai.ResponseFormat{
			Name:   e.schemaName,
			Schema: e.schema,
			Strict: true,
		},
	})
	if err != nil {
		return zero, &Error{Model: e.model, Cause: err}
	}
	if resp.Refusal != "" {
		return zero, &Error{Model: e.model, Cause: fmt.Errorf("model refused: %s", resp.Refusal)}
	}
	if resp.Content == "" {
		return zero, &Error{Model: e.model, Cause: fmt.Errorf("empty completion")}
	}

	result, err := parse.Decode[T](resp.Content)
	if err != nil {
		return zero, &Error{Model: e.model, Cause: err}
	}
	return result, nil
}

// ExtractAll runs Extract over every input concurrently, bounded by
// concurrency (values below 1 are treated as 1), with results kept in input
// order. Its error contract matches Extract: on the first failure the
// remaining work is cancelled and that failure is returned, so callers
// never observe a partial slice.
func (e *Extractor[T]) ExtractAll(ctx context.Context, system string, inputs []string, concurrency int) ([]T, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]T, len(inputs))
	sem := make(chan struct{}, concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for i, input := range inputs {
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			out, err := e.Extract(ctx, system, input)
			if err != nil {
				fail(err)
				return
			}
			results[i] = out
		}(i, input)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
