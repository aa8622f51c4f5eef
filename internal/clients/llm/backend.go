// Package llm wraps the chat-completion providers the audit pipeline talks to
// behind one small Backend interface.
package llm

import (
	"context"
	"time"
)

type Request struct {
	System string
	User   string
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
	// Schema, when set with JSON, is a JSON Schema document the response must
	// follow. Backends without structured output fall back to plain JSON mode.
	SchemaName string
	Schema     map[string]any
}

type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Latency          time.Duration
}

type Backend interface {
	Name() string
	Model() string
	Complete(ctx context.Context, req Request) (Completion, error)
}
