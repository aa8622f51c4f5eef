package llm

import (
	"context"
	"sync"
	"time"
)

// Fake is an in-memory Backend for tests. Respond decides each reply; Calls
// records every request in order.
type Fake struct {
	BackendName string
	ModelName   string
	Respond     func(ctx context.Context, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func (f *Fake) Name() string  { return f.BackendName }
func (f *Fake) Model() string { return f.ModelName }

func (f *Fake) Complete(ctx context.Context, req Request) (Completion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	start := time.Now()
	// Text returned alongside an error is kept, as real backends do for
	// ErrTruncated.
	text, err := f.Respond(ctx, req)
	return Completion{
		Text:             text,
		Model:            f.ModelName,
		PromptTokens:     len(req.User) / 4,
		CompletionTokens: len(text) / 4,
		TotalTokens:      (len(req.User) + len(text)) / 4,
		Latency:          time.Since(start),
	}, err
}

func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.calls))
	copy(out, f.calls)
	return out
}
