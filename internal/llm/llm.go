package llm

import (
	"context"

	"ai-fitness-planner/internal/schema"
	"ai-fitness-planner/internal/shared"
)

// Request is a single structured generation call.
type Request struct {
	Prompt      string
	Schema      *schema.Schema
	Temperature float32
}

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// Generator produces raw JSON text for a prompt. Implementations make exactly
// one call to the model and never retry.
type Generator interface {
	Generate(ctx context.Context, req Request) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
