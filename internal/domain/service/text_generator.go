package service

import (
	"context"
)

// GenerateRequest is a schema-constrained request to the external
// text-generation provider. Schema, when set, is a JSON schema object the
// provider must shape its response after.
type GenerateRequest struct {
	Prompt string
	Schema map[string]any
}

// TextGenerator defines the interface for the external generative-AI
// text service. Implementations return the raw JSON text of the response;
// parsing into typed results is the caller's concern.
type TextGenerator interface {
	// Generate invokes the provider and returns the generated JSON text.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}
