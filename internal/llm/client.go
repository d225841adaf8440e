// Package llm provides the external classification collaborator. It wraps a
// language-model API with prompt construction, retry logic, rate limiting
// and response caching.
package llm

import (
	"context"
)

// Client defines the interface for LLM providers.
type Client interface {
	Classify(ctx context.Context, systemPrompt, userPrompt string) (ClassificationResponse, error)
}

// ClassificationResponse is the validated structured output of one
// classification call.
type ClassificationResponse struct {
	Label         string
	Explanation   string
	MatchedFields []string
	Sources       []string
	Confidence    float64
}
