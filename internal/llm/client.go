// Package llm adapts the external language model used for candidate evaluation
// and CV profile parsing.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

// Client is the language-model adapter consumed by the evaluation pipeline.
// Both calls return the model's raw text, expected to hold a JSON object.
type Client interface {
	Evaluate(ctx context.Context, req EvaluateRequest) ([]byte, error)
	ParseCVToProfile(ctx context.Context, cvText string, chunks []domain.RetrievedChunk) ([]byte, error)
	Model() string
}

// EvaluateRequest carries the grounding context for one evaluation call.
type EvaluateRequest struct {
	JobBlueprint     string
	CandidateProfile string
	CVText           string
}

// ErrEmptyResponse means the provider answered without any text.
var ErrEmptyResponse = errors.New("model returned empty response")

// ProviderError is a failure reported by the provider with an HTTP-like status.
type ProviderError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// Unconfigured is used when no provider API key is set. Every call fails with
// domain.ErrProviderNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Evaluate(context.Context, EvaluateRequest) ([]byte, error) {
	return nil, domain.ErrProviderNotConfigured
}

func (Unconfigured) ParseCVToProfile(context.Context, string, []domain.RetrievedChunk) ([]byte, error) {
	return nil, domain.ErrProviderNotConfigured
}

func (Unconfigured) Model() string {
	return ""
}
