package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/logger"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	systemInstruction  = "You are a precise hiring assistant. Always answer with one valid JSON object."
	logPreviewLimit    = 512
)

var temperature float32 = 0.2

// contentGenerator is the slice of genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini calls the Google Gemini API.
type Gemini struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

var _ Client = (*Gemini)(nil)

// NewGemini creates a Gemini client for the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string, log *zap.Logger) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, domain.ErrProviderNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGemini(client.Models, model, log), nil
}

func newGemini(models contentGenerator, model string, log *zap.Logger) *Gemini {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{models: models, model: model, logger: logger.OrNop(log)}
}

func (g *Gemini) Evaluate(ctx context.Context, req EvaluateRequest) ([]byte, error) {
	return g.generate(ctx, "evaluate", buildEvaluatePrompt(req))
}

func (g *Gemini) ParseCVToProfile(ctx context.Context, cvText string, chunks []domain.RetrievedChunk) ([]byte, error) {
	return g.generate(ctx, "parse_profile", buildProfilePrompt(cvText, chunks))
}

func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) generate(ctx context.Context, op, prompt string) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
	}

	g.logger.Debug("gemini request",
		zap.String("op", op),
		zap.String("model", g.model),
		zap.Int("prompt_chars", len(prompt)),
	)

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, providerError(err)
	}

	out := responseText(resp)
	if out == "" {
		return nil, ErrEmptyResponse
	}

	g.logger.Debug("gemini response",
		zap.String("op", op),
		zap.String("preview", logger.Truncate(out, logPreviewLimit)),
	)
	return []byte(out), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(text)
		}
	}
	return strings.TrimSpace(b.String())
}

// providerError lifts genai API errors into ProviderError so callers can
// classify them without importing genai.
func providerError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.Code, Status: apiErr.Status, Message: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return &ProviderError{StatusCode: apiErrPtr.Code, Status: apiErrPtr.Status, Message: apiErrPtr.Message}
	}
	return fmt.Errorf("generate content: %w", err)
}
