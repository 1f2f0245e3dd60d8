package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGemini_Evaluate(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"decision":"yes"}`)}
	g := newGemini(fake, "", zap.NewNop())

	out, err := g.Evaluate(context.Background(), EvaluateRequest{
		JobBlueprint: "Senior Go engineer",
		CVText:       "Built payment systems in Go",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"decision":"yes"}`, string(out))

	assert.Equal(t, defaultGeminiModel, fake.model)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	assert.Contains(t, fake.prompt, "Senior Go engineer")
	assert.Contains(t, fake.prompt, "Built payment systems in Go")
	assert.Contains(t, fake.prompt, noProfile)
	assert.NotContains(t, fake.prompt, "{{")
}

func TestGemini_ParseCVToProfile(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"name":"Ada"}`)}
	g := newGemini(fake, "gemini-test", nil)

	chunks := []domain.RetrievedChunk{{
		Chunk:          domain.Chunk{Text: "Go, Postgres", Index: 2, SectionType: domain.SectionSkills},
		RelevanceScore: 0.9,
	}}
	out, err := g.ParseCVToProfile(context.Background(), "Ada Lovelace", chunks)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ada"}`, string(out))
	assert.Equal(t, "gemini-test", fake.model)
	assert.Contains(t, fake.prompt, "[skills #2]\nGo, Postgres")
}

func TestGemini_EmptyResponse(t *testing.T) {
	for name, resp := range map[string]*genai.GenerateContentResponse{
		"nil":        nil,
		"no parts":   {Candidates: []*genai.Candidate{{}}},
		"blank text": textResponse("  ", "\n"),
	} {
		t.Run(name, func(t *testing.T) {
			g := newGemini(&fakeModels{resp: resp}, "", nil)
			_, err := g.Evaluate(context.Background(), EvaluateRequest{})
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestGemini_ProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"value", genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded"}},
		{"pointer", &genai.APIError{Code: http.StatusServiceUnavailable, Status: "UNAVAILABLE", Message: "overloaded"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newGemini(&fakeModels{err: tt.err}, "", nil)
			_, err := g.Evaluate(context.Background(), EvaluateRequest{})

			var pe *ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, http.StatusServiceUnavailable, pe.StatusCode)
			assert.Equal(t, "UNAVAILABLE", pe.Status)
			assert.Equal(t, "overloaded", pe.Message)
		})
	}
}

func TestGemini_TransportError(t *testing.T) {
	g := newGemini(&fakeModels{err: errors.New("dial tcp: timeout")}, "", nil)
	_, err := g.Evaluate(context.Background(), EvaluateRequest{})
	require.Error(t, err)

	var pe *ProviderError
	assert.False(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "  ", "", nil)
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestUnconfigured(t *testing.T) {
	var c Client = Unconfigured{}
	_, err := c.Evaluate(context.Background(), EvaluateRequest{})
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
	_, err = c.ParseCVToProfile(context.Background(), "cv", nil)
	assert.ErrorIs(t, err, domain.ErrProviderNotConfigured)
}

func TestFormatChunks_Empty(t *testing.T) {
	assert.Equal(t, "(none)", FormatChunks(nil))
}
