package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloo-solutions/hirelens/internal/domain"
)

type mockKeyCreator struct {
	mock.Mock
}

func (m *mockKeyCreator) CreateAPIKey(ctx context.Context, ownerID, name string) (string, error) {
	args := m.Called(ctx, ownerID, name)
	return args.String(0), args.Error(1)
}

func TestRunAPIKeyCreate_Text(t *testing.T) {
	svc := new(mockKeyCreator)
	svc.On("CreateAPIKey", mock.Anything, "acme", "ci").Return("hl_token", nil)

	var out bytes.Buffer
	require.NoError(t, runAPIKeyCreate(context.Background(), &out, svc, "acme", "ci", "text"))

	assert.Contains(t, out.String(), "API key created for owner acme")
	assert.Contains(t, out.String(), "Token: hl_token")
	svc.AssertExpectations(t)
}

func TestRunAPIKeyCreate_JSON(t *testing.T) {
	svc := new(mockKeyCreator)
	svc.On("CreateAPIKey", mock.Anything, "acme", "ci").Return("hl_token", nil)

	var out bytes.Buffer
	require.NoError(t, runAPIKeyCreate(context.Background(), &out, svc, "acme", "ci", "json"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, map[string]string{"owner": "acme", "name": "ci", "token": "hl_token"}, got)
}

func TestRunAPIKeyCreate_Error(t *testing.T) {
	svc := new(mockKeyCreator)
	svc.On("CreateAPIKey", mock.Anything, "", "ci").Return("", domain.NewDomainError(domain.ErrCodeValidation, "owner ID is required"))

	err := runAPIKeyCreate(context.Background(), &bytes.Buffer{}, svc, "", "ci", "text")
	require.Error(t, err)
	var de *domain.DomainError
	assert.True(t, errors.As(err, &de))
}

func TestPrintAPIKeys(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	revoked := created.Add(time.Hour)
	keys := []*domain.APIKey{
		{ID: "k1", OwnerID: "acme", Name: "ci", CreatedAt: created},
		{ID: "k2", OwnerID: "acme", Name: "old", CreatedAt: created, RevokedAt: &revoked},
	}

	var out bytes.Buffer
	require.NoError(t, printAPIKeys(&out, "acme", keys, "text"))
	assert.Contains(t, out.String(), "k1: ci (active, created: 2026-01-02 03:04:05)")
	assert.Contains(t, out.String(), "k2: old (revoked")

	out.Reset()
	require.NoError(t, printAPIKeys(&out, "acme", nil, "text"))
	assert.Equal(t, "No API keys found for owner acme\n", out.String())

	out.Reset()
	require.NoError(t, printAPIKeys(&out, "acme", keys, "json"))
	var got struct {
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Items, 2)
	assert.Equal(t, true, got.Items[1]["revoked"])
}
