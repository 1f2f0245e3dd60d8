package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		apiKey  *APIKey
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid api key",
			apiKey:  &APIKey{ID: "key1", OwnerID: "owner1", Name: "ci", KeyHash: "hash123", CreatedAt: now},
			wantErr: false,
		},
		{
			name:    "missing ID",
			apiKey:  &APIKey{OwnerID: "owner1", Name: "ci", KeyHash: "hash123"},
			wantErr: true,
			errMsg:  "ID",
		},
		{
			name:    "missing OwnerID",
			apiKey:  &APIKey{ID: "key1", Name: "ci", KeyHash: "hash123"},
			wantErr: true,
			errMsg:  "OwnerID",
		},
		{
			name:    "missing Name",
			apiKey:  &APIKey{ID: "key1", OwnerID: "owner1", KeyHash: "hash123"},
			wantErr: true,
			errMsg:  "Name",
		},
		{
			name:    "missing KeyHash",
			apiKey:  &APIKey{ID: "key1", OwnerID: "owner1", Name: "ci"},
			wantErr: true,
			errMsg:  "KeyHash",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.apiKey)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAPIKeyIsRevoked(t *testing.T) {
	revokedAt := time.Now()

	assert.False(t, (&APIKey{ID: "k"}).IsRevoked())
	assert.True(t, (&APIKey{ID: "k", RevokedAt: &revokedAt}).IsRevoked())
}
