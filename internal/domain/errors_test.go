package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ValidationError("bad", nil), http.StatusBadRequest},
		{"not found", NotFoundError("missing", nil), http.StatusNotFound},
		{"configuration", ConfigurationError("no key", nil), http.StatusBadRequest},
		{"provider", ProviderError("upstream", nil), http.StatusBadGateway},
		{"persistence", PersistenceError("db", errors.New("disk full")), http.StatusInternalServerError},
		{"plain", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFoundError("gone", nil)), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestPublicMessage_HidesDriverText(t *testing.T) {
	err := PersistenceError("failed to save product", errors.New("pq: connection refused"))

	assert.Equal(t, "failed to save product", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPublicMessage_ValidationIncludesCause(t *testing.T) {
	err := ValidationError("invalid section", errors.New("section_key must match ^[a-z0-9_]+$"))

	assert.Equal(t, "invalid section: section_key must match ^[a-z0-9_]+$", PublicMessage(err))
	assert.Equal(t, "internal error", PublicMessage(errors.New("raw")))
}

func TestPublicMessage_ProviderOmitsCause(t *testing.T) {
	cause := errors.New(`Post "https://upstream.example/v1?key=secret": dial tcp: connection refused`)
	err := fmt.Errorf("call: %w", ProviderError("google: send request", cause))

	assert.Equal(t, "google: send request", PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("call: %w", ConfigurationError("OPENAI_API_KEY is not set", nil))

	assert.True(t, Is(err, ErrorTypeConfiguration))
	assert.False(t, Is(err, ErrorTypeProvider))
	assert.False(t, Is(nil, ErrorTypeProvider))
}
