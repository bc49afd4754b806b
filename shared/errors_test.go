package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", NewInvalidInputError("svc", "op", "Invalid brand"), http.StatusBadRequest},
		{"upstream status", NewUpstreamFetchError("svc", "op", "https://example.test", http.StatusForbidden, nil), http.StatusForbidden},
		{"no response", NewUpstreamFetchError("svc", "op", "https://example.test", 0, errors.New("dial tcp")), http.StatusBadGateway},
		{"not found", NewNotFoundError("svc", "op", "Closet item not found"), http.StatusNotFound},
		{"wrapped", fmt.Errorf("import: %w", NewNotFoundError("svc", "op", "missing")), http.StatusNotFound},
		{"parse failure", NewParseFailureError("svc", "op", errors.New("bad json")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatusForError(tt.err))
		})
	}
}

func TestNewUpstreamFetchError(t *testing.T) {
	err := NewUpstreamFetchError("svc", "op", "https://example.test/p", http.StatusNotFound, nil)
	assert.Equal(t, "failed to fetch https://example.test/p: HTTP 404", err.Message)
	assert.Equal(t, ErrorCategoryNetwork, err.Category)
	assert.True(t, err.IsRetryable())

	timeout := NewUpstreamFetchError("svc", "op", "https://example.test/p", 0, fmt.Errorf("get: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrorCategoryTimeout, timeout.Category)
	assert.Equal(t, "failed to fetch https://example.test/p", timeout.Message)
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)
}

func TestAsServiceErrorAndHasCode(t *testing.T) {
	original := NewInvalidInputError("svc", "op", "Missing brand or productId")
	wrapped := fmt.Errorf("handler: %w", original)

	serviceErr, ok := AsServiceError(wrapped)
	require.True(t, ok)
	assert.Same(t, original, serviceErr)
	assert.True(t, HasCode(wrapped, CodeInvalidInput))
	assert.False(t, HasCode(wrapped, CodeNotFound))

	_, ok = AsServiceError(errors.New("plain"))
	assert.False(t, ok)
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrorCategoryDatabase, "DB", "svc", "op", false))

	wrapped := WrapError(errors.New("connection refused"), ErrorCategoryDatabase, "DB", "svc", "op", true)
	assert.Equal(t, "connection refused", wrapped.Message)
	assert.True(t, IsRetryableError(wrapped))

	existing := NewNotFoundError("inner", "get", "missing")
	rewrapped := WrapError(existing, ErrorCategoryDatabase, "DB", "outer", "list", true)
	assert.Same(t, existing, rewrapped)
	assert.Equal(t, "outer", rewrapped.ServiceName)
	assert.Equal(t, CodeNotFound, rewrapped.Code)
}

func TestIsRetryableErrorHeuristics(t *testing.T) {
	assert.True(t, IsRetryableError(errors.New("read: connection reset by peer")))
	assert.True(t, IsRetryableError(errors.New("Client.Timeout exceeded")))
	assert.False(t, IsRetryableError(errors.New("invalid character '<'")))
	assert.False(t, IsRetryableError(NewInvalidInputError("svc", "op", "Invalid brand")))
}
