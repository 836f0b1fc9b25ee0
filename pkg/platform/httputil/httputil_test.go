package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lockme/pkg/domain-errors"
)

type loginRequest struct {
	IDToken string `json:"id_token"`
}

func (r *loginRequest) Normalize() { r.IDToken = strings.TrimSpace(r.IDToken) }

func (r *loginRequest) Validate() error {
	if r.IDToken == "" {
		return errors.New("id_token is required")
	}
	return nil
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "tribe not found"), http.StatusNotFound, "not_found"},
		{"invalid input", dErrors.New(dErrors.CodeInvalidInput, "bad page"), http.StatusBadRequest, "bad_request"},
		{"unauthorized", dErrors.New(dErrors.CodeUnauthorized, "bad token"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "not an admin"), http.StatusForbidden, "forbidden"},
		{"wrapped domain error", dErrors.Wrap(io.EOF, dErrors.CodeNotFound, "gone"), http.StatusNotFound, "not_found"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tc.wantCode, decodeError(t, w).Error)
		})
	}
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("normalizes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(`{"id_token":"  abc  "}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[loginRequest](w, req, logger, ctx, "req-1")

		require.True(t, ok)
		assert.Equal(t, "abc", got.IDToken)
	})

	t.Run("validation failure writes 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(`{"id_token":"  "}`))
		w := httptest.NewRecorder()

		got, ok := DecodeAndPrepare[loginRequest](w, req, logger, ctx, "req-2")

		assert.False(t, ok)
		assert.Nil(t, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "id_token is required", decodeError(t, w).Description)
	})

	t.Run("malformed JSON writes 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()

		_, ok := DecodeJSON[loginRequest](w, req, logger, ctx, "req-3")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid request body", decodeError(t, w).Description)
	})

	t.Run("body past the size cap writes 413", func(t *testing.T) {
		body := `{"id_token":"` + strings.Repeat("x", 256) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/google", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		req.Body = http.MaxBytesReader(w, req.Body, 64)

		_, ok := DecodeAndPrepare[loginRequest](w, req, logger, ctx, "req-4")

		assert.False(t, ok)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Equal(t, "request_too_large", decodeError(t, w).Error)
	})
}
