package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/errors"
	"github.com/Ak-theArtist/A-Kart-mobile-backend/pkg/validator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()

	WriteJSON(w, http.StatusCreated, Response{Data: map[string]string{"id": "42"}})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Nil(t, body.Error)
}

func TestWriteErrorAppError(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/products/42", nil)

	WriteError(w, r, apperrors.NotFound("product", "42"), discardLogger())

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestWriteErrorSentinel(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/orders", nil)

	WriteError(w, r, apperrors.Wrap(apperrors.ErrConflict, "insufficient stock"), discardLogger())

	assert.Equal(t, http.StatusConflict, w.Code)

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "CONFLICT", body.Error.Code)
}

func TestWriteErrorUnknown(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)

	WriteError(w, r, errors.New("boom"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "an internal error occurred", body.Error.Message)
}

func TestWriteValidationError(t *testing.T) {
	type req struct {
		Email string `validate:"required,email"`
	}

	err := validator.Validate(req{})
	require.Error(t, err)

	w := httptest.NewRecorder()
	WriteValidationError(w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Contains(t, body.Error.Fields, "Email")
}

func TestParseObjectID(t *testing.T) {
	w := httptest.NewRecorder()

	id, ok := ParseObjectID(w, "507f1f77bcf86cd799439011")

	assert.True(t, ok)
	assert.Equal(t, "507f1f77bcf86cd799439011", id.Hex())
}

func TestParseObjectIDInvalid(t *testing.T) {
	w := httptest.NewRecorder()

	_, ok := ParseObjectID(w, "not-an-id")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "INVALID_PARAMETER", body.Error.Code)
}
