package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive(t *testing.T) {
	h := NewHandler("1.2.3")

	w := httptest.NewRecorder()
	h.Live(w, httptest.NewRequest("GET", "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, StatusUp, body.Status)
	assert.Equal(t, "1.2.3", body.Version)
}

func TestReadyAllUp(t *testing.T) {
	h := NewHandler("test")
	h.Register(CheckerFunc{CheckName: "mongodb", Fn: func(context.Context) error { return nil }})
	h.Register(CheckerFunc{CheckName: "redis", Fn: func(context.Context) error { return nil }})

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, StatusUp, body.Checks["mongodb"])
	assert.Equal(t, StatusUp, body.Checks["redis"])
}

func TestReadyDependencyDown(t *testing.T) {
	h := NewHandler("test")
	h.Register(CheckerFunc{CheckName: "mongodb", Fn: func(context.Context) error { return nil }})
	h.Register(CheckerFunc{CheckName: "redis", Fn: func(context.Context) error {
		return errors.New("connection refused")
	}})

	w := httptest.NewRecorder()
	h.Ready(w, httptest.NewRequest("GET", "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, StatusDown, body.Status)
	assert.Equal(t, StatusDown, body.Checks["redis"])
}
