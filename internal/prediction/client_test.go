package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aidetect/internal/features"
	"aidetect/pkg/models"
)

func TestClient_Wakeup(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("waking"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL + "/")
	require.NoError(t, c.Wakeup(context.Background()))
	assert.Equal(t, "/api/wakeup", path)
	assert.Equal(t, srv.URL, c.Endpoint())
}

func TestClient_WakeupFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).Wakeup(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWakeFailure)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	srv.Close()
	err = NewClient(srv.URL).Wakeup(context.Background())
	assert.ErrorIs(t, err, ErrWakeFailure)
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/status", r.URL.Path)
		json.NewEncoder(w).Encode(models.StatusResponse{Status: "loading"})
	}))
	defer srv.Close()

	status, err := NewClient(srv.URL).Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "loading", status)
}

func TestClient_StatusMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>502 Bad Gateway</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse status response")
}

func TestClient_Predict(t *testing.T) {
	var sent map[string]int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &sent))
		json.NewEncoder(w).Encode(models.PredictionResponse{Prediction: "Hypertension"})
	}))
	defer srv.Close()

	v := features.Encode(features.DefaultSchema(), models.FormState{Gender: "Female", Symptoms: []string{"Dizziness"}})
	got, err := NewClient(srv.URL).Predict(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "Hypertension", got)
	assert.Len(t, sent, 62)
	assert.Equal(t, 1, sent["Female"])
	assert.Equal(t, 1, sent["Dizziness"])
	assert.Equal(t, 0, sent["Male"])
}

func TestClient_PredictHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte("invalid input"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Predict(context.Background(), features.NewVector(features.DefaultSchema()))
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, 422, httpErr.StatusCode)
	assert.Equal(t, "invalid input", httpErr.Body)
	assert.Equal(t, "HTTP error! status: 422, message: invalid input", err.Error())
}

func TestClient_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL).Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
