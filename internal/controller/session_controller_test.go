package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsListPassthrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sessions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"conversationId":"c1","title":"Plan a rustic wedding","createdAt":"2026-08-30T10:00:00"}]`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var sessions []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "c1", sessions[0]["conversationId"])
}

func TestSessionsListMissingConfiguration(t *testing.T) {
	app := newTestApp("")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSessionDetailPassthrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sessions/c1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversationId":"c1","messages":[{"role":"user","type":"text","content":"hi"}]}`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/sessions/c1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var detail struct {
		Messages []map[string]string `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "hi", detail.Messages[0]["content"])
}

func TestSessionDeleteNormalizedTo204(t *testing.T) {
	for _, upstreamStatus := range []int{http.StatusOK, http.StatusNoContent} {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			w.WriteHeader(upstreamStatus)
		}))

		app := newTestApp(backend.URL)
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/c1", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "upstream %d", upstreamStatus)

		backend.Close()
	}
}

func TestSessionDeleteUpstreamFailurePropagated(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Conversation not found."}`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/gone", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Conversation not found.", envelope["error"])
}

func TestSessionDeleteBackendUnreachable(t *testing.T) {
	app := newTestApp("http://127.0.0.1:1")
	resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/api/sessions/c1", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
