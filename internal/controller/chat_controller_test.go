package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatPassthrough(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"conversationId":"abc123","type":"text","data":"Here are 3 designs..."}`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"Plan a rustic wedding","conversationId":null}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer token-123")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Identity forwarded verbatim, conversationId null preserved.
	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "Plan a rustic wedding", gotBody["message"])
	val, present := gotBody["conversationId"]
	assert.True(t, present)
	assert.Nil(t, val)

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "abc123", payload["conversationId"])
	assert.Equal(t, "Here are 3 designs...", payload["data"])
}

func TestChatEmptyMessageNoOutboundCall(t *testing.T) {
	var calls int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)

	for _, body := range []string{
		`{"message":"","conversationId":null}`,
		`{"message":"   ","conversationId":null}`,
		`{"conversationId":null}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", body)
	}
	assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
}

func TestChatInvalidJSONBody(t *testing.T) {
	app := newTestApp("http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatMissingConfiguration(t *testing.T) {
	app := newTestApp("")

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hi","conversationId":null}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Contains(t, envelope["error"], "misconfiguration")
}

func TestChatNonJSONUpstream(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		wantStatus     int
	}{
		{"upstream claimed success", http.StatusOK, http.StatusBadGateway},
		{"upstream already failed", http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.upstreamStatus)
				w.Write([]byte("<html>gateway timeout</html>"))
			}))
			defer backend.Close()

			app := newTestApp(backend.URL)
			req := httptest.NewRequest(http.MethodPost, "/api/chat",
				strings.NewReader(`{"message":"hi","conversationId":null}`))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, resp.StatusCode)
		})
	}
}

func TestChatUpstreamDeclaredError(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Missing or invalid Authorization header."}`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hi","conversationId":null}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var envelope map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "Missing or invalid Authorization header.", envelope["error"])
}

func TestChatBackendUnreachable(t *testing.T) {
	// Nothing listens here; connection is refused.
	app := newTestApp("http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hi","conversationId":null}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Cannot reach backend")
}

func TestChatNoAuthHeaderForwardedWhenAbsent(t *testing.T) {
	var hadAuth bool
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"text","data":"ok"}`))
	}))
	defer backend.Close()

	app := newTestApp(backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hi","conversationId":null}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, hadAuth)
}
