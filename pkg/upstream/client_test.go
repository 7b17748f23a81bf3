package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lekha-gateway/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return New(baseURL, 5*time.Second, logger.NewNopLogger())
}

func TestChatForwardsConversationIDVerbatim(t *testing.T) {
	var got map[string]interface{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer backend.Close()

	client := newTestClient(backend.URL)

	// null conversationId signals a new conversation and must survive encoding
	_, err := client.Chat(context.Background(), "", ChatForward{Message: "hello", ConversationID: nil})
	require.NoError(t, err)
	val, present := got["conversationId"]
	assert.True(t, present)
	assert.Nil(t, val)

	id := "abc123"
	_, err = client.Chat(context.Background(), "", ChatForward{Message: "again", ConversationID: &id})
	require.NoError(t, err)
	assert.Equal(t, "abc123", got["conversationId"])
}

func TestDoNormalizesEmptyBodyToEmptyObject(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	result, err := newTestClient(backend.URL).ListSessions(context.Background(), "")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(result.Payload))
}

func TestDoProtocolErrorKeepsUpstreamStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer backend.Close()

	_, err := newTestClient(backend.URL).ListSessions(context.Background(), "")
	var pe *ProtocolError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusBadGateway, pe.Status)
	assert.Equal(t, "upstream exploded", pe.Body)
}

func TestDoUpstreamErrorPrefersDeclaredMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"nope"}`, "nope"},
		{"message field", `{"message":"also nope"}`, "also nope"},
		{"raw body", `{"detail":"opaque"}`, `{"detail":"opaque"}`},
		{"empty body", ``, "Backend returned 500"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(tc.body))
			}))
			defer backend.Close()

			_, err := newTestClient(backend.URL).ListSessions(context.Background(), "")
			var ue *UpstreamError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, http.StatusInternalServerError, ue.Status)
			assert.Equal(t, tc.want, ue.Message)
		})
	}
}

func TestDoTransportError(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").ListSessions(context.Background(), "")
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "Cannot reach backend")
}

func TestDeleteSessionAcceptsBothSuccessCodes(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNoContent} {
		backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		err := newTestClient(backend.URL).DeleteSession(context.Background(), "", "c1")
		assert.NoError(t, err, "status %d", status)
		backend.Close()
	}
}

func TestFetchImageDefaultsContentType(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress Go's auto-detection
		w.Write([]byte("bytes"))
	}))
	defer origin.Close()

	result, err := newTestClient("").FetchImage(context.Background(), origin.URL)
	require.NoError(t, err)
	assert.Equal(t, "image/png", result.ContentType)
	assert.Equal(t, []byte("bytes"), result.Body)
}
