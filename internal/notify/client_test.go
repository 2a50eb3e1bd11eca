package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Notify(t *testing.T) {
	var gotBody map[string]string
	var gotAuth, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token-123", srv.Client())

	code, err := client.Notify(context.Background(), "req-42")
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, code)
	assert.Equal(t, "token-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"ref_id": "req-42"}, gotBody)
}

func TestClient_Notify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", srv.Client())

	// A reachable endpoint returning 5xx is not a transport error; the
	// caller decides what to do with the status code.
	code, err := client.Notify(context.Background(), "req-42")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestClient_Notify_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", nil)

	_, err := client.Notify(context.Background(), "req-42")
	require.Error(t, err)
}
