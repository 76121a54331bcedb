// internal/common/http/client_test.go
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Request_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "acme.com", r.URL.Query().Get("domain"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Acme", body["name"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Acme","employees":42}`))
	}))
	defer server.Close()

	client := NewClient(5 * time.Second)
	out, err := client.Request(context.Background(), Request{
		Method:  http.MethodPost,
		URL:     server.URL + "/v1/companies",
		Headers: map[string]string{"X-Api-Key": "secret"},
		Body:    map[string]string{"name": "Acme"},
		Params:  map[string]string{"domain": "acme.com"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme", out["name"])
	assert.Equal(t, float64(42), out["employees"])
}

func TestClient_Request_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no match"}`))
	}))
	defer server.Close()

	_, err := NewClient(time.Second).Request(context.Background(), Request{URL: server.URL})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.True(t, statusErr.NotFound())
	assert.Equal(t, http.MethodGet, statusErr.Method)
	assert.Contains(t, statusErr.Error(), "no match")
}

func TestClient_Request_EmptyAndMalformedBodies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(time.Second)

	out, err := client.Request(context.Background(), Request{URL: server.URL + "/empty"})
	require.NoError(t, err)
	assert.Empty(t, out)

	_, err = client.Request(context.Background(), Request{URL: server.URL + "/bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_Request_PerCallTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(5*time.Second).Request(context.Background(), Request{
		URL:     server.URL,
		Timeout: 20 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
