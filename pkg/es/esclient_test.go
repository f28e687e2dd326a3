package es

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCluster(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"name":"test","cluster_name":"bookstore","version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`))
	}))
}

func TestNewClient_OK(t *testing.T) {
	srv := fakeCluster(http.StatusOK)
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{URL: srv.URL})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClient_ErrorStatus(t *testing.T) {
	srv := fakeCluster(http.StatusUnauthorized)
	defer srv.Close()

	client, err := NewClient(context.Background(), Config{URL: srv.URL, User: "elastic", Password: "wrong"})
	require.Error(t, err)
	assert.Nil(t, client)
}
