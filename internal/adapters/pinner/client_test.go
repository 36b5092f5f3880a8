package pinner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ticketmint/ticketmint/internal/domain/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "pin-key", RetryLimit: 2})
	require.NoError(t, err)
	return client
}

func testDoc() model.NFTMetadata {
	return model.NFTMetadata{
		Name:        "GA #1",
		Description: "Admission ticket",
		Attributes: []model.MetadataAttribute{
			{TraitType: "Ticket Number", Value: int64(1)},
			{TraitType: "Total Supply", Value: 10},
		},
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "::bad::"})
	require.Error(t, err)
}

func TestUpload(t *testing.T) {
	var got model.NFTMetadata
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pins", r.URL.Path)
		assert.Equal(t, "Bearer pin-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(pinResponse{CID: "bafytest"})
	}))

	uri, err := client.Upload(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, "ipfs://bafytest", uri)
	assert.Equal(t, "GA #1", got.Name)
}

func TestUploadRetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(pinResponse{CID: "bafyretry"})
	}))

	uri, err := client.Upload(context.Background(), testDoc())
	require.NoError(t, err)
	assert.Equal(t, "ipfs://bafyretry", uri)
	assert.EqualValues(t, 3, attempts.Load())
}

func TestUploadExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))

	_, err := client.Upload(context.Background(), testDoc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
	assert.EqualValues(t, 3, attempts.Load())
}

func TestUploadMissingCID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(pinResponse{})
	}))

	_, err := client.Upload(context.Background(), testDoc())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cid")
}
