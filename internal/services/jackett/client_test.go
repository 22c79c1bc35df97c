// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package jackett

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/burst/internal/models"
)

const testAPIKey = "abcdefghijklmnopqrstuvwxyz012345"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, testAPIKey, 5)
}

func TestValidateSettings(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		key     string
		wantErr bool
	}{
		{name: "valid", host: "http://127.0.0.1:9117", key: testAPIKey},
		{name: "missing scheme", host: "127.0.0.1:9117", key: testAPIKey, wantErr: true},
		{name: "empty host", host: "", key: testAPIKey, wantErr: true},
		{name: "short key", host: "http://127.0.0.1:9117", key: "abc", wantErr: true},
		{name: "empty key", host: "http://127.0.0.1:9117", key: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSettings(tt.host, tt.key)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCensorAPIKey(t *testing.T) {
	assert.Equal(t, "ab**************************2345", CensorAPIKey(testAPIKey))
	assert.Len(t, CensorAPIKey(testAPIKey), APIKeyLength)
	assert.Equal(t, "***", CensorAPIKey("abc"))
}

func TestClient_ListIndexers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers/all/results/torznab/api", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("apikey"))
		assert.Equal(t, "indexers", r.URL.Query().Get("t"))
		assert.Equal(t, "true", r.URL.Query().Get("configured"))
		assert.True(t, strings.HasPrefix(r.UserAgent(), "burst/"))
		_, _ = w.Write([]byte(sampleIndexers))
	})

	indexers, err := client.ListIndexers(context.Background())
	require.NoError(t, err)
	require.Len(t, indexers, 2)
	assert.Equal(t, "example", indexers[0].ID)

	status := client.LastValidation()
	assert.True(t, status.OK)
	assert.Equal(t, ValidationSuccess, status.Message)
}

func TestClient_ListIndexersRecordsValidation(t *testing.T) {
	t.Run("protocol error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<error code="100" description="Invalid API Key" />`))
		})

		_, err := client.ListIndexers(context.Background())
		assert.True(t, errors.Is(err, &ProtocolError{}))

		status := client.LastValidation()
		assert.False(t, status.OK)
		assert.Equal(t, "Invalid API Key", status.Message)
		assert.False(t, status.CheckedAt.IsZero())
	})

	t.Run("http status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := client.ListIndexers(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Unauthorized", client.LastValidation().Message)
	})

	t.Run("cancelled", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleIndexers))
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.ListIndexers(ctx)
		require.Error(t, err)
		assert.True(t, client.LastValidation().CheckedAt.IsZero())
	})
}

func TestClient_FailureOutlivesLaterSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2.0/indexers/broken/results/torznab/api" {
			_, _ = w.Write([]byte(`<error code="100" description="Invalid API Key" />`))
			return
		}
		_, _ = w.Write([]byte(sampleFeed))
	})

	params := url.Values{"t": {"search"}}
	_, err := client.Query(context.Background(), models.Indexer{ID: "broken"}, params)
	require.Error(t, err)
	_, err = client.Query(context.Background(), models.Indexer{ID: "example"}, params)
	require.NoError(t, err)

	status := client.LastValidation()
	assert.False(t, status.OK)
	assert.Equal(t, "Invalid API Key", status.Message)
}

func TestClient_Query(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2.0/indexers/example/results/torznab/api", r.URL.Path)
		assert.Equal(t, "tvsearch", r.URL.Query().Get("t"))
		assert.Equal(t, "Example Show", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	})

	params := url.Values{"t": {"tvsearch"}, "q": {"Example Show"}}
	results, err := client.Query(context.Background(), models.Indexer{ID: "example", Name: "Example"}, params)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	status := client.LastValidation()
	assert.True(t, status.OK)
	assert.Equal(t, ValidationSuccess, status.Message)
}

func TestClient_QueryErrors(t *testing.T) {
	idx := models.Indexer{ID: "example", Name: "Example"}

	t.Run("protocol error updates validation status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<error code="100" description="Invalid API Key" />`))
		})

		_, err := client.Query(context.Background(), idx, url.Values{"t": {"search"}})

		var protoErr *ProtocolError
		require.True(t, errors.As(err, &protoErr))
		assert.Equal(t, "Example", protoErr.Indexer)

		status := client.LastValidation()
		assert.False(t, status.OK)
		assert.Equal(t, "Invalid API Key", status.Message)
	})

	t.Run("http status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.Query(context.Background(), idx, url.Values{"t": {"search"}})

		var transportErr *TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.IsRateLimited())
	})

	t.Run("malformed body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		})

		_, err := client.Query(context.Background(), idx, url.Values{"t": {"search"}})
		assert.True(t, errors.Is(err, &ParseError{}))
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Query(ctx, idx, url.Values{"t": {"search"}})
		assert.True(t, errors.Is(err, &TransportTimeoutError{}), "got %v", err)
	})

	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		client := NewClient(srv.URL, testAPIKey, 5)

		_, err := client.Query(context.Background(), idx, url.Values{"t": {"search"}})
		assert.True(t, errors.Is(err, &TransportError{}), "got %v", err)
	})
}

func TestClient_Validate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "caps", r.URL.Query().Get("t"))
			_, _ = w.Write([]byte(`<caps><searching><search available="yes" supportedParams="q"/></searching></caps>`))
		})

		status := client.Validate(context.Background())
		assert.True(t, status.OK)
		assert.Equal(t, ValidationSuccess, status.Message)
		assert.Equal(t, status, client.LastValidation())
	})

	t.Run("unauthorized", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		status := client.Validate(context.Background())
		assert.False(t, status.OK)
		assert.Equal(t, "Unauthorized", status.Message)
	})

	t.Run("no host", func(t *testing.T) {
		status := NewClient("", testAPIKey, 0).Validate(context.Background())
		assert.False(t, status.OK)
		assert.Contains(t, status.Message, "not configured")
	})
}
