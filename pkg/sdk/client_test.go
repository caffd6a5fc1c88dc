package sdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret")
}

func TestClientQuery(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/api/query", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

			var req QueryRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "What is YC?", req.Question)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"response": "YC is ..."}`))
		})

		answer, err := client.Query(context.Background(), "What is YC?")
		require.NoError(t, err)
		assert.Equal(t, "YC is ...", answer)
	})

	t.Run("empty answer is still an answer", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"response": ""}`))
		})

		answer, err := client.Query(context.Background(), "q")
		require.NoError(t, err)
		assert.Empty(t, answer)
	})

	t.Run("non-success status", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"detail": "RAG system still initializing, try again later."}`))
		})

		_, err := client.Query(context.Background(), "q")
		require.Error(t, err)

		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
		assert.Contains(t, statusErr.Body, "still initializing")
		assert.Contains(t, err.Error(), "POST /api/query")
	})

	t.Run("malformed payload", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.Query(context.Background(), "q")
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	t.Run("missing answer field", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"answer": "wrong field"}`))
		})

		_, err := client.Query(context.Background(), "q")
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		client := NewClient(srv.URL, "")
		_, err := client.Query(context.Background(), "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "[BACKEND]")
	})

	t.Run("context cancelled", func(t *testing.T) {
		// The server only notices the client going away once the body has been read
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })

		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			select {
			case <-r.Context().Done():
			case <-release:
			}
		})

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Query(ctx, "q")
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestClientHealth(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/health", r.URL.Path)
			_, _ = w.Write([]byte(`{"status": "healthy", "rag_initialized": true}`))
		})

		health, err := client.Health(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "healthy", health.Status)
		assert.True(t, health.RagInitialized)
	})

	t.Run("missing status", func(t *testing.T) {
		client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		})

		_, err := client.Health(context.Background())
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})
}

func TestNewClient(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	client := NewClient("http://localhost:8000///", "", WithHTTPClient(hc))

	assert.Equal(t, "http://localhost:8000", client.BaseURL())
	assert.Same(t, hc, client.httpClient)

	t.Run("nil http client keeps default", func(t *testing.T) {
		client := NewClient("http://localhost:8000", "", WithHTTPClient(nil))
		assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	})
}

func TestApiResponse(t *testing.T) {
	t.Run("error response flattens error values", func(t *testing.T) {
		resp := NewErrorResponse(http.StatusInternalServerError, "boom", errors.New("disk full"))
		code, body := resp.AsGinResponse()
		assert.Equal(t, http.StatusInternalServerError, code)
		assert.Equal(t, "disk full", body.(ApiResponse[any]).Error)
	})

	t.Run("json", func(t *testing.T) {
		out, err := NewSuccessResponse("ok", PostMessageResponse{Accepted: true, Pending: true}).AsJSON()
		require.NoError(t, err)
		assert.Contains(t, out, `"accepted":true`)
		assert.Contains(t, out, `"code":200`)
	})
}
