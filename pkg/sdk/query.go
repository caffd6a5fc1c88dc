package sdk

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

const (
	queryPath  = "/api/query"
	healthPath = "/api/health"
)

// Query asks the backend a question and returns the answer text
func (c *Client) Query(ctx context.Context, question string) (string, error) {
	var out QueryResponse
	if err := c.NewRequest(ctx, http.MethodPost, queryPath, &QueryRequest{Question: question}, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return "", err
	}

	if out.Response == nil {
		return "", errors.Wrap(ErrMalformedResponse, "no response field returned")
	}

	return *out.Response, nil
}

// Health reports whether the backend is up and its retrieval index is ready
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.NewRequest(ctx, http.MethodGet, healthPath, nil, &out).WithApiKey(c.apiKey).doJSON(); err != nil {
		return nil, err
	}

	if out.Status == "" {
		return nil, errors.Wrap(ErrMalformedResponse, "no status returned")
	}

	return &out, nil
}
