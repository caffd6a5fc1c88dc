package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout bounds a single HTTP exchange with the answering service
const DefaultTimeout = 120 * time.Second

// maxErrorBody caps how much of a failed response body is kept on a StatusError
const maxErrorBody = 4 << 10

// ErrMalformedResponse is returned when the backend answers with a body that cannot be decoded
// or is missing required fields
var ErrMalformedResponse = errors.New("malformed response from backend")

// StatusError is returned when the backend answers with a non-2xx status code
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("[BACKEND]: backend '%s %s' failed: %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client wraps calls to the question-answering backend
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for the backend reachable at baseURL. apiKey may be empty
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request is a single JSON exchange with the backend, built with NewRequest
type Request struct {
	client *Client
	ctx    context.Context
	method string
	path   string
	in     any
	out    any
	header http.Header
}

// NewRequest starts building a request. in is encoded as the JSON body when non-nil and the
// response body is decoded into out when non-nil
func (c *Client) NewRequest(ctx context.Context, method, path string, in, out any) *Request {
	return &Request{
		client: c,
		ctx:    ctx,
		method: method,
		path:   path,
		in:     in,
		out:    out,
		header: make(http.Header),
	}
}

// WithApiKey attaches the X-API-KEY header when key is not empty
func (r *Request) WithApiKey(key string) *Request {
	if key != "" {
		r.header.Set("X-API-KEY", key)
	}
	return r
}

// doJSON performs the request and decodes the response
func (r *Request) doJSON() error {
	// Create request body if input is provided
	var body io.Reader
	if r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, r.client.baseURL+r.path, body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", r.method, r.path)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range r.header {
		req.Header[k] = v
	}

	resp, err := r.client.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "[BACKEND]: %s %s", r.method, r.path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method: r.method,
			Path:   r.path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(b)),
		}
	}

	// If no output expected, return early
	if r.out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return errors.Wrapf(ErrMalformedResponse, "decode %s %s: %v", r.method, r.path, err)
	}
	return nil
}
