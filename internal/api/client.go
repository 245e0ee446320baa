package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// TokenSource yields the current bearer credential, or "" when no user is
// logged in. It is consulted on every request so the client always reflects
// the live session.
type TokenSource func() string

// Observer receives every error response the client sees. Observers must not
// block; they are invoked synchronously before the error is returned to the
// caller.
type Observer func(*Error)

// Client issues JSON requests to the backend with a uniform base address and
// automatic credential attachment. It never retries, never caches, and
// returns backend errors unchanged to callers.
type Client struct {
	baseURL string
	hc      *http.Client
	token   TokenSource

	mu        sync.Mutex
	observers map[int]Observer
	nextID    int
}

// New creates a client for the given base URL. token may be nil for a client
// that always sends unauthenticated requests.
func New(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc: &http.Client{
			Timeout: 30 * time.Second,
		},
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer for error responses and returns its
// unsubscribe func. Unsubscribing is idempotent.
func (c *Client) Subscribe(fn Observer) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Client) notify(apiErr *Error) {
	c.mu.Lock()
	fns := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(apiErr)
	}
}

// Get issues a GET request and decodes the response into out (which may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		apiErr := c.readError(resp)
		c.notify(apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) readError(resp *http.Response) *Error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
	if readErr != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(respBody, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	return &Error{Status: resp.StatusCode, Message: msg, Body: string(respBody)}
}
