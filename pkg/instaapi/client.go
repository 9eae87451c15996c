package instaapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"resty.dev/v3"
)

const (
	RequestIDHeader = "X-Request-Id"
)

// TokenSource provides the bearer credential attached to outgoing requests.
// An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

type TokenFunc func() string

func (f TokenFunc) Token() string {
	return f()
}

type Client struct {
	client *resty.Client

	mu             sync.RWMutex
	tokens         TokenSource
	onUnauthorized func(error)
}

func NewClient(cfg *ClientConfig) *Client {
	if cfg == nil {
		cfg = DefaultConfig
	}

	settings := cfg.TransportSettings
	if settings == nil {
		settings = DefaultConfig.TransportSettings
	}

	client := resty.NewWithTransportSettings(settings).
		SetBaseURL(cfg.BaseURL).
		SetHeader("Accept", "application/json")

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	for _, m := range cfg.RequestMiddlewares {
		client.AddRequestMiddleware(m)
	}
	for _, m := range cfg.ResponseMiddlewares {
		client.AddResponseMiddleware(m)
	}

	return &Client{
		client: client,
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

// SetTokenSource replaces the credential source. Safe to call while requests are in flight.
func (c *Client) SetTokenSource(tokens TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tokens = tokens
}

// OnUnauthorized registers the handler invoked for every 401 response, before the
// error is returned to the caller.
func (c *Client) OnUnauthorized(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onUnauthorized = fn
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *Client) unauthorized(err error) {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()

	if fn != nil {
		fn(err)
	}
}

func (c *Client) r(ctx context.Context) *resty.Request {
	req := c.client.R().
		WithContext(ctx).
		SetHeader(RequestIDHeader, uuid.NewString())

	if token := c.token(); token != "" {
		req.SetAuthToken(token)
	}

	return req
}

// do executes the request and turns non-2xx responses into *Error. A rejected
// request keeps its status even when the body cannot be decoded.
func (c *Client) do(req *resty.Request, method, path string) (*resty.Response, error) {
	payload := &errorPayload{}

	res, err := req.SetError(payload).Execute(method, path)
	if err != nil && (res == nil || res.StatusCode() < http.StatusBadRequest) {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}

	if err != nil || res.IsError() {
		apiErr := payload.toError(res.StatusCode())
		if apiErr.StatusCode == http.StatusUnauthorized {
			c.unauthorized(apiErr)
		}
		return res, apiErr
	}

	return res, nil
}

// message executes a request whose only interesting payload is the server message.
func (c *Client) message(req *resty.Request, method, path string) (string, error) {
	body := &envelope[any]{}

	_, err := c.do(req.SetResult(body), method, path)
	if err != nil {
		return "", err
	}

	return body.Message, nil
}
