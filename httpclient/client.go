package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/resilience"
)

// Client is an HTTP client for one remote collaborator.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		httpClient: &http.Client{
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
			Timeout:   cfg.Timeout,
		},
		config: cfg,
	}, nil
}

// Service returns the collaborator name used in errors.
func (c *Client) Service() string { return c.config.Service }

// Do executes req, retrying retryable failures per the configured policy.
// Non-2xx responses are returned as AppErrors.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return resilience.Retry(ctx, c.config.Retry, func(ctx context.Context) (*Response, error) {
		return c.doOnce(ctx, req)
	})
}

// DoJSON executes req and decodes the JSON response into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Decode(out); err != nil {
		appErr := errors.ExternalServiceError(c.config.Service, err)
		appErr.Retryable = false
		return appErr
	}
	return nil
}

// Ping issues a GET to path and reports whether it returned 2xx.
func (c *Client) Ping(ctx context.Context, path string) bool {
	_, err := c.doOnce(ctx, Request{Method: http.MethodGet, Path: path})
	return err == nil
}

func (c *Client) doOnce(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Timeout(c.config.Service).WithCause(err)
		}
		return nil, errors.ExternalServiceError(c.config.Service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(c.config.Service, fmt.Errorf("read response body: %w", err))
	}
	if appErr := classifyStatus(c.config.Service, resp.StatusCode, body); appErr != nil {
		return nil, appErr
	}
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := req.Path
	if c.config.BaseURL != "" && !strings.HasPrefix(req.Path, "http://") && !strings.HasPrefix(req.Path, "https://") {
		url = strings.TrimRight(c.config.BaseURL, "/") + "/" + strings.TrimLeft(req.Path, "/")
	}

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, errors.InputError(url, fmt.Errorf("encode body: %w", err))
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.InvalidInput("url", err.Error())
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && httpReq.Header.Get("Content-Type") == "" && contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	auth := c.config.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)
	return httpReq, nil
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
