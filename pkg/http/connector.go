package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const defaultMaxBodySize int64 = 32 << 20

type Connector struct {
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
	maxBodySize int64
}

type ConnectorConfig struct {
	BaseURL string
	Logger  *zap.Logger
	// MaxBodySize limits how many response bytes are read, 32 MiB when zero
	MaxBodySize int64
}

func NewConnector(config *ConnectorConfig, options ...HttpOpts) *Connector {
	maxBodySize := config.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	return &Connector{
		baseURL:     config.BaseURL,
		httpClient:  newClient(options...),
		logger:      config.Logger,
		maxBodySize: maxBodySize,
	}
}

type RequestOpt func(*requestConfig)

type requestConfig struct {
	headers     map[string]string
	query       map[string]string
	overrideURL string
}

func WithHeader(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[key] = value
	}
}

func WithQuery(key, value string) RequestOpt {
	return func(c *requestConfig) {
		if c.query == nil {
			c.query = make(map[string]string)
		}
		c.query[key] = value
	}
}

func WithURL(url string) RequestOpt {
	return func(c *requestConfig) {
		c.overrideURL = url
	}
}

// Response is a raw, fully read HTTP response
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

func (c *Connector) DoRequest(ctx context.Context, method, endpoint string, reqBody, respBody any, opts ...RequestOpt) error {
	var bodyReader io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
		// Attach payload to context for logging transport
		ctx = context.WithValue(ctx, payloadContextKey{}, jsonData)
		opts = append(opts, WithHeader("Content-Type", "application/json"))
	}

	opts = append([]RequestOpt{WithHeader("Accept", "application/json")}, opts...)

	resp, err := c.do(ctx, method, endpoint, bodyReader, opts...)
	if err != nil {
		return err
	}

	// Decode response if needed
	if respBody != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Get performs a GET request and returns the raw body.
// Non-2xx statuses are returned as *HTTPError.
func (c *Connector) Get(ctx context.Context, endpoint string, opts ...RequestOpt) (*Response, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil, opts...)
}

func (c *Connector) do(ctx context.Context, method, endpoint string, body io.Reader, opts ...RequestOpt) (*Response, error) {
	// Apply request options
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	// Use override URL if provided, otherwise use baseURL + endpoint
	var url string
	if cfg.overrideURL != "" {
		url = cfg.overrideURL
	} else {
		url = c.baseURL + endpoint
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for key, value := range cfg.headers {
		req.Header.Set(key, value)
	}

	if len(cfg.query) > 0 {
		q := req.URL.Query()
		for key, value := range cfg.query {
			q.Set(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    truncateMessage(string(bodyBytes)),
		}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        bodyBytes,
	}, nil
}

func truncateMessage(msg string) string {
	const maxLen = 512
	if len(msg) > maxLen {
		return msg[:maxLen]
	}
	return msg
}

// HTTPError represents an HTTP error response
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NetworkError represents a network-level error (connection, timeout, etc.)
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
