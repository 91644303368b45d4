package biomed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	DefaultTimeout       = 30 * time.Second
	DefaultHealthTimeout = 3 * time.Second
)

// HttpClient exists so tests can mock the transport.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the single entry point to the remote biomedical model service.
// Every call is exactly one attempt; retries belong to the layers above.
type Client interface {
	ExtractEntities(ctx context.Context, text string) (*NERResponse, error)
	Summarize(ctx context.Context, params SummarizeParams) (*SummaryResponse, error)
	Health(ctx context.Context) (*HealthResponse, error)
	Close()
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

func NewClient(cfg Config) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}
	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
	}
	return &client{
		baseURL:       strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:    &http.Client{Transport: transport},
		transport:     transport,
		timeout:       cfg.Timeout,
		healthTimeout: cfg.HealthTimeout,
	}
}

type client struct {
	baseURL       string
	httpClient    HttpClient
	transport     *http.Transport
	timeout       time.Duration
	healthTimeout time.Duration
}

func (c *client) ExtractEntities(ctx context.Context, text string) (*NERResponse, error) {
	body := map[string]string{"text": text}
	var out NERResponse
	if err := c.call(ctx, http.MethodPost, "/extract-entities", body, c.timeout, nerSchema, &out); err != nil {
		return nil, err
	}
	if err := reconcileOffsets(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// reconcileOffsets checks every span against the echoed input text. Offsets
// outside the text are a malformed response; a surface form that disagrees
// with its offsets is replaced by the exact slice, since the offsets are
// what downstream consumers anchor on.
func reconcileOffsets(resp *NERResponse) error {
	runes := []rune(resp.InputText)
	for i, e := range resp.Entities {
		if e.Start < 0 || e.End <= e.Start || e.End > len(runes) {
			return NewError(ErrBadResponse,
				fmt.Sprintf("entity %q offsets [%d, %d) outside text of length %d", e.Word, e.Start, e.End, len(runes)))
		}
		if surface := string(runes[e.Start:e.End]); surface != e.Word {
			resp.Entities[i].Word = surface
		}
	}
	return nil
}

func (c *client) Summarize(ctx context.Context, params SummarizeParams) (*SummaryResponse, error) {
	var out SummaryResponse
	if err := c.call(ctx, http.MethodPost, "/summarize", params, c.timeout, summarySchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/health", nil, c.healthTimeout, healthSchema, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) Close() {
	if c.transport != nil {
		c.transport.CloseIdleConnections()
	}
}

func (c *client) call(ctx context.Context, method, path string, body interface{}, timeout time.Duration, schema *jsonschema.Schema, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return wrapError(ErrBadResponse, "encode request", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return wrapError(ErrUnreachable, "build request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(resp.StatusCode, raw)
	}

	if err := validateAgainstSchema(schema, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return wrapError(ErrBadResponse, "decode response", err)
	}
	return nil
}

func classifyTransportError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(ErrTimeout, "deadline exceeded", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return wrapError(ErrTimeout, "deadline exceeded", err)
	}
	return wrapError(ErrUnreachable, err.Error(), err)
}

// rejection extracts the FastAPI detail message from a non-2xx body. A body
// that carries no detail falls back to the status code.
func rejection(status int, raw []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Detail != "" {
		return NewError(ErrRejected, payload.Detail)
	}
	return NewError(ErrRejected, fmt.Sprintf("status %d", status))
}
