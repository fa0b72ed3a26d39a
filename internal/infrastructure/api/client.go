// Package api implements the REST client for the remote booking API.
// All server state (rooms, bookings, reviews) is owned by that API; this
// client only reads it and issues the mutations the booking workflow needs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lodgely/bookingkit/internal/domain/shared"
)

// maxResponseSize is the maximum allowed response size from the API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// idempotencyKeyHeader carries the client-generated token that lets the
// server recognize a retried booking submission as a duplicate.
const idempotencyKeyHeader = "Idempotency-Key"

// Config holds client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks JSON to the booking API. Session-bearing calls pass the
// credential cookie via the jar, mirroring a browser's withCredentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewClient creates a client with its own cookie jar
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		logger: logger.Named("api"),
		tracer: otel.Tracer("bookingkit/api"),
	}, nil
}

// messageResponse is the ack shape the API uses for mutations
type messageResponse struct {
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

// request describes one call for the do helper
type request struct {
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    any
}

// do performs one JSON round-trip. Transport failures come back as network
// errors; non-2xx responses carry the server's message verbatim as a
// business rejection. out may be nil when the payload is irrelevant.
func (c *Client) do(ctx context.Context, span string, req request, out any) error {
	ctx, sp := c.tracer.Start(ctx, span, trace.WithAttributes(
		attribute.String("http.method", req.method),
		attribute.String("http.path", req.path),
	))
	defer sp.End()

	u := c.baseURL + req.path
	if len(req.query) > 0 {
		u += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		sp.SetStatus(codes.Error, "transport failure")
		sp.RecordError(err)
		c.logger.Warn("request failed",
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return shared.WrapNetworkError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		sp.RecordError(err)
		return shared.WrapNetworkError(err)
	}
	sp.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 500 {
		return shared.WrapNetworkError(fmt.Errorf("server error: %s", resp.Status))
	}
	if resp.StatusCode >= 400 {
		return shared.NewRejection(rejectionMessage(data, resp.Status))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return shared.WrapNetworkError(fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

// rejectionMessage extracts the server-authored message for verbatim display,
// falling back to the HTTP status line.
func rejectionMessage(data []byte, status string) string {
	var msg messageResponse
	if err := json.Unmarshal(data, &msg); err == nil && msg.Message != "" {
		return msg.Message
	}
	return status
}
