package api

import (
	"bytes"
	"context"
	"dashboard/internal/provider"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Authorizer decorates outgoing requests with credentials. Requests marked
// skipAuth must be left alone.
type Authorizer interface {
	Authorize(ctx context.Context, req *http.Request, skipAuth bool) error
}

type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any
	SkipAuth bool
}

type Response struct {
	Status int
	Body   []byte
}

type Client struct {
	baseURL string
	client  *http.Client
	auth    Authorizer
	log     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   20,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
				ForceAttemptHTTP2:     true,
			},
			Timeout: timeout,
		},
	}
}

// SetAuthorizer installs the session layer. It is set after construction
// because the session layer itself talks to the token endpoints through
// this client.
func (c *Client) SetAuthorizer(auth Authorizer) {
	c.auth = auth
}

// Send performs the request and returns the raw response. Non-2xx answers
// come back as *provider.StatusError alongside the response.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	const op = "api.Send"

	req, err := c.newRequest(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var authErr error
	if c.auth != nil {
		if authErr = c.auth.Authorize(ctx, req, r.SkipAuth); authErr != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%s: %w", op, authErr)
			}
			// The request still goes out; the backend answers 401 and the
			// caller sees both errors.
			c.log.Debug("sending request without credentials",
				slog.String("path", r.Path),
				slog.String("reason", authErr.Error()))
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.log.Warn("request cancelled", slog.String("path", r.Path))
			return nil, fmt.Errorf("%s: request cancelled: %w", op, err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.log.Warn("request timeout", slog.String("path", r.Path))
			return nil, fmt.Errorf("%s: request timeout: %w", op, err)
		}
		c.log.Error("HTTP request failed",
			slog.String("error", err.Error()),
			slog.String("path", r.Path))
		return nil, fmt.Errorf("%s: http request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", op, err)
	}

	c.log.Debug("API response",
		slog.String("method", r.Method),
		slog.String("path", r.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int("body_length", len(body)))

	out := &Response{Status: resp.StatusCode, Body: body}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := provider.NewStatusError(resp.StatusCode, body)
		if authErr != nil {
			return out, fmt.Errorf("%s: %w", op, errors.Join(statusErr, authErr))
		}
		return out, fmt.Errorf("%s: %w", op, statusErr)
	}

	return out, nil
}

// Do sends the request and decodes a JSON body into out when out is not nil.
func (c *Client) Do(ctx context.Context, r Request, out any) (*Response, error) {
	const op = "api.Do"

	resp, err := c.Send(ctx, r)
	if err != nil {
		return resp, err
	}

	if out == nil || len(resp.Body) == 0 {
		return resp, nil
	}

	if err := json.Unmarshal(resp.Body, out); err != nil {
		c.log.Error("failed to decode response",
			slog.String("error", err.Error()),
			slog.String("path", r.Path))
		return resp, fmt.Errorf("%s: %w: %v", op, provider.ErrMalformedResponse, err)
	}

	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
