package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/azizbkh/boutique-client/pkg/config"
	pkgerrors "github.com/azizbkh/boutique-client/pkg/errors"
	"github.com/azizbkh/boutique-client/pkg/logger"
	"github.com/azizbkh/boutique-client/pkg/metrics"
)

var errLoggerRequired = errors.New("api logger is required")

// TokenProvider supplies the bearer token attached to authenticated calls.
// An empty return sends the request anonymously.
type TokenProvider func(ctx context.Context) string

// Client is the HTTP transport for the boutique REST API. It owns JSON
// encoding, bearer auth, error mapping, and per-operation metrics.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   TokenProvider
	logger  *logger.Logger
	metrics *metrics.APICallMetrics
}

// NewClient validates the configuration and builds the API transport.
func NewClient(cfg config.APIConfig, logg *logger.Logger, m *metrics.APICallMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api base url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		logger:  logg,
		metrics: m,
	}, nil
}

// SetTokenProvider wires the session's token into outgoing requests.
func (c *Client) SetTokenProvider(provider TokenProvider) {
	c.token = provider
}

type call struct {
	operation string
	method    string
	path      string
	header    http.Header
	body      any
	out       any
}

func (c *Client) do(ctx context.Context, req call) error {
	start := time.Now()
	err := c.roundTrip(ctx, req)
	c.metrics.ObserveDuration(req.operation, time.Since(start))
	if err != nil {
		c.metrics.IncFailure(req.operation)
		c.logger.Error(c.logger.WithOperation(ctx, req.operation), "api call failed", err)
		return err
	}
	c.metrics.IncSuccess(req.operation)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req call) error {
	var reqBody io.Reader
	if req.body != nil {
		encoded, err := json.Marshal(req.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		reqBody = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reqBody)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range req.header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if c.token != nil {
		if token := c.token(ctx); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", req.method, req.path))
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.mapError(resp, req)
	}

	if req.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding %s response", req.operation))
	}
	return nil
}

func (c *Client) mapError(resp *http.Response, req call) error {
	message := fmt.Sprintf("%s %s returned %d", req.method, req.path, resp.StatusCode)
	var body APIMessage
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && body.Message != "" {
		message = body.Message
	}

	var code pkgerrors.Code
	switch {
	case resp.StatusCode == http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		code = pkgerrors.CodeNotAuthenticated
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		code = pkgerrors.CodeValidation
	default:
		code = pkgerrors.CodeDependency
	}
	return pkgerrors.New(code, message).WithDetails(map[string]any{
		"status":    resp.StatusCode,
		"operation": req.operation,
	})
}
