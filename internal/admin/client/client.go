// Package client issues authenticated calls to the LockMe admin REST API.
//
// Every call is a single best-effort attempt: there are no retries, and no
// timeout unless one is configured.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"lockme/internal/admin/models"
	"lockme/internal/admin/tokenstore"
	"lockme/internal/admin/tracer"
	"lockme/internal/platform/logger"
	id "lockme/pkg/domain"
)

// Endpoint labels used for logs, spans and metrics.
const (
	EndpointAuthGoogle  = "auth_google"
	EndpointStats       = "stats"
	EndpointUsers       = "users"
	EndpointTribes      = "tribes"
	EndpointTribeDetail = "tribe_detail"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the admin backend, attaching the stored bearer token.
type Client struct {
	baseURL string
	tokens  tokenstore.Store
	http    HTTPDoer
	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *Metrics
	timeout time.Duration
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing). It takes precedence
// over WithTimeout whatever the option order.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

// WithTimeout bounds each call made through the default HTTP client. Zero
// means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, tokens tokenstore.Store, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token store is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		logger:  logger.Discard(),
		tracer:  tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

type googleLoginRequest struct {
	IDToken string `json:"id_token"`
}

// ExchangeGoogleToken trades an identity provider credential for a session token.
// The call is unauthenticated.
func (c *Client) ExchangeGoogleToken(ctx context.Context, idToken string) (*models.LoginResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrMissingCredential
	}
	ctx, span := c.tracer.Start(ctx, tracer.SpanAuthExchange)
	var out models.LoginResult
	err := c.do(ctx, span, call{
		endpoint: EndpointAuthGoogle,
		method:   http.MethodPost,
		path:     "/auth/google",
		body:     googleLoginRequest{IDToken: idToken},
	}, &out)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats fetches the summary counters. The session controller also uses it as its probe.
func (c *Client) Stats(ctx context.Context) (*models.StatsSummary, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanStats)
	var out models.StatsSummary
	err := c.do(ctx, span, call{endpoint: EndpointStats, method: http.MethodGet, path: "/admin/stats", auth: true}, &out)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists all users.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanUsers)
	var out []models.User
	err := c.do(ctx, span, call{endpoint: EndpointUsers, method: http.MethodGet, path: "/admin/users", auth: true}, &out)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Tribes lists all tribes.
func (c *Client) Tribes(ctx context.Context) ([]models.Tribe, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanTribes)
	var out []models.Tribe
	err := c.do(ctx, span, call{endpoint: EndpointTribes, method: http.MethodGet, path: "/admin/tribes", auth: true}, &out)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TribeDetail fetches one page of a tribe's members.
func (c *Client) TribeDetail(ctx context.Context, tribeID id.TribeID, page, pageSize int) (*models.TribeDetailPage, error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanTribeDetail,
		tracer.String(tracer.AttrTribeID, tribeID.String()),
		tracer.Int(tracer.AttrPage, page),
		tracer.Int(tracer.AttrPageSize, pageSize),
	)
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	var out models.TribeDetailPage
	err := c.do(ctx, span, call{
		endpoint: EndpointTribeDetail,
		method:   http.MethodGet,
		path:     "/admin/tribes/" + url.PathEscape(tribeID.String()),
		query:    query,
		auth:     true,
	}, &out)
	span.End(err)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	body     any
	auth     bool
}

func (c *Client) do(ctx context.Context, span tracer.Span, cl call, out any) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	span.SetAttributes(tracer.String(tracer.AttrRequestID, requestID))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(GetCategory(err))
		}
		c.metrics.observe(cl.endpoint, outcome, time.Since(start))
	}()

	req, err := c.newRequest(ctx, cl, requestID)
	if err != nil {
		return err
	}
	span.SetAttributes(tracer.Bool(tracer.AttrHasToken, req.Header.Get("Authorization") != ""))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "admin api unreachable",
			"endpoint", cl.endpoint,
			"request_id", requestID,
			"error", err,
		)
		return newError(CategoryTransport, cl.endpoint, 0, "failed to execute request", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(tracer.Int(tracer.AttrHTTPStatus, resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(CategoryTransport, cl.endpoint, resp.StatusCode, "failed to read response body", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		c.logger.InfoContext(ctx, "admin api rejected session",
			"endpoint", cl.endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return newError(CategoryUnauthorized, cl.endpoint, resp.StatusCode,
			fmt.Sprintf("authorization failed: %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.logger.WarnContext(ctx, "admin api request failed",
			"endpoint", cl.endpoint,
			"status", resp.StatusCode,
			"request_id", requestID,
		)
		return newError(CategoryRequestFailed, cl.endpoint, resp.StatusCode,
			fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(CategoryRequestFailed, cl.endpoint, resp.StatusCode, "failed to parse response", err)
	}

	c.logger.DebugContext(ctx, "admin api call succeeded",
		"endpoint", cl.endpoint,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (c *Client) newRequest(ctx context.Context, cl call, requestID string) (*http.Request, error) {
	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, newError(CategoryRequestFailed, cl.endpoint, 0, "failed to marshal request", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, newError(CategoryRequestFailed, cl.endpoint, 0, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if cl.auth {
		token, ok, err := c.tokens.Get(ctx)
		if err != nil {
			return nil, newError(CategoryRequestFailed, cl.endpoint, 0, "failed to read stored token", err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}
