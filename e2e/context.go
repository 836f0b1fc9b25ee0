package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"lockme/internal/admin/pagination"
	"lockme/internal/admin/session"
	"lockme/internal/admin/tokenstore"
	"lockme/internal/console"
	"lockme/internal/devbackend"
	"lockme/internal/devbackend/tokens"
	"lockme/internal/platform/config"
	"lockme/internal/platform/logger"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	IDToken          string
	AccessToken      string

	Console   *console.Console
	LastState pagination.State
	LastErr   error

	backendCfg config.DevBackend
	identity   *tokens.Service
	server     *httptest.Server
}

// NewTestContext creates a new test context. The backend is started by Start.
func NewTestContext() *TestContext {
	cfg := config.DevBackendFromEnv()
	cfg.Addr = "127.0.0.1:0"
	cfg.Environment = "e2e"

	return &TestContext{
		BaseURL: os.Getenv("BASE_URL"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		backendCfg: cfg,
		identity:   tokens.NewService(cfg.SigningKey, cfg.IdentityKey, "lockme-e2e", cfg.TokenTTL),
	}
}

// Start runs a seeded in-process backend unless BASE_URL points at one,
// then opens a console against it.
func (tc *TestContext) Start(ctx context.Context) error {
	if tc.BaseURL == "" {
		srv, err := devbackend.New(ctx, tc.backendCfg, devbackend.WithLogger(logger.Discard()))
		if err != nil {
			return fmt.Errorf("failed to start backend: %w", err)
		}
		tc.server = httptest.NewServer(srv.Handler())
		tc.BaseURL = tc.server.URL
	}

	cfg := config.DefaultAdmin()
	cfg.APIURL = tc.BaseURL
	cfg.TokenStore = config.TokenStoreMemory
	c, err := console.New(ctx, cfg,
		console.WithTokenStore(tokenstore.NewMemory()),
		console.WithLogger(logger.Discard()),
	)
	if err != nil {
		return fmt.Errorf("failed to create console: %w", err)
	}
	tc.Console = c
	return nil
}

// Close releases the console and the in-process backend.
func (tc *TestContext) Close() {
	if tc.Console != nil {
		_ = tc.Console.Close()
	}
	if tc.server != nil {
		tc.server.Close()
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.POSTWithHeaders(path, body, nil)
}

// POSTWithHeaders makes a POST request with optional headers
func (tc *TestContext) POSTWithHeaders(path string, body interface{}, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}

// MintIdentityToken signs an identity token the backend accepts for email.
func (tc *TestContext) MintIdentityToken(email string) (string, error) {
	return tc.identity.MintIdentityToken(context.Background(), email, "")
}

// MintForeignIdentityToken signs an identity token with a key the backend
// does not know.
func (tc *TestContext) MintForeignIdentityToken(email string) (string, error) {
	foreign := tokens.NewService("foreign-signing", "foreign-identity", "elsewhere", time.Minute)
	return foreign.MintIdentityToken(context.Background(), email, "")
}

// Getter methods for step package interfaces

func (tc *TestContext) GetAccessToken() string {
	return tc.AccessToken
}

func (tc *TestContext) SetAccessToken(token string) {
	tc.AccessToken = token
}

func (tc *TestContext) GetIDToken() string {
	return tc.IDToken
}

func (tc *TestContext) SetIDToken(token string) {
	tc.IDToken = token
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}

func (tc *TestContext) GetConsole() *console.Console {
	return tc.Console
}

func (tc *TestContext) Record(state pagination.State, err error) {
	tc.LastState = state
	tc.LastErr = err
}

func (tc *TestContext) GetLastState() pagination.State {
	return tc.LastState
}

func (tc *TestContext) GetLastErr() error {
	return tc.LastErr
}

func (tc *TestContext) Session() session.Snapshot {
	return tc.Console.Session()
}
