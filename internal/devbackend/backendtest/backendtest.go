// Package backendtest runs the development backend in-process for tests.
package backendtest

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lockme/internal/devbackend"
	"lockme/internal/platform/config"
)

// Backend is a seeded development backend behind an httptest server.
type Backend struct {
	*httptest.Server
	Backend *devbackend.Server
}

// Config returns the backend configuration used by Start.
func Config() config.DevBackend {
	return config.DevBackend{
		Addr:        "127.0.0.1:0",
		SigningKey:  "backendtest-signing",
		IdentityKey: "backendtest-identity",
		TokenTTL:    15 * time.Minute,
		Environment: "test",
	}
}

// Start launches a backend that is closed when the test ends.
func Start(t testing.TB, opts ...devbackend.Option) *Backend {
	t.Helper()
	srv, err := devbackend.New(context.Background(), Config(), opts...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &Backend{Server: ts, Backend: srv}
}

// IDToken mints an identity token for email.
func (b *Backend) IDToken(t testing.TB, email string) string {
	t.Helper()
	token, err := b.Backend.Tokens().MintIdentityToken(context.Background(), email, "")
	require.NoError(t, err)
	return token
}

// AdminConfig returns a console config pointed at the backend with an
// in-memory token store.
func (b *Backend) AdminConfig() config.Admin {
	cfg := config.DefaultAdmin()
	cfg.APIURL = b.URL
	cfg.TokenStore = config.TokenStoreMemory
	return cfg
}
