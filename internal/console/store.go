package console

import (
	"context"
	"fmt"
	"io"

	"lockme/internal/admin/tokenstore"
	"lockme/internal/platform/config"
	lockredis "lockme/internal/platform/redis"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenTokenStore builds the token store selected in cfg. The returned closer
// releases any connection the store holds.
func OpenTokenStore(ctx context.Context, cfg config.Admin) (tokenstore.Store, io.Closer, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return tokenstore.NewMemory(), nopCloser{}, nil
	case config.TokenStoreFile, "":
		if cfg.TokenFile == "" {
			return nil, nil, fmt.Errorf("token file path is required")
		}
		return tokenstore.NewFile(cfg.TokenFile), nopCloser{}, nil
	case config.TokenStoreRedis:
		rc, err := lockredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis token store: %w", err)
		}
		return tokenstore.NewRedis(rc, cfg.RedisPrefix), rc, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}
