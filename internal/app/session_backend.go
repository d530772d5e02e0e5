package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/hitoshi/tweetlog/internal/config"
	"github.com/hitoshi/tweetlog/internal/handler"
	"github.com/hitoshi/tweetlog/internal/repository"
	"github.com/redis/go-redis/v9"
)

// sessionBackend はSESSION_STOREに応じて選択したセッションストアとその付随リソース。
type sessionBackend struct {
	Store scs.Store

	redis *redis.Client
}

// newSessionBackend は設定に応じたセッションストアを生成する。
// redisの場合は起動時に接続を確認する。
func newSessionBackend(ctx context.Context, cfg *config.Config, db *sql.DB) (*sessionBackend, error) {
	switch cfg.SessionStore {
	case config.SessionStorePostgres:
		return &sessionBackend{Store: repository.NewPostgresSessionStore(db)}, nil

	case config.SessionStoreRedis:
		client, err := repository.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connection established")
		return &sessionBackend{
			Store: repository.NewRedisSessionStore(client),
			redis: client,
		}, nil

	case config.SessionStoreMemory:
		slog.Warn("using in-memory session store, sessions are lost on restart")
		return &sessionBackend{Store: memstore.New()}, nil

	default:
		return nil, fmt.Errorf("unsupported session store: %q", cfg.SessionStore)
	}
}

// HealthChecker はDBと、使用していればRedisの疎通を確認するHealthCheckerを返す。
func (b *sessionBackend) HealthChecker(db handler.HealthChecker) handler.HealthChecker {
	if b.redis == nil {
		return db
	}
	return healthCheckers{db, redisPinger{client: b.redis}}
}

// Close はRedisクライアントを閉じる。
func (b *sessionBackend) Close() error {
	if b.redis != nil {
		return b.redis.Close()
	}
	return nil
}

// redisPinger はRedisクライアントをHealthCheckerに適合させる。
type redisPinger struct {
	client redis.Cmdable
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// healthCheckers は全てのHealthCheckerが成功した場合のみ成功とする。
type healthCheckers []handler.HealthChecker

func (hs healthCheckers) PingContext(ctx context.Context) error {
	for _, h := range hs {
		if err := h.PingContext(ctx); err != nil {
			return err
		}
	}
	return nil
}
