package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"
)

// defaultRedisSessionPrefix はセッションキーの接頭辞。
const defaultRedisSessionPrefix = "tweetlog:session:"

// RedisCommander はRedisSessionStoreが使用するコマンドの部分集合。
// *redis.Clientが実装する。
type RedisCommander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisSessionStore はRedisを使用するscsセッションストア。
// 有効期限はRedisのTTLで管理するため、クリーンアップジョブは不要。
type RedisSessionStore struct {
	client RedisCommander
	prefix string
}

// NewRedisSessionStore はRedisSessionStoreを生成する。
func NewRedisSessionStore(client RedisCommander) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: defaultRedisSessionPrefix,
	}
}

// NewRedisClient はREDIS_URLからクライアントを生成し、接続を確認する。
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// FindCtx はセッションデータを取得する。見つからない場合はfound=falseを返す。
func (s *RedisSessionStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	b, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find session: %w", err)
	}
	return b, true, nil
}

// CommitCtx はセッションデータを有効期限付きで保存する。
// 有効期限を過ぎている場合は削除する。
func (s *RedisSessionStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		return s.DeleteCtx(ctx, token)
	}

	if err := s.client.Set(ctx, s.prefix+token, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// DeleteCtx はセッションを削除する。
func (s *RedisSessionStore) DeleteCtx(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.prefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Find はFindCtxのcontextなし版。
func (s *RedisSessionStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

// Commit はCommitCtxのcontextなし版。
func (s *RedisSessionStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

// Delete はDeleteCtxのcontextなし版。
func (s *RedisSessionStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// compile-time interface check
var (
	_ scs.CtxStore   = (*RedisSessionStore)(nil)
	_ RedisCommander = (*redis.Client)(nil)
)
