package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// セッションストアの種類
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
	SessionStoreMemory   = "memory"
)

// サインイン時のユーザー作成方式
const (
	// SignInModeInsert はサインインのたびに新しいユーザー行を作成する。
	SignInModeInsert = "insert"
	// SignInModeUpsert はプロバイダーのユーザーIDが既知であれば既存行を再利用する。
	SignInModeUpsert = "upsert"
)

// MaxTimelineCount はuser_timeline APIが1回で返す件数の上限。
const MaxTimelineCount = 200

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// OAuth (consumer credentials)
	ConsumerKey    string `env:"CONSUMER_KEY,notEmpty"`
	ConsumerSecret string `env:"CONSUMER_SECRET,notEmpty"`

	// Provider endpoints
	RequestTokenURL string        `env:"PROVIDER_REQUEST_TOKEN_URL" envDefault:"https://api.twitter.com/oauth/request_token"`
	AuthorizeURL    string        `env:"PROVIDER_AUTHORIZE_URL" envDefault:"https://api.twitter.com/oauth/authorize"`
	AccessTokenURL  string        `env:"PROVIDER_ACCESS_TOKEN_URL" envDefault:"https://api.twitter.com/oauth/access_token"`
	APIBaseURL      string        `env:"PROVIDER_API_BASE_URL" envDefault:"https://api.twitter.com"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`
	TimelineCount   int           `env:"TIMELINE_COUNT" envDefault:"20"`
	SignInMode      string        `env:"SIGN_IN_MODE" envDefault:"insert"`

	// Session
	SessionSecret          string        `env:"SESSION_SECRET,notEmpty"`
	SessionStore           string        `env:"SESSION_STORE" envDefault:"postgres"`
	RedisURL               string        `env:"REDIS_URL"`
	SessionLifetime        time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	SessionIdleTimeout     time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"0s"`
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`

	// Rate Limit
	RateLimitSignIn int `env:"RATE_LIMIT_SIGN_IN" envDefault:"10"` // req/min/IP

	// TrustProxyHeaders はX-Forwarded-For/X-Real-IPをクライアントIPとして信頼するかどうか。
	// ヘッダーを上書きするリバースプロキシの背後でのみ有効にする。
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL    string `env:"BASE_URL,notEmpty"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CallbackURL はプロバイダーが認可後にリダイレクトするURLを返す。
func (c *Config) CallbackURL() string {
	return c.BaseURL + "/auth"
}

// validate は列挙値と組み合わせの整合性を検証する。
func (c *Config) validate() error {
	switch c.SessionStore {
	case SessionStorePostgres, SessionStoreMemory:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis)
		}
	default:
		return fmt.Errorf("invalid SESSION_STORE: %q", c.SessionStore)
	}

	switch c.SignInMode {
	case SignInModeInsert, SignInModeUpsert:
	default:
		return fmt.Errorf("invalid SIGN_IN_MODE: %q", c.SignInMode)
	}

	if c.TimelineCount <= 0 || c.TimelineCount > MaxTimelineCount {
		return fmt.Errorf("TIMELINE_COUNT must be between 1 and %d: %d", MaxTimelineCount, c.TimelineCount)
	}
	if c.RateLimitSignIn <= 0 {
		return fmt.Errorf("RATE_LIMIT_SIGN_IN must be positive: %d", c.RateLimitSignIn)
	}

	return nil
}
