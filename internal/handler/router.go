package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/tweetlog/internal/metrics"
	"github.com/hitoshi/tweetlog/internal/middleware"
	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger      *slog.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     metrics.MetricsCollector

	// セッション
	Sessions *session.Manager

	// 認証・タイムライン
	AuthService AuthServiceInterface

	// TrustProxyHeaders はX-Forwarded-For等からクライアントIPを決定するかどうか。
	// 信頼できるリバースプロキシの背後で動かす場合のみtrueにする。
	TrustProxyHeaders bool

	// 運用
	HealthChecker   HealthChecker
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → (RealIP) → Logging → Recovery → SecurityHeaders → Metrics
//
// RealIPはTrustProxyHeadersが有効な場合のみ適用する。無効時はレート制限が接続元アドレスで行われる。
// /sign_inと/authはプロバイダーへの通信を伴うため、クライアントIPごとのレート制限を追加する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.NopCollector{}
	}

	r.Use(chimw.RequestID)
	if deps.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewMetricsMiddleware(collector))

	pages := NewPageHandler(deps.AuthService)
	sessions := deps.Sessions

	// --- ページ ---
	r.Method(http.MethodGet, "/", sessions.Handle(pages.Index))
	r.Method(http.MethodGet, "/sign_out", sessions.Handle(pages.SignOut))
	r.Method(http.MethodGet, "/profile", sessions.Handle(pages.Profile))

	// --- サインインフロー（レート制限あり） ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}
		r.Method(http.MethodGet, "/sign_in", sessions.Handle(pages.SignIn))
		r.Method(http.MethodGet, "/auth", sessions.Handle(pages.Auth))
	})

	// --- 運用 ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorPage(w, http.StatusNotFound, model.NewNotFoundError())
	})

	return r
}
