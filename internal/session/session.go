// Package session はCookieベースのサーバーサイドセッションを提供する。
// セッションには保留中のリクエストトークンとサインイン済みユーザーIDのみを保持する。
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/view"
)

// CookieName はセッションCookieの名前。
const CookieName = "tweetlog_session"

// セッションキー
const (
	keyRequestToken       = "request_token"
	keyRequestTokenSecret = "request_token_secret"
	keyUserID             = "user_id"
)

// RequestToken はサインイン開始時にプロバイダーから発行された一時トークン。
// コールバックで1回だけ使用する。
type RequestToken struct {
	Token  string
	Secret string
}

// State は1リクエスト分のセッション状態を操作するインターフェース。
// ハンドラーにはManager.Handleが明示的に渡す。
type State interface {
	// RequestToken は保留中のリクエストトークンを返す。
	RequestToken() (RequestToken, bool)
	// SetRequestToken は保留中のリクエストトークンを保存する。既存の値は上書きする。
	SetRequestToken(rt RequestToken)
	// PopRequestToken は保留中のリクエストトークンを取り出し、セッションから削除する。
	PopRequestToken() (RequestToken, bool)
	// UserID はサインイン済みユーザーのIDを返す。未サインインの場合は空文字。
	UserID() string
	SetUserID(id string)
	RemoveUserID()
	// Renew はセッショントークンを再発行する。権限が変わる時点で呼び出す。
	Renew() error
	// Destroy はセッションを破棄する。
	Destroy() error
}

// Options はManagerの設定。
type Options struct {
	Store        scs.Store
	Lifetime     time.Duration
	IdleTimeout  time.Duration
	CookieSecure bool
	CookieDomain string
}

// Manager はscs.SessionManagerをラップし、型付きのセッション操作を提供する。
type Manager struct {
	scs *scs.SessionManager
}

// NewManager はManagerを生成する。
// Storeがnilの場合はscsのメモリストアを使用する。
func NewManager(opts Options) *Manager {
	sm := scs.New()
	if opts.Store != nil {
		sm.Store = opts.Store
	}
	if opts.Lifetime > 0 {
		sm.Lifetime = opts.Lifetime
	}
	sm.IdleTimeout = opts.IdleTimeout

	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.CookieSecure
	sm.Cookie.Domain = opts.CookieDomain
	sm.Cookie.Path = "/"

	sm.ErrorFunc = func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Error("session store error",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
		view.RenderError(w, http.StatusInternalServerError, model.NewInternalError())
	}

	return &Manager{scs: sm}
}

// HandlerFunc はセッション状態を受け取るハンドラー関数。
type HandlerFunc func(w http.ResponseWriter, r *http.Request, st State)

// Handle はセッションの読み込みと保存を行い、fnにセッション状態を渡すハンドラーを返す。
func (m *Manager) Handle(fn HandlerFunc) http.Handler {
	return m.scs.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fn(w, r, &requestState{sm: m.scs, ctx: r.Context()})
	}))
}

// requestState はリクエストコンテキストに紐づくStateの実装。
type requestState struct {
	sm  *scs.SessionManager
	ctx context.Context
}

func (s *requestState) RequestToken() (RequestToken, bool) {
	rt := RequestToken{
		Token:  s.sm.GetString(s.ctx, keyRequestToken),
		Secret: s.sm.GetString(s.ctx, keyRequestTokenSecret),
	}
	return rt, rt.Token != ""
}

func (s *requestState) SetRequestToken(rt RequestToken) {
	s.sm.Put(s.ctx, keyRequestToken, rt.Token)
	s.sm.Put(s.ctx, keyRequestTokenSecret, rt.Secret)
}

func (s *requestState) PopRequestToken() (RequestToken, bool) {
	rt := RequestToken{
		Token:  s.sm.PopString(s.ctx, keyRequestToken),
		Secret: s.sm.PopString(s.ctx, keyRequestTokenSecret),
	}
	return rt, rt.Token != ""
}

func (s *requestState) UserID() string {
	return s.sm.GetString(s.ctx, keyUserID)
}

func (s *requestState) SetUserID(id string) {
	s.sm.Put(s.ctx, keyUserID, id)
}

func (s *requestState) RemoveUserID() {
	s.sm.Remove(s.ctx, keyUserID)
}

func (s *requestState) Renew() error {
	return s.sm.RenewToken(s.ctx)
}

func (s *requestState) Destroy() error {
	return s.sm.Destroy(s.ctx)
}

// compile-time interface check
var _ State = (*requestState)(nil)
