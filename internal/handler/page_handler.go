// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tweetlog/internal/auth"
	"github.com/hitoshi/tweetlog/internal/middleware"
	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/session"
	"github.com/hitoshi/tweetlog/internal/view"
)

// AuthServiceInterface はページハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	BeginSignIn(ctx context.Context) (*auth.RequestToken, string, error)
	CompleteSignIn(ctx context.Context, rt *auth.RequestToken, verifier string) (*model.User, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	Timeline(ctx context.Context, user *model.User) ([]model.Post, error)
}

// PageHandler はトップページ、サインインフロー、プロフィールのHTTPハンドラー。
// セッション状態は各メソッドの引数で受け取る。
type PageHandler struct {
	service AuthServiceInterface
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(service AuthServiceInterface) *PageHandler {
	return &PageHandler{service: service}
}

// Index はトップページを表示する。
// GET /
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request, st session.State) {
	userID := st.UserID()
	if userID == "" {
		view.RenderIndex(w, view.IndexData{})
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if errors.Is(err, model.ErrUserNotFound) {
		// 削除済みユーザーを指すセッションは未サインインとして扱う
		st.RemoveUserID()
		view.RenderIndex(w, view.IndexData{})
		return
	}
	if err != nil {
		// トップページは常に200を返す。ユーザーを読めない場合は未サインイン表示にする
		slog.Error("failed to load current user", slog.String("error", err.Error()))
		view.RenderIndex(w, view.IndexData{})
		return
	}

	view.RenderIndex(w, view.IndexData{User: user})
}

// SignIn はリクエストトークンを取得してセッションに保存し、プロバイダーの認可画面にリダイレクトする。
// GET /sign_in
func (h *PageHandler) SignIn(w http.ResponseWriter, r *http.Request, st session.State) {
	rt, authorizeURL, err := h.service.BeginSignIn(r.Context())
	if err != nil {
		slog.Error("failed to begin sign-in", slog.String("error", err.Error()))
		middleware.WriteErrorPage(w, http.StatusBadGateway, model.NewProviderFailedError())
		return
	}

	st.SetRequestToken(session.RequestToken{Token: rt.Token, Secret: rt.Secret})
	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// SignOut はセッションを破棄してトップページにリダイレクトする。
// 未サインイン状態でも同じ結果になる。
// GET /sign_out
func (h *PageHandler) SignOut(w http.ResponseWriter, r *http.Request, st session.State) {
	if err := st.Destroy(); err != nil {
		slog.Error("failed to destroy session", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

// Auth はプロバイダーからのコールバックを処理し、ユーザーを作成してサインイン状態にする。
// リクエストトークンは交換の成否にかかわらず最初にセッションから取り除く。
// GET /auth?oauth_token=xxx&oauth_verifier=yyy
func (h *PageHandler) Auth(w http.ResponseWriter, r *http.Request, st session.State) {
	query := r.URL.Query()

	// 1. 保留中のリクエストトークンを取り出す
	pending, ok := st.PopRequestToken()
	if !ok {
		slog.Warn("auth callback without pending request token")
		middleware.WriteErrorPage(w, http.StatusBadRequest, model.NewNoPendingSignInError())
		return
	}

	// 2. 認可拒否と検証コードの確認
	if query.Has("denied") {
		slog.Info("sign-in denied by user")
		middleware.WriteErrorPage(w, http.StatusBadRequest, model.NewSignInDeniedError())
		return
	}
	verifier := query.Get("oauth_verifier")
	if verifier == "" {
		middleware.WriteErrorPage(w, http.StatusBadRequest, model.NewMissingVerifierError())
		return
	}

	// 3. トークン交換とユーザー作成
	user, err := h.service.CompleteSignIn(r.Context(), &auth.RequestToken{Token: pending.Token, Secret: pending.Secret}, verifier)
	if err != nil {
		writeSignInError(w, err)
		return
	}

	// 4. 権限が変わるためセッショントークンを再発行してからユーザーIDを保存
	if err := st.Renew(); err != nil {
		slog.Error("failed to renew session token", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	st.SetUserID(user.ID)

	view.RenderIndex(w, view.IndexData{User: user})
}

// Profile はサインイン中のユーザーのタイムラインを表示する。
// GET /profile
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request, st session.State) {
	userID := st.UserID()
	if userID == "" {
		middleware.WriteErrorPage(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.CurrentUser(r.Context(), userID)
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Warn("session points at missing user", slog.String("user_id", userID))
		st.RemoveUserID()
		middleware.WriteErrorPage(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}
	if err != nil {
		slog.Error("failed to load current user", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	posts, err := h.service.Timeline(r.Context(), user)
	if err != nil {
		slog.Error("failed to fetch timeline",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		middleware.WriteErrorPage(w, http.StatusBadGateway, model.NewTimelineFailedError())
		return
	}

	view.RenderProfile(w, view.ProfileData{User: user, Posts: posts})
}

// writeSignInError はサインイン完了時のエラーをステータスコードに変換して書き込む。
func writeSignInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNoPendingRequestToken):
		middleware.WriteErrorPage(w, http.StatusBadRequest, model.NewNoPendingSignInError())
	case errors.Is(err, auth.ErrProviderFailed), errors.Is(err, model.ErrMissingProfileField):
		slog.Error("sign-in exchange failed", slog.String("error", err.Error()))
		middleware.WriteErrorPage(w, http.StatusBadGateway, model.NewProviderFailedError())
	default:
		slog.Error("failed to complete sign-in", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
	}
}
