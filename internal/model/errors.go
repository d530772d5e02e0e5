package model

import "fmt"

// PageError はエラーページに表示する内容を表す。
// 原因の説明とユーザー向けの対処方法を含む。
type PageError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	Action  string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *PageError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoPendingSignIn = "NO_PENDING_SIGN_IN"
	ErrCodeMissingVerifier = "MISSING_VERIFIER"
	ErrCodeSignInDenied    = "SIGN_IN_DENIED"
	ErrCodeProviderFailed  = "PROVIDER_FAILED"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTimelineFailed  = "TIMELINE_FAILED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewNoPendingSignInError は保留中のリクエストトークンがない場合のエラーを生成する。
func NewNoPendingSignInError() *PageError {
	return &PageError{
		Code:    ErrCodeNoPendingSignIn,
		Message: "サインイン手続きが開始されていないか、既に完了しています。",
		Action:  "もう一度サインインしてください。",
	}
}

// NewMissingVerifierError はoauth_verifierが指定されていない場合のエラーを生成する。
func NewMissingVerifierError() *PageError {
	return &PageError{
		Code:    ErrCodeMissingVerifier,
		Message: "認可結果（oauth_verifier）が含まれていません。",
		Action:  "もう一度サインインしてください。",
	}
}

// NewSignInDeniedError はユーザーが認可を拒否した場合のエラーを生成する。
func NewSignInDeniedError() *PageError {
	return &PageError{
		Code:    ErrCodeSignInDenied,
		Message: "アプリケーションの認可が拒否されました。",
		Action:  "サインインするには認可画面で許可してください。",
	}
}

// NewProviderFailedError はプロバイダーとのトークン交換に失敗した場合のエラーを生成する。
func NewProviderFailedError() *PageError {
	return &PageError{
		Code:    ErrCodeProviderFailed,
		Message: "認証プロバイダーとの通信に失敗しました。",
		Action:  "しばらく待ってから再度サインインしてください。",
	}
}

// NewUnauthorizedError は未サインイン状態で保護ページにアクセスした場合のエラーを生成する。
func NewUnauthorizedError() *PageError {
	return &PageError{
		Code:    ErrCodeUnauthorized,
		Message: "このページを表示するにはサインインが必要です。",
		Action:  "トップページからサインインしてください。",
	}
}

// NewTimelineFailedError はタイムライン取得に失敗した場合のエラーを生成する。
func NewTimelineFailedError() *PageError {
	return &PageError{
		Code:    ErrCodeTimelineFailed,
		Message: "タイムラインの取得に失敗しました。",
		Action:  "しばらく待ってから再読み込みしてください。",
	}
}

// NewRateLimitedError はレート制限超過時のエラーを生成する。
func NewRateLimitedError() *PageError {
	return &PageError{
		Code:    ErrCodeRateLimited,
		Message: "リクエストが多すぎます。",
		Action:  "しばらく待ってから再度お試しください。",
	}
}

// NewNotFoundError は存在しないページへのアクセス時のエラーを生成する。
func NewNotFoundError() *PageError {
	return &PageError{
		Code:    ErrCodeNotFound,
		Message: "ページが見つかりません。",
		Action:  "URLを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *PageError {
	return &PageError{
		Code:    ErrCodeInternal,
		Message: "内部エラーが発生しました。",
		Action:  "しばらく待ってから再度お試しください。",
	}
}
