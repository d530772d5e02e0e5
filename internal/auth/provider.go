package auth

import (
	"context"

	"github.com/hitoshi/tweetlog/internal/model"
)

// RequestToken はサインイン開始時にプロバイダーから発行される一時トークン。
type RequestToken struct {
	Token  string
	Secret string
}

// AccessGrant はリクエストトークンと検証コードの交換で得られるユーザーの認可情報。
type AccessGrant struct {
	Token      string
	Secret     string
	ScreenName string
	UserID     string // プロバイダーの数値ID。レスポンスに含まれない場合は空文字
}

// Credentials はユーザーに代わってプロバイダーAPIを呼び出すための資格情報。
type Credentials struct {
	Token  string
	Secret string
}

// OAuthProvider はOAuth 1.0aプロバイダーのインターフェース。
// コンシューマーキーとシークレットは生成時に設定済みであること。
type OAuthProvider interface {
	// BeginAuthorization はリクエストトークンを取得し、ユーザーを送る認可URLを返す。
	BeginAuthorization(ctx context.Context) (*RequestToken, string, error)
	// CompleteAuthorization はリクエストトークンと検証コードをアクセストークンに交換する。
	CompleteAuthorization(ctx context.Context, rt *RequestToken, verifier string) (*AccessGrant, error)
	// FetchTimeline はユーザーの最新の投稿を取得する。
	FetchTimeline(ctx context.Context, creds Credentials) ([]model.Post, error)
}
