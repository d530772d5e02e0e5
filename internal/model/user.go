// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingProfileField はプロバイダーのレスポンスに必須項目が含まれない場合のエラー。
var ErrMissingProfileField = errors.New("required provider profile field is missing")

// ErrUserNotFound は指定IDのユーザーが存在しない場合のエラー。
var ErrUserNotFound = errors.New("user not found")

// User はOAuthプロバイダー経由でサインインしたユーザーを表す。
// OAuthToken、OAuthSecretは画面表示・ログ出力しない。
type User struct {
	ID             string
	Username       string
	OAuthToken     string
	OAuthSecret    string
	ProviderUserID string
	CreatedAt      time.Time
}

// NewUserParams はユーザー作成時の入力を表す。
// プロバイダーのアクセストークンレスポンスから直ちに組み立てる。
type NewUserParams struct {
	Username       string
	OAuthToken     string
	OAuthSecret    string
	ProviderUserID string // 任意。upsertモードでのみ使用する
}

// Validate は必須項目がすべて揃っていることを検証する。
func (p NewUserParams) Validate() error {
	var missing []string
	if p.Username == "" {
		missing = append(missing, "screen_name")
	}
	if p.OAuthToken == "" {
		missing = append(missing, "oauth_token")
	}
	if p.OAuthSecret == "" {
		missing = append(missing, "oauth_token_secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingProfileField, missing)
	}
	return nil
}
