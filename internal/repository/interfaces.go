// Package repository はデータ永続化のインターフェースと実装を提供する。
package repository

import (
	"context"

	"github.com/hitoshi/tweetlog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、生成したIDを含むユーザーを返す。
	// 同一プロバイダーIDの既存行があっても新しい行を作成する。
	Create(ctx context.Context, params model.NewUserParams) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByProviderUserID はプロバイダーのユーザーIDで最も新しいユーザーを取得する。
	// 見つからない場合はnilを返す。
	FindByProviderUserID(ctx context.Context, providerUserID string) (*model.User, error)

	// UpdateCredentials はユーザーのアクセストークンとシークレットを更新する。
	// usernameは更新しない。
	UpdateCredentials(ctx context.Context, id, oauthToken, oauthSecret string) error
}

// TokenEncrypter はトークンの保存時暗号化のインターフェース。
// security.TokenCipherが実装する。
type TokenEncrypter interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
