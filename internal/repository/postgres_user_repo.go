package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/tweetlog/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
// oauth_token、oauth_secretは暗号化して保存する。
type PostgresUserRepo struct {
	db     *sql.DB
	cipher TokenEncrypter
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB, cipher TokenEncrypter) *PostgresUserRepo {
	return &PostgresUserRepo{db: db, cipher: cipher}
}

// Create はユーザーを作成する。IDはUUIDで生成する。
func (r *PostgresUserRepo) Create(ctx context.Context, params model.NewUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	encToken, err := r.cipher.Encrypt(params.OAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt oauth token: %w", err)
	}
	encSecret, err := r.cipher.Encrypt(params.OAuthSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt oauth secret: %w", err)
	}

	user := &model.User{
		ID:             uuid.New().String(),
		Username:       params.Username,
		OAuthToken:     params.OAuthToken,
		OAuthSecret:    params.OAuthSecret,
		ProviderUserID: params.ProviderUserID,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, oauth_token, oauth_secret, provider_user_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, encToken, encSecret, nullString(user.ProviderUserID), user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		// UUID形式でないIDはPostgreSQLでエラーになるため、未検出として扱う
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, oauth_token, oauth_secret, provider_user_id, created_at
		 FROM users WHERE id = $1`,
		id,
	)
	return r.scanUser(row)
}

// FindByProviderUserID はプロバイダーのユーザーIDで最も新しいユーザーを取得する。
func (r *PostgresUserRepo) FindByProviderUserID(ctx context.Context, providerUserID string) (*model.User, error) {
	if providerUserID == "" {
		return nil, nil
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, oauth_token, oauth_secret, provider_user_id, created_at
		 FROM users WHERE provider_user_id = $1
		 ORDER BY created_at DESC
		 LIMIT 1`,
		providerUserID,
	)
	return r.scanUser(row)
}

// UpdateCredentials はユーザーのアクセストークンとシークレットを更新する。
func (r *PostgresUserRepo) UpdateCredentials(ctx context.Context, id, oauthToken, oauthSecret string) error {
	encToken, err := r.cipher.Encrypt(oauthToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt oauth token: %w", err)
	}
	encSecret, err := r.cipher.Encrypt(oauthSecret)
	if err != nil {
		return fmt.Errorf("failed to encrypt oauth secret: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET oauth_token = $2, oauth_secret = $3 WHERE id = $1`,
		id, encToken, encSecret,
	)
	if err != nil {
		return fmt.Errorf("failed to update user credentials: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	return nil
}

// scanUser は1行を読み取り、トークンを復号したユーザーを返す。
func (r *PostgresUserRepo) scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var encToken, encSecret string
	var providerUserID sql.NullString

	err := row.Scan(&user.ID, &user.Username, &encToken, &encSecret, &providerUserID, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	user.ProviderUserID = providerUserID.String
	if user.OAuthToken, err = r.cipher.Decrypt(encToken); err != nil {
		return nil, fmt.Errorf("failed to decrypt oauth token for user %s: %w", user.ID, err)
	}
	if user.OAuthSecret, err = r.cipher.Decrypt(encSecret); err != nil {
		return nil, fmt.Errorf("failed to decrypt oauth secret for user %s: %w", user.ID, err)
	}

	return user, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
