package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
)

// PostgresSessionStore はPostgreSQLのsessionsテーブルを使用するscsセッションストア。
// ブラウザのCookieに保存されたトークンをキーに、scsがエンコードしたセッションデータを保持する。
type PostgresSessionStore struct {
	db *sql.DB
}

// NewPostgresSessionStore はPostgresSessionStoreを生成する。
// 期限切れ行の削除はDeleteExpiredを定期実行して行う。
func NewPostgresSessionStore(db *sql.DB) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// FindCtx は有効期限内のセッションデータを取得する。
// 見つからない、または期限切れの場合はfound=falseを返す。
func (s *PostgresSessionStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM sessions WHERE token = $1 AND current_timestamp < expiry`,
		token,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find session: %w", err)
	}

	return data, true, nil
}

// CommitCtx はセッションデータを保存する。既存トークンの場合は上書きする。
func (s *PostgresSessionStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, data, expiry) VALUES ($1, $2, $3)
		 ON CONFLICT (token) DO UPDATE SET data = EXCLUDED.data, expiry = EXCLUDED.expiry`,
		token, b, expiry.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// DeleteCtx はセッションを削除する。存在しない場合もエラーにしない。
func (s *PostgresSessionStore) DeleteCtx(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Find はFindCtxのcontextなし版。scs.Storeを満たすために提供する。
func (s *PostgresSessionStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

// Commit はCommitCtxのcontextなし版。
func (s *PostgresSessionStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

// Delete はDeleteCtxのcontextなし版。
func (s *PostgresSessionStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expiry < current_timestamp`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ scs.CtxStore = (*PostgresSessionStore)(nil)
