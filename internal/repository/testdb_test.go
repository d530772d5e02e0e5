package repository

import (
	"database/sql"
	"os"
	"testing"

	"github.com/hitoshi/tweetlog/internal/database"
	"github.com/hitoshi/tweetlog/internal/security"
)

// openTestDB はマイグレーション適用済みのテスト用DBを返す。
// TEST_DATABASE_URLが未設定、または接続できない場合はテストをスキップする。
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL が未設定のためスキップ")
	}

	db, err := database.Open(dbURL, database.DefaultPoolConfig())
	if err != nil {
		t.Fatalf("データベースのオープンに失敗: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("テスト用データベースに接続できません（スキップ）: %v", err)
	}
	if _, err := database.RunMigrations(dbURL); err != nil {
		db.Close()
		t.Fatalf("マイグレーション実行に失敗: %v", err)
	}
	if _, err := db.Exec(`TRUNCATE users, sessions`); err != nil {
		db.Close()
		t.Fatalf("テーブルの初期化に失敗: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func newTestCipher(t *testing.T) *security.TokenCipher {
	t.Helper()
	c, err := security.NewTokenCipher("repository-test-secret")
	if err != nil {
		t.Fatalf("NewTokenCipher() error = %v", err)
	}
	return c
}
