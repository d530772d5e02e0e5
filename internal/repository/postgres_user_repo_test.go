package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/hitoshi/tweetlog/internal/model"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// UUID形式でないIDはDBに問い合わせずに未検出となること
func TestPostgresUserRepo_FindByID_NonUUID_ReturnsNil(t *testing.T) {
	repo := NewPostgresUserRepo(nil, nil)

	user, err := repo.FindByID(context.Background(), "not-a-uuid")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

// 必須項目が欠けている場合はDBに書き込まずにエラーを返すこと
func TestPostgresUserRepo_Create_ValidatesBeforeInsert(t *testing.T) {
	repo := NewPostgresUserRepo(nil, nil)

	_, err := repo.Create(context.Background(), model.NewUserParams{Username: "alice"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestPostgresUserRepo_CreateThenFindByID_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresUserRepo(db, newTestCipher(t))

	created, err := repo.Create(ctx, model.NewUserParams{
		Username:    "alice",
		OAuthToken:  "t1",
		OAuthSecret: "s1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found == nil {
		t.Fatal("expected user to be found")
	}
	if found.Username != "alice" || found.OAuthToken != "t1" || found.OAuthSecret != "s1" {
		t.Errorf("found = {%q, %q, %q}, want {alice, t1, s1}", found.Username, found.OAuthToken, found.OAuthSecret)
	}
	if found.ProviderUserID != "" {
		t.Errorf("ProviderUserID = %q, want empty", found.ProviderUserID)
	}
}

// トークンが平文のままDBに保存されないことを検証する
func TestPostgresUserRepo_Create_StoresEncryptedTokens(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresUserRepo(db, newTestCipher(t))

	created, err := repo.Create(ctx, model.NewUserParams{
		Username:    "bob",
		OAuthToken:  "plain-token",
		OAuthSecret: "plain-secret",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var storedToken, storedSecret string
	err = db.QueryRowContext(ctx,
		`SELECT oauth_token, oauth_secret FROM users WHERE id = $1`, created.ID,
	).Scan(&storedToken, &storedSecret)
	if err != nil {
		t.Fatalf("failed to read raw row: %v", err)
	}

	if strings.Contains(storedToken, "plain-token") || strings.Contains(storedSecret, "plain-secret") {
		t.Errorf("tokens stored in plaintext: %q, %q", storedToken, storedSecret)
	}
}

func TestPostgresUserRepo_FindByProviderUserID_AndUpdateCredentials(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPostgresUserRepo(db, newTestCipher(t))

	created, err := repo.Create(ctx, model.NewUserParams{
		Username:       "bob",
		OAuthToken:     "tok",
		OAuthSecret:    "sec",
		ProviderUserID: "42",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	found, err := repo.FindByProviderUserID(ctx, "42")
	if err != nil {
		t.Fatalf("FindByProviderUserID() error = %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindByProviderUserID() = %+v, want ID %q", found, created.ID)
	}

	if err := repo.UpdateCredentials(ctx, created.ID, "tok2", "sec2"); err != nil {
		t.Fatalf("UpdateCredentials() error = %v", err)
	}

	updated, _ := repo.FindByID(ctx, created.ID)
	if updated.OAuthToken != "tok2" || updated.OAuthSecret != "sec2" {
		t.Errorf("credentials = (%q, %q), want (tok2, sec2)", updated.OAuthToken, updated.OAuthSecret)
	}
}
