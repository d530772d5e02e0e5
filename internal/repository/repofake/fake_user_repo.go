package repofake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/repository"
)

// FakeUserRepo はプロセス内メモリを使用したユーザーリポジトリのフェイク。
// サービスとハンドラーのテストで使用する。
type FakeUserRepo struct {
	mu    sync.RWMutex
	users map[string]model.User
	order []string // 作成順のID
}

// NewFakeUserRepo はFakeUserRepoを生成する。
func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]model.User),
	}
}

// Create はユーザーを作成する。IDはUUIDで生成する。
func (r *FakeUserRepo) Create(_ context.Context, params model.NewUserParams) (*model.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	user := model.User{
		ID:             uuid.New().String(),
		Username:       params.Username,
		OAuthToken:     params.OAuthToken,
		OAuthSecret:    params.OAuthSecret,
		ProviderUserID: params.ProviderUserID,
		CreatedAt:      time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)

	return &user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *FakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// FindByProviderUserID はプロバイダーのユーザーIDで最も新しいユーザーを取得する。
func (r *FakeUserRepo) FindByProviderUserID(_ context.Context, providerUserID string) (*model.User, error) {
	if providerUserID == "" {
		return nil, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		user := r.users[r.order[i]]
		if user.ProviderUserID == providerUserID {
			return &user, nil
		}
	}
	return nil, nil
}

// UpdateCredentials はユーザーのアクセストークンとシークレットを更新する。
func (r *FakeUserRepo) UpdateCredentials(_ context.Context, id, oauthToken, oauthSecret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", model.ErrUserNotFound, id)
	}
	user.OAuthToken = oauthToken
	user.OAuthSecret = oauthSecret
	r.users[id] = user
	return nil
}

// Count は保存されているユーザー数を返す。
func (r *FakeUserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// compile-time interface check
var _ repository.UserRepository = (*FakeUserRepo)(nil)
