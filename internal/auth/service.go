// Package auth はOAuth 1.0aによるサインインフローとプロバイダーAPIの呼び出しを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/tweetlog/internal/config"
	"github.com/hitoshi/tweetlog/internal/metrics"
	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/hitoshi/tweetlog/internal/repository"
	"github.com/hitoshi/tweetlog/internal/security"
)

// ErrNoPendingRequestToken はサインイン完了時に保留中のリクエストトークンがない場合のエラー。
var ErrNoPendingRequestToken = errors.New("no pending request token")

// ErrProviderFailed はプロバイダーとの通信に失敗した場合のエラー。
// 元のエラーと合わせてラップして返す。
var ErrProviderFailed = errors.New("oauth provider request failed")

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SignInMode string // config.SignInModeInsert または config.SignInModeUpsert
}

// Service はサインインとタイムライン表示に関するビジネスロジックを提供する。
type Service struct {
	provider  OAuthProvider
	userRepo  repository.UserRepository
	sanitizer security.PostSanitizer
	metrics   metrics.MetricsCollector
	config    ServiceConfig
}

// NewService はServiceを生成する。
// metricsCollectorがnilの場合はメトリクスを記録しない。
func NewService(
	provider OAuthProvider,
	userRepo repository.UserRepository,
	sanitizer security.PostSanitizer,
	metricsCollector metrics.MetricsCollector,
	cfg ServiceConfig,
) *Service {
	if metricsCollector == nil {
		metricsCollector = metrics.NopCollector{}
	}
	if cfg.SignInMode == "" {
		cfg.SignInMode = config.SignInModeInsert
	}
	return &Service{
		provider:  provider,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   metricsCollector,
		config:    cfg,
	}
}

// BeginSignIn はリクエストトークンを取得し、認可URLと合わせて返す。
func (s *Service) BeginSignIn(ctx context.Context) (*RequestToken, string, error) {
	rt, authorizeURL, err := s.provider.BeginAuthorization(ctx)
	if err != nil {
		s.metrics.RecordSignInFailure(metrics.ReasonProvider)
		return nil, "", fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	s.metrics.RecordSignInStarted()
	return rt, authorizeURL, nil
}

// CompleteSignIn はリクエストトークンと検証コードを交換し、ユーザー行を作成する。
// upsertモードではプロバイダーのユーザーIDが既知であれば既存行の資格情報を更新して返す。
func (s *Service) CompleteSignIn(ctx context.Context, rt *RequestToken, verifier string) (*model.User, error) {
	if rt == nil || rt.Token == "" {
		s.metrics.RecordSignInFailure(metrics.ReasonNoPendingToken)
		return nil, ErrNoPendingRequestToken
	}

	// 1. 検証コードをアクセストークンに交換
	grant, err := s.provider.CompleteAuthorization(ctx, rt, verifier)
	if err != nil {
		s.metrics.RecordSignInFailure(metrics.ReasonProvider)
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	// 2. レスポンスからユーザー作成の入力を組み立て、必須項目を検証
	params := model.NewUserParams{
		Username:       grant.ScreenName,
		OAuthToken:     grant.Token,
		OAuthSecret:    grant.Secret,
		ProviderUserID: grant.UserID,
	}
	if err := params.Validate(); err != nil {
		s.metrics.RecordSignInFailure(metrics.ReasonMissingField)
		return nil, err
	}

	// 3a. upsertモード: 既存ユーザーの資格情報を更新
	if s.config.SignInMode == config.SignInModeUpsert {
		existing, err := s.userRepo.FindByProviderUserID(ctx, params.ProviderUserID)
		if err != nil {
			s.metrics.RecordSignInFailure(metrics.ReasonStore)
			return nil, fmt.Errorf("failed to find user by provider id: %w", err)
		}
		if existing != nil {
			if err := s.userRepo.UpdateCredentials(ctx, existing.ID, params.OAuthToken, params.OAuthSecret); err != nil {
				s.metrics.RecordSignInFailure(metrics.ReasonStore)
				return nil, fmt.Errorf("failed to update user credentials: %w", err)
			}
			existing.OAuthToken = params.OAuthToken
			existing.OAuthSecret = params.OAuthSecret

			s.metrics.RecordSignInCompleted(s.config.SignInMode)
			slog.Info("existing user signed in",
				slog.String("user_id", existing.ID),
				slog.String("username", existing.Username),
			)
			return existing, nil
		}
	}

	// 3b. 新しいユーザー行を作成
	user, err := s.userRepo.Create(ctx, params)
	if err != nil {
		s.metrics.RecordSignInFailure(metrics.ReasonStore)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.RecordUserCreated()
	s.metrics.RecordSignInCompleted(s.config.SignInMode)
	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// CurrentUser は指定IDのユーザーを取得する。
// 存在しない場合はmodel.ErrUserNotFoundを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, model.ErrUserNotFound
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrUserNotFound, userID)
	}

	return user, nil
}

// Timeline はユーザーの資格情報でタイムラインを取得し、本文をサニタイズして返す。
func (s *Service) Timeline(ctx context.Context, user *model.User) ([]model.Post, error) {
	start := time.Now()
	posts, err := s.provider.FetchTimeline(ctx, Credentials{Token: user.OAuthToken, Secret: user.OAuthSecret})
	s.metrics.RecordTimelineLatency(time.Since(start))
	if err != nil {
		s.metrics.RecordTimelineFailure()
		return nil, fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}

	for i := range posts {
		posts[i].HTML = s.sanitizer.Sanitize(posts[i].Text)
	}

	return posts, nil
}
