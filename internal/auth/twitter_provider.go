package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/tweetlog/internal/model"
	"github.com/mrjones/oauth"
)

const (
	defaultTwitterRequestTokenURL = "https://api.twitter.com/oauth/request_token"
	defaultTwitterAuthorizeURL    = "https://api.twitter.com/oauth/authorize"
	defaultTwitterAccessTokenURL  = "https://api.twitter.com/oauth/access_token"
	defaultTwitterAPIBaseURL      = "https://api.twitter.com"

	defaultTimelineCount   = 20
	defaultProviderTimeout = 10 * time.Second

	userTimelinePath = "/1.1/statuses/user_timeline.json"

	// maxResponseSize はエラーレスポンス本文を読み込む上限。
	maxResponseSize = 1 << 20
)

// TwitterConfig はTwitter互換OAuth 1.0aプロバイダーの設定。
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string

	// テスト用にオーバーライド可能なURL
	RequestTokenURL string
	AuthorizeURL    string
	AccessTokenURL  string
	APIBaseURL      string

	TimelineCount int
	Timeout       time.Duration
}

// TwitterProvider はTwitter互換APIに対するOAuth 1.0aフローとタイムライン取得を提供する。
// 署名はmrjones/oauthに委譲する。
type TwitterProvider struct {
	config   TwitterConfig
	consumer *oauth.Consumer
}

// NewTwitterProvider はTwitterProviderを生成する。
func NewTwitterProvider(config TwitterConfig) *TwitterProvider {
	if config.RequestTokenURL == "" {
		config.RequestTokenURL = defaultTwitterRequestTokenURL
	}
	if config.AuthorizeURL == "" {
		config.AuthorizeURL = defaultTwitterAuthorizeURL
	}
	if config.AccessTokenURL == "" {
		config.AccessTokenURL = defaultTwitterAccessTokenURL
	}
	if config.APIBaseURL == "" {
		config.APIBaseURL = defaultTwitterAPIBaseURL
	}
	if config.TimelineCount <= 0 {
		config.TimelineCount = defaultTimelineCount
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultProviderTimeout
	}

	consumer := oauth.NewCustomHttpClientConsumer(
		config.ConsumerKey,
		config.ConsumerSecret,
		oauth.ServiceProvider{
			RequestTokenUrl:   config.RequestTokenURL,
			AuthorizeTokenUrl: config.AuthorizeURL,
			AccessTokenUrl:    config.AccessTokenURL,
			HttpMethod:        http.MethodPost,
		},
		&http.Client{Timeout: config.Timeout},
	)

	return &TwitterProvider{config: config, consumer: consumer}
}

// BeginAuthorization はリクエストトークンを取得し、認可URLを返す。
// mrjones/oauthはcontextを受け取らないため、タイムアウトはHTTPクライアント側で制御する。
func (p *TwitterProvider) BeginAuthorization(ctx context.Context) (*RequestToken, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	rt, authorizeURL, err := p.consumer.GetRequestTokenAndUrl(p.config.CallbackURL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get request token: %w", err)
	}

	return &RequestToken{Token: rt.Token, Secret: rt.Secret}, authorizeURL, nil
}

// CompleteAuthorization はリクエストトークンと検証コードをアクセストークンに交換する。
// screen_name、user_idはアクセストークンレスポンスの追加パラメータから取得する。
func (p *TwitterProvider) CompleteAuthorization(ctx context.Context, rt *RequestToken, verifier string) (*AccessGrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	at, err := p.consumer.AuthorizeToken(&oauth.RequestToken{Token: rt.Token, Secret: rt.Secret}, verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange request token: %w", err)
	}

	return &AccessGrant{
		Token:      at.Token,
		Secret:     at.Secret,
		ScreenName: at.AdditionalData["screen_name"],
		UserID:     at.AdditionalData["user_id"],
	}, nil
}

// tweetJSON はuser_timelineレスポンスの1要素。使用するフィールドのみ定義する。
type tweetJSON struct {
	IDStr     string `json:"id_str"`
	Text      string `json:"text"`
	FullText  string `json:"full_text"`
	CreatedAt string `json:"created_at"`
	User      struct {
		ScreenName string `json:"screen_name"`
	} `json:"user"`
}

// FetchTimeline はユーザーの資格情報で署名したリクエストでタイムラインを取得する。
func (p *TwitterProvider) FetchTimeline(ctx context.Context, creds Credentials) ([]model.Post, error) {
	client, err := p.consumer.MakeHttpClient(&oauth.AccessToken{Token: creds.Token, Secret: creds.Secret})
	if err != nil {
		return nil, fmt.Errorf("failed to create signed client: %w", err)
	}
	client.Timeout = p.config.Timeout

	query := url.Values{
		"count":      {strconv.Itoa(p.config.TimelineCount)},
		"tweet_mode": {"extended"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.APIBaseURL+userTimelinePath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create timeline request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timeline request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("timeline fetch failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tweets []tweetJSON
	if err := json.NewDecoder(resp.Body).Decode(&tweets); err != nil {
		return nil, fmt.Errorf("failed to parse timeline response: %w", err)
	}

	posts := make([]model.Post, 0, len(tweets))
	for _, tw := range tweets {
		text := tw.FullText
		if text == "" {
			text = tw.Text
		}
		// created_atが解析できない場合はゼロ値のまま表示する
		createdAt, _ := time.Parse(time.RubyDate, tw.CreatedAt)
		posts = append(posts, model.Post{
			ID:               tw.IDStr,
			Text:             text,
			AuthorScreenName: tw.User.ScreenName,
			CreatedAt:        createdAt,
		})
	}

	return posts, nil
}

// compile-time interface check
var _ OAuthProvider = (*TwitterProvider)(nil)
