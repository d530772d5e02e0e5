package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// oauthStub はOAuth 1.0aプロバイダーの最小限のスタブ。
// (RT1, V1)の組み合わせのみをbob/tok/secに交換する。
type oauthStub struct {
	server *httptest.Server

	timelineStatus int
	timelineBody   string
	lastTimelineQS url.Values
	lastTimelineAH string
}

func newOAuthStub(t *testing.T) *oauthStub {
	t.Helper()
	stub := &oauthStub{timelineStatus: http.StatusOK, timelineBody: "[]"}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Authorization"), `oauth_consumer_key="ck"`) {
			http.Error(w, "bad consumer", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "oauth_token=RT1&oauth_token_secret=RS1&oauth_callback_confirmed=true")
	})
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if !strings.Contains(ah, `oauth_token="RT1"`) || !strings.Contains(ah, `oauth_verifier="V1"`) {
			http.Error(w, "invalid verifier", http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "oauth_token=tok&oauth_token_secret=sec&screen_name=bob&user_id=42")
	})
	mux.HandleFunc(userTimelinePath, func(w http.ResponseWriter, r *http.Request) {
		stub.lastTimelineQS = r.URL.Query()
		stub.lastTimelineAH = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stub.timelineStatus)
		fmt.Fprint(w, stub.timelineBody)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *oauthStub) provider() *TwitterProvider {
	return NewTwitterProvider(TwitterConfig{
		ConsumerKey:     "ck",
		ConsumerSecret:  "cs",
		CallbackURL:     "http://localhost:8080/auth",
		RequestTokenURL: s.server.URL + "/oauth/request_token",
		AuthorizeURL:    s.server.URL + "/oauth/authorize",
		AccessTokenURL:  s.server.URL + "/oauth/access_token",
		APIBaseURL:      s.server.URL,
		TimelineCount:   5,
		Timeout:         5 * time.Second,
	})
}

func TestNewTwitterProvider_AppliesDefaults(t *testing.T) {
	p := NewTwitterProvider(TwitterConfig{ConsumerKey: "ck", ConsumerSecret: "cs"})

	if p.config.RequestTokenURL != defaultTwitterRequestTokenURL {
		t.Errorf("RequestTokenURL = %q", p.config.RequestTokenURL)
	}
	if p.config.AuthorizeURL != defaultTwitterAuthorizeURL {
		t.Errorf("AuthorizeURL = %q", p.config.AuthorizeURL)
	}
	if p.config.AccessTokenURL != defaultTwitterAccessTokenURL {
		t.Errorf("AccessTokenURL = %q", p.config.AccessTokenURL)
	}
	if p.config.APIBaseURL != defaultTwitterAPIBaseURL {
		t.Errorf("APIBaseURL = %q", p.config.APIBaseURL)
	}
	if p.config.TimelineCount != defaultTimelineCount {
		t.Errorf("TimelineCount = %d", p.config.TimelineCount)
	}
	if p.config.Timeout != defaultProviderTimeout {
		t.Errorf("Timeout = %v", p.config.Timeout)
	}
}

func TestTwitterProvider_BeginAuthorization_ReturnsTokenAndAuthorizeURL(t *testing.T) {
	stub := newOAuthStub(t)
	p := stub.provider()

	rt, authorizeURL, err := p.BeginAuthorization(context.Background())
	if err != nil {
		t.Fatalf("BeginAuthorization() error = %v", err)
	}
	if rt.Token != "RT1" || rt.Secret != "RS1" {
		t.Errorf("request token = %+v, want RT1/RS1", rt)
	}

	u, err := url.Parse(authorizeURL)
	if err != nil {
		t.Fatalf("invalid authorize URL %q: %v", authorizeURL, err)
	}
	stubURL, _ := url.Parse(stub.server.URL)
	if u.Host != stubURL.Host {
		t.Errorf("authorize host = %q, want %q", u.Host, stubURL.Host)
	}
	if u.Query().Get("oauth_token") != "RT1" {
		t.Errorf("authorize URL should carry oauth_token=RT1, got %q", authorizeURL)
	}
}

func TestTwitterProvider_BeginAuthorization_ProviderRejects(t *testing.T) {
	stub := newOAuthStub(t)
	p := NewTwitterProvider(TwitterConfig{
		ConsumerKey:     "wrong",
		ConsumerSecret:  "cs",
		RequestTokenURL: stub.server.URL + "/oauth/request_token",
		AuthorizeURL:    stub.server.URL + "/oauth/authorize",
		AccessTokenURL:  stub.server.URL + "/oauth/access_token",
	})

	if _, _, err := p.BeginAuthorization(context.Background()); err == nil {
		t.Fatal("expected error for rejected consumer")
	}
}

func TestTwitterProvider_BeginAuthorization_CanceledContext(t *testing.T) {
	stub := newOAuthStub(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := stub.provider().BeginAuthorization(ctx); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestTwitterProvider_CompleteAuthorization_ReturnsGrant(t *testing.T) {
	stub := newOAuthStub(t)
	p := stub.provider()

	grant, err := p.CompleteAuthorization(context.Background(), &RequestToken{Token: "RT1", Secret: "RS1"}, "V1")
	if err != nil {
		t.Fatalf("CompleteAuthorization() error = %v", err)
	}
	if grant.Token != "tok" || grant.Secret != "sec" {
		t.Errorf("grant token = %q/%q, want tok/sec", grant.Token, grant.Secret)
	}
	if grant.ScreenName != "bob" {
		t.Errorf("ScreenName = %q, want bob", grant.ScreenName)
	}
	if grant.UserID != "42" {
		t.Errorf("UserID = %q, want 42", grant.UserID)
	}
}

func TestTwitterProvider_CompleteAuthorization_WrongVerifier(t *testing.T) {
	stub := newOAuthStub(t)
	p := stub.provider()

	_, err := p.CompleteAuthorization(context.Background(), &RequestToken{Token: "RT1", Secret: "RS1"}, "WRONG")
	if err == nil {
		t.Fatal("expected error for wrong verifier")
	}
}

func TestTwitterProvider_FetchTimeline_ParsesPosts(t *testing.T) {
	stub := newOAuthStub(t)
	stub.timelineBody = `[
		{"id_str":"100","full_text":"hello <b>world</b>","text":"short","created_at":"Wed Oct 10 20:19:24 +0000 2018","user":{"screen_name":"bob"}},
		{"id_str":"101","text":"only text","created_at":"not a date","user":{"screen_name":"bob"}}
	]`
	p := stub.provider()

	posts, err := p.FetchTimeline(context.Background(), Credentials{Token: "tok", Secret: "sec"})
	if err != nil {
		t.Fatalf("FetchTimeline() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len(posts) = %d, want 2", len(posts))
	}

	if posts[0].ID != "100" || posts[0].Text != "hello <b>world</b>" {
		t.Errorf("posts[0] = %+v, want full_text preferred", posts[0])
	}
	want := time.Date(2018, time.October, 10, 20, 19, 24, 0, time.UTC)
	if !posts[0].CreatedAt.Equal(want) {
		t.Errorf("posts[0].CreatedAt = %v, want %v", posts[0].CreatedAt, want)
	}
	if posts[0].AuthorScreenName != "bob" {
		t.Errorf("AuthorScreenName = %q, want bob", posts[0].AuthorScreenName)
	}

	if posts[1].Text != "only text" {
		t.Errorf("posts[1].Text = %q, want fallback to text", posts[1].Text)
	}
	if !posts[1].CreatedAt.IsZero() {
		t.Errorf("posts[1].CreatedAt = %v, want zero for unparsable date", posts[1].CreatedAt)
	}

	if stub.lastTimelineQS.Get("count") != "5" {
		t.Errorf("count = %q, want 5", stub.lastTimelineQS.Get("count"))
	}
	if stub.lastTimelineQS.Get("tweet_mode") != "extended" {
		t.Errorf("tweet_mode = %q, want extended", stub.lastTimelineQS.Get("tweet_mode"))
	}
	if !strings.Contains(stub.lastTimelineAH, `oauth_token="tok"`) {
		t.Errorf("timeline request should be signed with the user token, Authorization = %q", stub.lastTimelineAH)
	}
}

func TestTwitterProvider_FetchTimeline_ErrorStatus(t *testing.T) {
	stub := newOAuthStub(t)
	stub.timelineStatus = http.StatusUnauthorized
	stub.timelineBody = `{"errors":[{"code":89,"message":"Invalid or expired token."}]}`

	_, err := stub.provider().FetchTimeline(context.Background(), Credentials{Token: "tok", Secret: "sec"})
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error %q should mention status code", err.Error())
	}
}

func TestTwitterProvider_FetchTimeline_InvalidJSON(t *testing.T) {
	stub := newOAuthStub(t)
	stub.timelineBody = `{not json`

	if _, err := stub.provider().FetchTimeline(context.Background(), Credentials{Token: "tok", Secret: "sec"}); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
