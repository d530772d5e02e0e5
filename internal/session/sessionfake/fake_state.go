package sessionfake

import (
	"sync"

	"github.com/hitoshi/tweetlog/internal/session"
)

// FakeState はプロセス内で完結するsession.Stateのフェイク実装。
// ハンドラーのテストでCookieを介さずにセッション状態を与えるために使用する。
type FakeState struct {
	mu           sync.Mutex
	requestToken session.RequestToken
	userID       string

	Renewed   int
	Destroyed bool
	RenewErr  error
}

// NewFakeState はFakeStateを生成する。
func NewFakeState() *FakeState {
	return &FakeState{}
}

func (s *FakeState) RequestToken() (session.RequestToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestToken, s.requestToken.Token != ""
}

func (s *FakeState) SetRequestToken(rt session.RequestToken) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestToken = rt
}

func (s *FakeState) PopRequestToken() (session.RequestToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt := s.requestToken
	s.requestToken = session.RequestToken{}
	return rt, rt.Token != ""
}

func (s *FakeState) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

func (s *FakeState) SetUserID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = id
}

func (s *FakeState) RemoveUserID() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = ""
}

func (s *FakeState) Renew() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RenewErr != nil {
		return s.RenewErr
	}
	s.Renewed++
	return nil
}

func (s *FakeState) Destroy() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requestToken = session.RequestToken{}
	s.userID = ""
	s.Destroyed = true
	return nil
}

var _ session.State = (*FakeState)(nil)
