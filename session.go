package givehub

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
)

// Session is a point-in-time copy of the client's credentials.
type Session struct {
	AccessToken  string `json:"accessToken,omitempty" yaml:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty" yaml:"refreshToken,omitempty"`
}

// Authenticated reports whether an access token is present.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}

// AccessTokenExpiry returns the exp claim of the access token when it is a
// JWT. The signature is not verified; the server remains the authority on
// whether the token is valid.
func (s Session) AccessTokenExpiry() (time.Time, bool) {
	if s.AccessToken == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(s.AccessToken, claims); err != nil {
		return time.Time{}, false
	}

	switch exp := claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0), true
	case int64:
		return time.Unix(exp, 0), true
	default:
		return time.Time{}, false
	}
}

// tokenStore is the only mutable state shared between requests.
type tokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

func (s *tokenStore) snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Session{AccessToken: s.access, RefreshToken: s.refresh}
}

func (s *tokenStore) accessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.access
}

func (s *tokenStore) refreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.refresh
}

func (s *tokenStore) set(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
	s.refresh = refresh
}

func (s *tokenStore) setAccess(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = access
}
