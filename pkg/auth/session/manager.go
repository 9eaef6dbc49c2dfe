package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/almahra/storefront/pkg/auth"
)

var ErrInvalidAccessToken = errors.New("invalid access token")

// Manager holds the shopper's backend credentials for the lifetime of the process.
// It satisfies cartapi.TokenStore and the cart store's auth status check.
type Manager struct {
	mu      sync.RWMutex
	access  string
	refresh string
	claims  *auth.AccessTokenClaims
	now     func() time.Time
}

// NewManager returns a signed-out session.
func NewManager() *Manager {
	return &Manager{now: time.Now}
}

// SignIn stores the token pair issued by the backend login endpoint.
func (m *Manager) SignIn(accessToken, refreshToken string) error {
	claims, err := auth.ParseAccessTokenUnverified(accessToken)
	if err != nil {
		return errors.Join(ErrInvalidAccessToken, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = strings.TrimSpace(accessToken)
	m.refresh = strings.TrimSpace(refreshToken)
	m.claims = claims
	return nil
}

// SignOut forgets both tokens.
func (m *Manager) SignOut() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = ""
	m.refresh = ""
	m.claims = nil
}

// Authenticated is true while the access token is live or can still be refreshed.
func (m *Manager) Authenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.access == "" {
		return false
	}
	if m.refresh != "" {
		return true
	}
	return !auth.Expired(m.claims, m.now())
}

// UserID returns the subject of the current access token.
func (m *Manager) UserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.claims.UserID()
}

func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access
}

func (m *Manager) RefreshToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh
}

// UpdateAccessToken swaps in a refreshed access token and keeps the refresh token.
func (m *Manager) UpdateAccessToken(token string) error {
	claims, err := auth.ParseAccessTokenUnverified(token)
	if err != nil {
		return errors.Join(ErrInvalidAccessToken, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refresh == "" && m.access == "" {
		return errors.New("no active session to refresh")
	}
	m.access = strings.TrimSpace(token)
	m.claims = claims
	return nil
}
