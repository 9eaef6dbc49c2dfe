package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/almahra/storefront/pkg/auth"
)

func mintToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.AccessTokenClaims{
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestManagerSignInAndOut(t *testing.T) {
	manager := NewManager()
	if manager.Authenticated() {
		t.Fatalf("new manager should be signed out")
	}

	access := mintToken(t, "42", time.Now().Add(time.Hour))
	if err := manager.SignIn(access, "refresh-token"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !manager.Authenticated() {
		t.Fatalf("expected authenticated session")
	}
	if manager.UserID() != "42" {
		t.Fatalf("unexpected user id %q", manager.UserID())
	}
	if manager.AccessToken() != access || manager.RefreshToken() != "refresh-token" {
		t.Fatalf("tokens not stored")
	}

	manager.SignOut()
	if manager.Authenticated() || manager.AccessToken() != "" || manager.UserID() != "" {
		t.Fatalf("sign out should clear the session")
	}
}

func TestManagerRejectsMalformedToken(t *testing.T) {
	manager := NewManager()
	err := manager.SignIn("garbage", "refresh")
	if !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}
	if manager.Authenticated() {
		t.Fatalf("failed sign in must not authenticate")
	}
}

func TestManagerExpiredWithoutRefreshIsSignedOut(t *testing.T) {
	now := time.Now()
	manager := NewManager()
	manager.now = func() time.Time { return now }

	if err := manager.SignIn(mintToken(t, "1", now.Add(-time.Minute)), ""); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if manager.Authenticated() {
		t.Fatalf("expired token without refresh should not authenticate")
	}
}

func TestManagerExpiredWithRefreshStaysAuthenticated(t *testing.T) {
	now := time.Now()
	manager := NewManager()
	manager.now = func() time.Time { return now }

	if err := manager.SignIn(mintToken(t, "1", now.Add(-time.Minute)), "refresh"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !manager.Authenticated() {
		t.Fatalf("refreshable session should stay authenticated")
	}
}

func TestManagerUpdateAccessToken(t *testing.T) {
	manager := NewManager()
	if err := manager.UpdateAccessToken(mintToken(t, "9", time.Now().Add(time.Hour))); err == nil {
		t.Fatalf("update without a session should fail")
	}

	if err := manager.SignIn(mintToken(t, "9", time.Now().Add(-time.Minute)), "refresh"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	fresh := mintToken(t, "9", time.Now().Add(time.Hour))
	if err := manager.UpdateAccessToken(fresh); err != nil {
		t.Fatalf("update access token: %v", err)
	}
	if manager.AccessToken() != fresh || manager.RefreshToken() != "refresh" {
		t.Fatalf("refresh should replace access token only")
	}
}
