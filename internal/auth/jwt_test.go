package auth

import (
	"strings"
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), time.Minute)

	token, expires, err := mgr.GenerateAccessToken("user-1", "USER")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expected future expiry, got %v", expires)
	}

	claims, err := mgr.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "USER" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsForeignSecretAndExpiredToken(t *testing.T) {
	mgr := NewJWTManager(strings.Repeat("k", 32), time.Minute)
	other := NewJWTManager(strings.Repeat("x", 32), time.Minute)

	token, _, err := other.GenerateAccessToken("user-1", "ADMIN")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ParseAndValidate(token); err == nil {
		t.Fatal("expected signature failure")
	}

	expired := NewJWTManager(strings.Repeat("k", 32), time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, err := expired.GenerateAccessToken("user-1", "ADMIN")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.ParseAndValidate(old); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
