package helpers

import (
	"testing"
	"time"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	m := newTestJWT()
	token, exp, err := m.GenerateAccessToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.SessionID != "session-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	m := newTestJWT()
	access, _, err := m.GenerateAccessToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseRefreshToken(access); err == nil {
		t.Fatal("access token must not parse as refresh token")
	}

	refresh, _, err := m.GenerateRefreshToken("user-1", "session-1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not parse as access token")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, time.Hour)
	token, _, err := m.GenerateAccessToken("user-1", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := m.ParseAccessToken(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}
