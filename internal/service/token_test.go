package service

import (
	"testing"
	"time"

	"github.com/receitas-next/internal/config"
)

func TestTokenTTLDefaults(t *testing.T) {
	if got := tokenTTL(config.JWTConfig{}); got != defaultTokenTTL {
		t.Fatalf("expected default ttl, got %s", got)
	}
	if got := tokenTTL(config.JWTConfig{ExpireHours: 2}); got != 2*time.Hour {
		t.Fatalf("expected 2h, got %s", got)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	claims := UserJWTClaims{UserID: 9, RegisteredClaims: newRegisteredClaims(time.Now(), time.Hour)}
	raw, expiresAt, err := signToken("secret-a", claims)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %s", expiresAt)
	}

	parsed := &UserJWTClaims{}
	if err := parseToken(raw, "secret-a", parsed); err != nil || parsed.UserID != 9 {
		t.Fatalf("parse failed: %+v err=%v", parsed, err)
	}
	if err := parseToken(raw, "secret-b", &UserJWTClaims{}); err == nil {
		t.Fatalf("expected signature error")
	}
}
