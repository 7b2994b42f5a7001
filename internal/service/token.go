package service

import (
	"errors"
	"time"

	"github.com/receitas-next/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTokenTTL = 24 * time.Hour

var errInvalidToken = errors.New("无效的 token")

func tokenTTL(cfg config.JWTConfig) time.Duration {
	if cfg.ExpireHours <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(cfg.ExpireHours) * time.Hour
}

func newRegisteredClaims(now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
}

// signToken HS256 签名，返回 token 与过期时间
func signToken(secret string, claims jwt.Claims) (string, time.Time, error) {
	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return "", time.Time{}, errInvalidToken
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt.Time, nil
}

// parseToken 只接受 HS256，claims 由调用方传入指针
func parseToken(raw, secret string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return errInvalidToken
	}
	return nil
}
