package service

import (
	"context"
	"strings"
	"time"

	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// JWTClaims 后台管理员令牌
type JWTClaims struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// AuthService 后台管理员登录与令牌
type AuthService struct {
	cfg       *config.Config
	adminRepo repository.AdminRepository
}

func NewAuthService(cfg *config.Config, adminRepo repository.AdminRepository) *AuthService {
	return &AuthService{cfg: cfg, adminRepo: adminRepo}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// GenerateJWT 令牌携带 token_version，改密或禁用后旧令牌失效
func (s *AuthService) GenerateJWT(admin *models.Admin) (string, time.Time, error) {
	claims := JWTClaims{
		AdminID:          admin.ID,
		Username:         admin.Username,
		TokenVersion:     admin.TokenVersion,
		RegisteredClaims: newRegisteredClaims(time.Now(), tokenTTL(s.cfg.JWT)),
	}
	return signToken(s.cfg.JWT.SecretKey, claims)
}

func (s *AuthService) ParseJWT(raw string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	if err := parseToken(raw, s.cfg.JWT.SecretKey, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) GetAdminByID(id uint) (*models.Admin, error) {
	return s.adminRepo.GetByID(id)
}

// Login 校验用户名密码，签发令牌并刷新鉴权缓存
func (s *AuthService) Login(username, password string) (*models.Admin, string, time.Time, error) {
	admin, err := s.adminRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, "", time.Time{}, err
	}
	// 用户不存在与密码错误返回同一错误
	if admin == nil || s.VerifyPassword(admin.PasswordHash, password) != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateJWT(admin)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	loginAt := time.Now()
	if err := s.adminRepo.TouchLastLogin(admin.ID, loginAt); err != nil {
		return nil, "", time.Time{}, err
	}
	admin.LastLoginAt = &loginAt

	if err := cache.SetAdminAuthState(context.Background(), cache.BuildAdminAuthState(admin)); err != nil {
		logger.Warnw("admin_auth_state_cache_set_failed", "admin_id", admin.ID, "error", err)
	}
	return admin, token, expiresAt, nil
}
