package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	referralCodeLength      = 8
	referralCodeMaxAttempts = 5
	userNameMaxLength       = 120
)

// UserRegisterInput 用户注册输入
type UserRegisterInput struct {
	Nome            string
	Email           string
	Senha           string
	CodigoIndicacao string
}

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository) *UserAuthService {
	return &UserAuthService{
		cfg:      cfg,
		userRepo: userRepo,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateUserJWT 签发用户令牌
func (s *UserAuthService) GenerateUserJWT(user *models.Usuario) (string, time.Time, error) {
	claims := UserJWTClaims{
		UserID:           user.ID,
		Email:            user.Email,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: newRegisteredClaims(time.Now(), tokenTTL(s.cfg.UserJWT)),
	}
	return signToken(s.cfg.UserJWT.SecretKey, claims)
}

func (s *UserAuthService) ParseUserJWT(raw string) (*UserJWTClaims, error) {
	claims := &UserJWTClaims{}
	if err := parseToken(raw, s.cfg.UserJWT.SecretKey, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Register 用户注册，推荐码有效时记录推荐人
func (s *UserAuthService) Register(input UserRegisterInput) (*models.Usuario, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security, input.Senha); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	var referrerID *uint
	if code := strings.ToUpper(strings.TrimSpace(input.CodigoIndicacao)); code != "" {
		referrer, err := s.userRepo.GetByReferralCode(code)
		if err != nil {
			return nil, "", time.Time{}, err
		}
		if referrer == nil || referrer.Status != constants.UserStatusActive {
			return nil, "", time.Time{}, ErrReferralCodeInvalid
		}
		id := referrer.ID
		referrerID = &id
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Senha), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user := &models.Usuario{
		Nome:        resolveUserName(input.Nome, normalized),
		Email:       normalized,
		SenhaHash:   string(hashedPassword),
		Status:      constants.UserStatusActive,
		IDIndicador: referrerID,
		LastLoginAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.createWithReferralCode(user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, "", time.Time{}, ErrEmailExists
		}
		return nil, "", time.Time{}, err
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	s.cacheAuthState(user)
	logger.Infow("user_registered", "user_id", user.ID, "referrer_id", referrerID)
	return user, token, expiresAt, nil
}

// createWithReferralCode 生成推荐码并写入，推荐码冲突时重试
func (s *UserAuthService) createWithReferralCode(user *models.Usuario) error {
	var lastErr error
	for attempt := 0; attempt < referralCodeMaxAttempts; attempt++ {
		user.CodigoIndicacao = generateReferralCode()
		exist, err := s.userRepo.GetByReferralCode(user.CodigoIndicacao)
		if err != nil {
			return err
		}
		if exist != nil {
			continue
		}
		lastErr = s.userRepo.Create(user)
		if lastErr == nil {
			return nil
		}
		if !repository.IsUniqueViolation(lastErr) {
			return lastErr
		}
		existing, err := s.userRepo.GetByEmail(user.Email)
		if err != nil {
			return err
		}
		if existing != nil {
			return lastErr
		}
		user.ID = 0
	}
	if lastErr == nil {
		lastErr = errors.New("referral code exhausted")
	}
	return lastErr
}

// Login 用户登录
func (s *UserAuthService) Login(email, password string) (*models.Usuario, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.SenhaHash), []byte(password)); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, "", time.Time{}, err
	}
	s.cacheAuthState(user)
	return user, token, expiresAt, nil
}

// GetUserByID 获取用户
func (s *UserAuthService) GetUserByID(id uint) (*models.Usuario, error) {
	return s.userRepo.GetByID(id)
}

func (s *UserAuthService) cacheAuthState(user *models.Usuario) {
	if err := cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveUserName(raw, email string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		} else {
			name = email
		}
	}
	if runes := []rune(name); len(runes) > userNameMaxLength {
		name = string(runes[:userNameMaxLength])
	}
	return name
}

func generateReferralCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:referralCodeLength])
}
