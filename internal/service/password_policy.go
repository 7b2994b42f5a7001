package service

import "github.com/receitas-next/internal/config"

// bcrypt 只使用前 72 字节
const passwordMaxBytes = 72

type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

func validatePassword(cfg config.SecurityConfig, password string) error {
	if cfg.PasswordMinLength > 0 && len([]rune(password)) < cfg.PasswordMinLength {
		return passwordPolicyError{key: "error.password_too_short", args: []interface{}{cfg.PasswordMinLength}}
	}
	if len(password) > passwordMaxBytes {
		return passwordPolicyError{key: "error.password_too_long", args: []interface{}{passwordMaxBytes}}
	}
	return nil
}
