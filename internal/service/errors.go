package service

import (
	"errors"

	"github.com/receitas-next/internal/repository"
)

// 通用错误
var (
	ErrNotFound            = errors.New("not found")
	ErrLedgerBusy          = repository.ErrLedgerBusy
	ErrLedgerConfigInvalid = errors.New("ledger config invalid")
)

// 认证错误
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailExists         = errors.New("email already registered")
	ErrWeakPassword        = errors.New("weak password")
	ErrReferralCodeInvalid = errors.New("referral code invalid")
)

// 佣金与提现错误
var (
	ErrPayerNotFound                = errors.New("payer not found")
	ErrPaymentReferenceMissing      = errors.New("gateway payment id missing")
	ErrWithdrawalAmountInvalid      = errors.New("withdrawal amount invalid")
	ErrWithdrawalAmountBelowMinimum = errors.New("withdrawal amount below minimum")
	ErrWithdrawalDestinationMissing = errors.New("withdrawal destination missing")
	ErrInsufficientBalance          = errors.New("insufficient available balance")
	ErrAllocationConflict           = errors.New("commission allocation conflict")
	ErrWithdrawalAlreadyProcessed   = errors.New("withdrawal already processed")
	ErrWithdrawalDecisionInvalid    = errors.New("withdrawal decision invalid")
	ErrWithdrawalStatusInvalid      = errors.New("withdrawal status filter invalid")
	ErrReleaseAmountInvalid         = errors.New("release amount invalid")
	ErrInsufficientPendingBalance   = errors.New("insufficient pending balance")
)
