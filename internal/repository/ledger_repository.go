package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/receitas-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository 佣金账本数据访问接口
//
// 所有会修改余额的操作必须在 Transaction 内执行，并按
// 用户行（id 升序）-> 佣金行（id 升序）的顺序加锁。
type LedgerRepository interface {
	Transaction(ctx context.Context, fn func(tx LedgerRepository) error) error
	WithTx(tx *gorm.DB) LedgerRepository

	GetUserByID(id uint) (*models.Usuario, error)
	GetUserByEmail(email string) (*models.Usuario, error)
	LockUser(id uint) (*models.Usuario, error)
	LockUsers(ids []uint) ([]models.Usuario, error)
	RecomputeUserBalances(userID uint) (*BalanceSnapshot, error)

	GetPaymentByGatewayID(gatewayPaymentID string) (*models.Pagamento, error)
	CreatePayment(payment *models.Pagamento) error

	CreateCommission(commission *models.Comissao) error
	SumCommissions(affiliateID uint, status string) (decimal.Decimal, error)
	ListCommissionsForUpdate(affiliateID uint, status string) ([]models.Comissao, error)
	ListWithdrawalCommissionsForUpdate(withdrawalID uint) ([]models.Comissao, error)
	UpdateCommissions(ids []uint, updates map[string]interface{}) error
	SummarizeDueCommissions(now time.Time) ([]AffiliateAmount, error)
	MatureDueCommissions(now time.Time, affiliateIDs []uint) (int64, error)
	ListCommissionsByAffiliate(affiliateID uint) ([]models.Comissao, error)

	CreateWithdrawal(withdrawal *models.Saque) error
	GetWithdrawalByIDForUpdate(id uint) (*models.Saque, error)
	UpdateWithdrawal(withdrawal *models.Saque) error
	ListWithdrawalsByAffiliate(affiliateID uint) ([]models.Saque, error)
	ListWithdrawals(filter WithdrawalListFilter) ([]models.Saque, int64, error)
}

// LedgerOptions 账本事务参数
type LedgerOptions struct {
	LockTimeout time.Duration // 行锁等待上限（postgres lock_timeout）
	TxTimeout   time.Duration // 事务整体超时
}

// BalanceSnapshot 佣金余额快照
type BalanceSnapshot struct {
	Pending   decimal.Decimal
	Available decimal.Decimal
}

// Total 待成熟 + 可提现
func (b BalanceSnapshot) Total() decimal.Decimal {
	return b.Pending.Add(b.Available)
}

// AffiliateAmount 按推广者汇总的金额
type AffiliateAmount struct {
	AffiliateID uint            `gorm:"column:id_afiliado"`
	Total       decimal.Decimal `gorm:"column:total"`
	Count       int64           `gorm:"column:qty"`
}

// GormLedgerRepository GORM 实现
type GormLedgerRepository struct {
	db      *gorm.DB
	options LedgerOptions
}

// NewLedgerRepository 创建账本仓库
func NewLedgerRepository(db *gorm.DB, options LedgerOptions) *GormLedgerRepository {
	return &GormLedgerRepository{db: db, options: options}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx, options: r.options}
}

// Transaction 账本事务：超时控制、锁等待上限，任何错误整体回滚
func (r *GormLedgerRepository) Transaction(ctx context.Context, fn func(tx LedgerRepository) error) error {
	if fn == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if r.options.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.options.TxTimeout)
		defer cancel()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := applyLockTimeout(tx, r.options.LockTimeout); err != nil {
			return err
		}
		return fn(r.WithTx(tx))
	})
	return translateLedgerError(ctx, err)
}

func applyLockTimeout(tx *gorm.DB, timeout time.Duration) error {
	if tx == nil || timeout <= 0 || tx.Dialector == nil || tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec(fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())).Error
}

func (r *GormLedgerRepository) locking() *gorm.DB {
	return r.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetUserByID 按 ID 获取用户
func (r *GormLedgerRepository) GetUserByID(id uint) (*models.Usuario, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.Usuario
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail 按邮箱获取用户
func (r *GormLedgerRepository) GetUserByEmail(email string) (*models.Usuario, error) {
	if email == "" {
		return nil, nil
	}
	var user models.Usuario
	if err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// LockUser 锁定单个用户行
func (r *GormLedgerRepository) LockUser(id uint) (*models.Usuario, error) {
	if id == 0 {
		return nil, nil
	}
	var user models.Usuario
	if err := r.locking().Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// LockUsers 按 id 升序锁定多个用户行
func (r *GormLedgerRepository) LockUsers(ids []uint) ([]models.Usuario, error) {
	if len(ids) == 0 {
		return []models.Usuario{}, nil
	}
	var users []models.Usuario
	if err := r.locking().Where("id IN ?", ids).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
