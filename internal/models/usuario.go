package models

import (
	"time"

	"gorm.io/gorm"
)

// Usuario 用户表（含佣金余额快照）
//
// saldo_pendente / saldo_disponivel / saldo 只是 comissoes 的物化缓存，
// 统一由 repository.RecomputeUserBalances 在同一事务中重算。
type Usuario struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                                                                  // 主键
	Nome               string         `gorm:"type:varchar(120);not null;default:''" json:"nome"`                                     // 姓名
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                                                     // 邮箱
	SenhaHash          string         `gorm:"column:senha_hash;not null" json:"-"`                                                   // 密码哈希
	Status             string         `gorm:"index;not null;default:'active'" json:"status"`                                         // 账号状态
	IDIndicador        *uint          `gorm:"column:id_indicador;index" json:"id_indicador"`                                         // 推荐人用户ID
	CodigoIndicacao    string         `gorm:"column:codigo_indicacao;uniqueIndex;size:32" json:"codigo_indicacao"`                   // 推荐码
	ChavePix           string         `gorm:"column:chave_pix;type:varchar(140)" json:"chave_pix"`                                   // 默认 PIX 收款键
	StripeAccountID    string         `gorm:"column:stripe_account_id;type:varchar(80)" json:"-"`                                    // Stripe Connect 账户
	Saldo              Money          `gorm:"type:decimal(20,2);not null;default:0" json:"saldo"`                                    // 总余额 = 待成熟 + 可提现
	SaldoPendente      Money          `gorm:"column:saldo_pendente;type:decimal(20,2);not null;default:0" json:"saldo_pendente"`     // 待成熟余额
	SaldoDisponivel    Money          `gorm:"column:saldo_disponivel;type:decimal(20,2);not null;default:0" json:"saldo_disponivel"` // 可提现余额
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                                                           // Token 版本
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                                                        // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                                                         // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                                               // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                                                               // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                                                        // 软删除时间
}

// TableName 指定表名
func (Usuario) TableName() string {
	return "usuarios"
}
