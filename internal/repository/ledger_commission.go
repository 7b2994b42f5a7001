package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetPaymentByGatewayID 按网关支付ID查询（幂等判断）
func (r *GormLedgerRepository) GetPaymentByGatewayID(gatewayPaymentID string) (*models.Pagamento, error) {
	gatewayPaymentID = strings.TrimSpace(gatewayPaymentID)
	if gatewayPaymentID == "" {
		return nil, nil
	}
	var payment models.Pagamento
	if err := r.db.Where("id_pagamento_gateway = ?", gatewayPaymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// CreatePayment 写入支付记录
func (r *GormLedgerRepository) CreatePayment(payment *models.Pagamento) error {
	if payment == nil {
		return nil
	}
	return r.db.Create(payment).Error
}

// CreateCommission 写入佣金记录
func (r *GormLedgerRepository) CreateCommission(commission *models.Comissao) error {
	if commission == nil {
		return nil
	}
	return r.db.Create(commission).Error
}

// SumCommissions 汇总推广者某状态佣金
func (r *GormLedgerRepository) SumCommissions(affiliateID uint, status string) (decimal.Decimal, error) {
	if affiliateID == 0 || status == "" {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.Model(&models.Comissao{}).
		Where("id_afiliado = ? AND status = ?", affiliateID, status).
		Select("COALESCE(SUM(valor), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// ListCommissionsForUpdate 按 id 升序锁定推广者某状态的佣金（FIFO）
func (r *GormLedgerRepository) ListCommissionsForUpdate(affiliateID uint, status string) ([]models.Comissao, error) {
	if affiliateID == 0 || status == "" {
		return []models.Comissao{}, nil
	}
	query := r.locking().Where("id_afiliado = ? AND status = ?", affiliateID, status)
	if status == constants.CommissionStatusAvailable {
		query = query.Where("id_saque IS NULL")
	}
	var rows []models.Comissao
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListWithdrawalCommissionsForUpdate 锁定某提现占用的佣金
func (r *GormLedgerRepository) ListWithdrawalCommissionsForUpdate(withdrawalID uint) ([]models.Comissao, error) {
	if withdrawalID == 0 {
		return []models.Comissao{}, nil
	}
	var rows []models.Comissao
	if err := r.locking().
		Where("id_saque = ?", withdrawalID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateCommissions 批量更新佣金
func (r *GormLedgerRepository) UpdateCommissions(ids []uint, updates map[string]interface{}) error {
	if len(ids) == 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return r.db.Model(&models.Comissao{}).Where("id IN ?", ids).Updates(updates).Error
}

// SummarizeDueCommissions 按推广者汇总已到成熟时间的待成熟佣金
func (r *GormLedgerRepository) SummarizeDueCommissions(now time.Time) ([]AffiliateAmount, error) {
	var rows []AffiliateAmount
	err := r.db.Model(&models.Comissao{}).
		Select("id_afiliado, COALESCE(SUM(valor), 0) AS total, COUNT(*) AS qty").
		Where("status = ? AND data_liberacao <= ?", constants.CommissionStatusPending, now).
		Group("id_afiliado").
		Order("id_afiliado asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, nil
}

// MatureDueCommissions 集合更新：pending 且到期 -> available，affiliateIDs 非空时只处理已锁定的推广者
func (r *GormLedgerRepository) MatureDueCommissions(now time.Time, affiliateIDs []uint) (int64, error) {
	query := r.db.Model(&models.Comissao{}).
		Where("status = ? AND data_liberacao <= ?", constants.CommissionStatusPending, now)
	if len(affiliateIDs) > 0 {
		query = query.Where("id_afiliado IN ?", affiliateIDs)
	}
	result := query.
		Updates(map[string]interface{}{
			"status":          constants.CommissionStatusAvailable,
			"data_disponivel": now,
			"updated_at":      now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListCommissionsByAffiliate 推广者全部佣金（新到旧）
func (r *GormLedgerRepository) ListCommissionsByAffiliate(affiliateID uint) ([]models.Comissao, error) {
	rows := make([]models.Comissao, 0)
	if affiliateID == 0 {
		return rows, nil
	}
	if err := r.db.Where("id_afiliado = ?", affiliateID).Order("id desc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
