package repository

import (
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/models"

	"github.com/shopspring/decimal"
)

// RecomputeUserBalances 由佣金记录重算用户余额缓存（唯一写余额列的入口）
func (r *GormLedgerRepository) RecomputeUserBalances(userID uint) (*BalanceSnapshot, error) {
	snapshot := &BalanceSnapshot{Pending: decimal.Zero, Available: decimal.Zero}
	if userID == 0 {
		return snapshot, nil
	}

	var rows []struct {
		Status string          `gorm:"column:status"`
		Total  decimal.Decimal `gorm:"column:total"`
	}
	err := r.db.Model(&models.Comissao{}).
		Select("status, COALESCE(SUM(valor), 0) AS total").
		Where("id_afiliado = ? AND status IN ?", userID, []string{
			constants.CommissionStatusPending,
			constants.CommissionStatusAvailable,
		}).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		switch row.Status {
		case constants.CommissionStatusPending:
			snapshot.Pending = row.Total.Round(2)
		case constants.CommissionStatusAvailable:
			snapshot.Available = row.Total.Round(2)
		}
	}

	err = r.db.Model(&models.Usuario{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"saldo_pendente":   models.NewMoneyFromDecimal(snapshot.Pending),
			"saldo_disponivel": models.NewMoneyFromDecimal(snapshot.Available),
			"saldo":            models.NewMoneyFromDecimal(snapshot.Total()),
		}).Error
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}
