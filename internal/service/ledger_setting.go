package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"

	"github.com/shopspring/decimal"
)

const (
	ledgerMaturationDaysMin    = 0
	ledgerMaturationDaysMax    = 3650
	ledgerFlowKeyMaxLength     = 32
	ledgerSettingCacheKey      = "settings:ledger_config"
	ledgerSettingCacheTTL      = 5 * time.Minute
	ledgerDefaultCommission    = "9.90"
	ledgerDefaultMaturationDay = 15
)

var ledgerCommissionValueMax = decimal.NewFromInt(100000)

// LedgerSetting 佣金账本策略（运营可在线调整）
type LedgerSetting struct {
	CommissionValue   string         `json:"commission_value"`
	MaturationDays    map[string]int `json:"maturation_days"`
	MinWithdrawAmount string         `json:"min_withdraw_amount"`
}

// LedgerPolicy 解析后的策略，供账本计算使用
type LedgerPolicy struct {
	CommissionValue   decimal.Decimal
	MaturationDays    map[string]int
	MinWithdrawAmount decimal.Decimal
}

// MaturationDaysFor 返回某支付流程的成熟天数，未配置时使用 default
func (p LedgerPolicy) MaturationDaysFor(flow string) int {
	if days, ok := p.MaturationDays[strings.ToLower(strings.TrimSpace(flow))]; ok {
		return days
	}
	if days, ok := p.MaturationDays[constants.PaymentFlowDefault]; ok {
		return days
	}
	return ledgerDefaultMaturationDay
}

// ReleaseDate 计算佣金成熟时间
func (p LedgerPolicy) ReleaseDate(flow string, now time.Time) time.Time {
	return now.AddDate(0, 0, p.MaturationDaysFor(flow))
}

// LedgerDefaultSetting 由配置文件生成默认策略
func LedgerDefaultSetting(cfg config.LedgerConfig) LedgerSetting {
	days := make(map[string]int, len(cfg.MaturationDays))
	for flow, value := range cfg.MaturationDays {
		days[flow] = value
	}
	return NormalizeLedgerSetting(LedgerSetting{
		CommissionValue:   cfg.CommissionValue,
		MaturationDays:    days,
		MinWithdrawAmount: cfg.MinWithdrawAmount,
	})
}

// NormalizeLedgerSetting 归一化账本策略
func NormalizeLedgerSetting(setting LedgerSetting) LedgerSetting {
	setting.CommissionValue = normalizeLedgerAmount(setting.CommissionValue, ledgerDefaultCommission)
	setting.MinWithdrawAmount = normalizeLedgerAmount(setting.MinWithdrawAmount, "0.01")

	days := make(map[string]int, len(setting.MaturationDays)+1)
	for flow, value := range setting.MaturationDays {
		key := strings.ToLower(strings.TrimSpace(flow))
		if key == "" || len(key) > ledgerFlowKeyMaxLength {
			continue
		}
		if value < ledgerMaturationDaysMin {
			value = ledgerMaturationDaysMin
		}
		if value > ledgerMaturationDaysMax {
			value = ledgerMaturationDaysMax
		}
		days[key] = value
	}
	if _, ok := days[constants.PaymentFlowDefault]; !ok {
		days[constants.PaymentFlowDefault] = ledgerDefaultMaturationDay
	}
	setting.MaturationDays = days
	return setting
}

func normalizeLedgerAmount(raw, fallback string) string {
	parsed, err := models.ParseMoney(raw)
	if err != nil {
		return fallback
	}
	return parsed.String()
}

// ValidateLedgerSetting 校验账本策略（原始值校验，非法金额不会被默默替换）
func ValidateLedgerSetting(setting LedgerSetting) error {
	commission, err := models.ParseMoney(setting.CommissionValue)
	if err != nil || !commission.Decimal.IsPositive() {
		return fmt.Errorf("%w: 佣金金额必须大于 0", ErrLedgerConfigInvalid)
	}
	if commission.Decimal.GreaterThan(ledgerCommissionValueMax) {
		return fmt.Errorf("%w: 佣金金额过大", ErrLedgerConfigInvalid)
	}
	minWithdraw, err := models.ParseMoney(setting.MinWithdrawAmount)
	if err != nil || !minWithdraw.Decimal.IsPositive() {
		return fmt.Errorf("%w: 最低提现金额必须大于 0", ErrLedgerConfigInvalid)
	}
	for flow, days := range setting.MaturationDays {
		if strings.TrimSpace(flow) == "" {
			return fmt.Errorf("%w: 支付流程不能为空", ErrLedgerConfigInvalid)
		}
		if days < ledgerMaturationDaysMin || days > ledgerMaturationDaysMax {
			return fmt.Errorf("%w: %s 成熟天数必须在 0-3650 之间", ErrLedgerConfigInvalid, flow)
		}
	}
	return nil
}

// LedgerSettingToMap 转换为 settings 存储结构
func LedgerSettingToMap(setting LedgerSetting) map[string]interface{} {
	normalized := NormalizeLedgerSetting(setting)
	days := make(map[string]interface{}, len(normalized.MaturationDays))
	for flow, value := range normalized.MaturationDays {
		days[flow] = value
	}
	return map[string]interface{}{
		"commission_value":    normalized.CommissionValue,
		"maturation_days":     days,
		"min_withdraw_amount": normalized.MinWithdrawAmount,
	}
}

// ToPolicy 解析为计算用策略
func (s LedgerSetting) ToPolicy() LedgerPolicy {
	normalized := NormalizeLedgerSetting(s)
	return LedgerPolicy{
		CommissionValue:   decimal.RequireFromString(normalized.CommissionValue),
		MaturationDays:    normalized.MaturationDays,
		MinWithdrawAmount: decimal.RequireFromString(normalized.MinWithdrawAmount),
	}
}

// Flows 已配置的支付流程（排序）
func (s LedgerSetting) Flows() []string {
	flows := make([]string, 0, len(s.MaturationDays))
	for flow := range s.MaturationDays {
		flows = append(flows, flow)
	}
	sort.Strings(flows)
	return flows
}

func ledgerSettingFromJSON(raw models.JSON, fallback LedgerSetting) LedgerSetting {
	result := fallback
	if value, ok := raw["commission_value"]; ok {
		if text := normalizeSettingText(value); text != "" {
			result.CommissionValue = text
		}
	}
	if value, ok := raw["min_withdraw_amount"]; ok {
		if text := normalizeSettingText(value); text != "" {
			result.MinWithdrawAmount = text
		}
	}
	if value, ok := raw["maturation_days"].(map[string]interface{}); ok {
		days := make(map[string]int, len(fallback.MaturationDays)+len(value))
		for flow, v := range fallback.MaturationDays {
			days[flow] = v
		}
		for flow, v := range value {
			if parsed, err := parseSettingInt(v); err == nil {
				days[flow] = parsed
			}
		}
		result.MaturationDays = days
	}
	return NormalizeLedgerSetting(result)
}

// GetLedgerSetting 获取账本策略（Redis -> settings -> 配置文件默认值）
func (s *SettingService) GetLedgerSetting(ctx context.Context) (LedgerSetting, error) {
	fallback := LedgerDefaultSetting(config.LedgerConfig{})
	if s == nil {
		return fallback, nil
	}
	fallback = s.ledgerDefaults

	var cached LedgerSetting
	if hit, err := cache.GetJSON(ctx, ledgerSettingCacheKey, &cached); err == nil && hit {
		return NormalizeLedgerSetting(cached), nil
	} else if err != nil {
		logger.Warnw("ledger_setting_cache_get_failed", "error", err)
	}

	value, err := s.GetByKey(constants.SettingKeyLedgerConfig)
	if err != nil {
		return fallback, err
	}
	setting := fallback
	if value != nil {
		setting = ledgerSettingFromJSON(value, fallback)
	}
	if err := cache.SetJSON(ctx, ledgerSettingCacheKey, setting, ledgerSettingCacheTTL); err != nil {
		logger.Warnw("ledger_setting_cache_set_failed", "error", err)
	}
	return setting, nil
}

// GetLedgerPolicy 获取计算用策略
func (s *SettingService) GetLedgerPolicy(ctx context.Context) (LedgerPolicy, error) {
	setting, err := s.GetLedgerSetting(ctx)
	return setting.ToPolicy(), err
}

// UpdateLedgerSetting 更新账本策略
func (s *SettingService) UpdateLedgerSetting(ctx context.Context, setting LedgerSetting) (LedgerSetting, error) {
	if err := ValidateLedgerSetting(setting); err != nil {
		return s.ledgerDefaults, err
	}
	stored, err := s.Update(constants.SettingKeyLedgerConfig, LedgerSettingToMap(setting))
	if err != nil {
		return s.ledgerDefaults, err
	}
	if err := cache.Del(ctx, ledgerSettingCacheKey); err != nil {
		logger.Warnw("ledger_setting_cache_del_failed", "error", err)
	}
	return ledgerSettingFromJSON(stored, s.ledgerDefaults), nil
}
