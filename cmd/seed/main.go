package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/provider"
	"github.com/receitas-next/internal/service"

	"github.com/shopspring/decimal"
)

// seedPayment 演示用的已确认支付
type seedPayment struct {
	gateway string
	payer   string
	amount  string
	paidAgo time.Duration
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 种子数据不走队列与事件广播
	cfg.Queue.Enabled = false
	cfg.Events.Enabled = false
	container := provider.NewContainer(cfg)
	defer container.Close()

	affiliate := registerUser(container, stdLog.Fatalf, service.UserRegisterInput{
		Nome:  "Afiliada Demo",
		Email: "afiliada@receitas.local",
		Senha: "demo12345",
	})
	referred := make(map[string]*models.Usuario)
	for _, email := range []string{"cliente1@receitas.local", "cliente2@receitas.local", "cliente3@receitas.local"} {
		referred[email] = registerUser(container, stdLog.Fatalf, service.UserRegisterInput{
			Email:           email,
			Senha:           "demo12345",
			CodigoIndicacao: affiliate.CodigoIndicacao,
		})
	}

	payments := []seedPayment{
		{gateway: constants.PaymentFlowStripe, payer: "cliente1@receitas.local", amount: "29.90", paidAgo: 20 * 24 * time.Hour},
		{gateway: constants.PaymentFlowStripe, payer: "cliente2@receitas.local", amount: "29.90", paidAgo: 2 * 24 * time.Hour},
		{gateway: constants.PaymentFlowMercadoPago, payer: "cliente3@receitas.local", amount: "29.90", paidAgo: 50 * 24 * time.Hour},
		{gateway: constants.PaymentFlowAsaas, payer: "cliente1@receitas.local", amount: "29.90", paidAgo: 10 * 24 * time.Hour},
	}
	ctx := context.Background()
	for i, item := range payments {
		payer := referred[item.payer]
		paidAt := time.Now().Add(-item.paidAgo)
		result, err := container.CommissionService.AccrueFromPayment(ctx, service.PaymentConfirmation{
			Gateway:          item.gateway,
			GatewayPaymentID: fmt.Sprintf("seed_%s_%d", item.gateway, i+1),
			PayerUserID:      payer.ID,
			Amount:           decimal.RequireFromString(item.amount),
			Currency:         "BRL",
			Method:           "seed",
			PaidAt:           &paidAt,
		})
		if err != nil {
			stdLog.Fatalf("Failed to accrue seed payment %d: %v", i+1, err)
		}
		if result.Duplicate {
			stdLog.Printf("Seed payment %d already recorded, skipped", i+1)
		}
	}

	matured, err := container.CommissionService.MatureDueCommissions(ctx, time.Now())
	if err != nil {
		stdLog.Fatalf("Failed to mature seed commissions: %v", err)
	}

	stdLog.Printf("Seed completed: affiliate=%s referral_code=%s payments=%d matured=%d",
		affiliate.Email, affiliate.CodigoIndicacao, len(payments), matured)
}

func registerUser(container *provider.Container, fatalf func(string, ...interface{}), input service.UserRegisterInput) *models.Usuario {
	user, _, _, err := container.UserAuthService.Register(input)
	if err == nil {
		return user
	}
	if !errors.Is(err, service.ErrEmailExists) {
		fatalf("Failed to register %s: %v", input.Email, err)
	}
	existing, err := container.UserRepo.GetByEmail(input.Email)
	if err != nil || existing == nil {
		fatalf("Failed to load existing user %s: %v", input.Email, err)
	}
	return existing
}
