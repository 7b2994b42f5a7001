package provider

import (
	"strings"
	"time"

	"github.com/receitas-next/internal/authz"
	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/events"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/models"
	"github.com/receitas-next/internal/payment"
	"github.com/receitas-next/internal/payment/asaas"
	"github.com/receitas-next/internal/payment/mercadopago"
	"github.com/receitas-next/internal/payment/stripe"
	"github.com/receitas-next/internal/queue"
	"github.com/receitas-next/internal/repository"
	"github.com/receitas-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Publisher   events.Publisher
	Gateways    *payment.Registry

	// Repositories
	AdminRepo        repository.AdminRepository
	UserRepo         repository.UserRepository
	SettingRepo      repository.SettingRepository
	NotificationRepo repository.NotificationRepository
	LedgerRepo       repository.LedgerRepository
	AuditLogRepo     repository.AdminAuditLogRepository

	// Services
	AuthzService          *authz.Service
	AuthService           *service.AuthService
	AdminAuditService     *service.AdminAuditService
	UserAuthService       *service.UserAuthService
	SettingService        *service.SettingService
	NotificationService   *service.NotificationService
	CommissionService     *service.CommissionService
	WithdrawalService     *service.WithdrawalService
	BalanceService        *service.BalanceService
	PaymentWebhookService *service.PaymentWebhookService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Publisher:   newPublisher(cfg.Events),
		Gateways:    newGatewayRegistry(cfg.Gateways),
	}

	c.initRepositories()
	c.initServices()

	return c
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil {
			logger.Warnw("provider_close_publisher_failed", "error", err)
		}
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.UserRepo = repository.NewUserRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
	c.NotificationRepo = repository.NewNotificationRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db, ledgerOptions(c.Config.Database))
	c.AuditLogRepo = repository.NewAdminAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.SettingService = service.NewSettingService(c.SettingRepo, c.Config.Ledger)
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AdminAuditService = service.NewAdminAuditService(c.AuditLogRepo)
	c.UserAuthService = service.NewUserAuthService(c.Config, c.UserRepo)
	c.NotificationService = service.NewNotificationService(c.NotificationRepo, c.QueueClient)
	c.CommissionService = service.NewCommissionService(c.LedgerRepo, c.SettingService, c.NotificationService, c.Publisher)
	c.WithdrawalService = service.NewWithdrawalService(c.LedgerRepo, c.SettingService, c.NotificationService, c.Publisher)
	c.BalanceService = service.NewBalanceService(c.LedgerRepo, c.NotificationService, c.Publisher)
	c.PaymentWebhookService = service.NewPaymentWebhookService(c.Gateways, c.CommissionService)
}

func ledgerOptions(cfg config.DatabaseConfig) repository.LedgerOptions {
	return repository.LedgerOptions{
		LockTimeout: time.Duration(cfg.LockTimeoutMS) * time.Millisecond,
		TxTimeout:   time.Duration(cfg.TxTimeoutSeconds) * time.Second,
	}
}

func newPublisher(cfg config.EventsConfig) events.Publisher {
	if !cfg.Enabled {
		return events.NoopPublisher{}
	}
	logger.Infow("provider_events_enabled", "exchange", cfg.Exchange)
	return events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
}

// newGatewayRegistry 只注册已启用的网关，未注册的回调路径返回 404
func newGatewayRegistry(cfg config.GatewayConfig) *payment.Registry {
	gateways := make([]payment.Gateway, 0, 3)
	if cfg.Stripe.Enabled {
		gateways = append(gateways, stripe.New(stripe.Config{
			WebhookSecret:           cfg.Stripe.WebhookSecret,
			WebhookToleranceSeconds: cfg.Stripe.WebhookToleranceSeconds,
		}))
	}
	if cfg.MercadoPago.Enabled {
		gateways = append(gateways, mercadopago.New(mercadopago.Config{
			AccessToken:   cfg.MercadoPago.AccessToken,
			WebhookSecret: cfg.MercadoPago.WebhookSecret,
			APIBaseURL:    cfg.MercadoPago.APIBaseURL,
			Timeout:       time.Duration(cfg.MercadoPago.TimeoutSeconds) * time.Second,
		}, nil))
	}
	if cfg.Asaas.Enabled && strings.TrimSpace(cfg.Asaas.WebhookToken) == "" {
		logger.Warnw("provider_asaas_disabled_missing_token")
	} else if cfg.Asaas.Enabled {
		gateways = append(gateways, asaas.New(asaas.Config{
			WebhookToken: cfg.Asaas.WebhookToken,
		}))
	}
	return payment.NewRegistry(gateways...)
}
