package router

import (
	"sort"
	"strings"

	"github.com/receitas-next/internal/authz"
	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	adminhandlers "github.com/receitas-next/internal/http/handlers/admin"
	publichandlers "github.com/receitas-next/internal/http/handlers/public"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/logger"
	"github.com/receitas-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	loginRule := newRateLimitRule("login", cfg.Security.LoginRateLimit)
	adminLoginRule := newRateLimitRule("admin_login", cfg.Security.LoginRateLimit)
	withdrawRule := newRateLimitRule("withdraw", cfg.Security.WithdrawRateLimit)
	withdrawRule.FailOpen = true

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 支付网关回调，路径由网关后台配置，不走 /api/v1
	r.POST("/stripe-webhook", publicHandler.StripeWebhook)
	r.POST("/webhook", publicHandler.MercadoPagoWebhook)
	r.POST("/asaas-webhook", publicHandler.AsaasWebhook)

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需登录）
		user := apiV1.Group("")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserRepo))
		{
			user.POST("/withdrawals/request", RateLimitMiddleware(redisClient, withdrawRule, KeyByUserID), publicHandler.RequestWithdrawal)
			user.GET("/withdrawals", publicHandler.ListWithdrawals)
			user.GET("/commissions", publicHandler.GetCommissions)
			user.GET("/notifications", publicHandler.ListNotifications)
			user.POST("/notifications/read", publicHandler.MarkNotificationsRead)
		}

		admin := apiV1.Group("/admin")
		{
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			authorized := admin.Group("")
			authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			authorized.Use(AdminRBACMiddleware(c.AuthzService))
			{
				// 提现审核
				authorized.GET("/withdrawals", adminHandler.GetAdminWithdrawals)
				authorized.GET("/withdrawals/export", adminHandler.ExportAdminWithdrawals)
				authorized.POST("/withdrawals/:id/process", adminHandler.ProcessWithdrawal)

				// 余额与佣金
				authorized.POST("/release-balance", adminHandler.ReleaseBalance)
				authorized.POST("/users/:id/recompute-balance", adminHandler.RecomputeUserBalance)

				// 用户管理
				authorized.GET("/users", adminHandler.GetAdminUsers)
				authorized.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

				// 审计日志
				authorized.GET("/audit-logs", adminHandler.GetAdminAuditLogs)
				authorized.POST("/commissions/mature", adminHandler.TriggerCommissionMaturation)

				// 账本设置
				authorized.GET("/settings/ledger", adminHandler.GetLedgerSettings)
				authorized.PUT("/settings/ledger", adminHandler.UpdateLedgerSettings)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
