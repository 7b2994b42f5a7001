package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/receitas-next/internal/cache"
	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"
	"github.com/receitas-next/internal/http/response"
	"github.com/receitas-next/internal/i18n"
	"github.com/receitas-next/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// 读取限流字段时最多缓冲的请求体字节数
const rateLimitPeekLimit = 64 << 10

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Scope    string
	Window   time.Duration
	Limit    int
	FailOpen bool // Redis 异常时放行而非拒绝
}

func newRateLimitRule(scope string, cfg config.RateLimitConfig) RateLimitRule {
	return RateLimitRule{
		Scope:  scope,
		Window: time.Duration(cfg.WindowSeconds) * time.Second,
		Limit:  cfg.MaxAttempts,
	}
}

func (r RateLimitRule) active() bool {
	return r.Window >= time.Second && r.Limit > 0
}

// RateLimitMiddleware 按规则计数，超限返回 429 并带 Retry-After；client 为 nil 时不限流
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.active() {
			c.Next()
			return
		}
		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := cache.Key("rate", rule.Scope, subject)

		hits, retryAfter, err := hitWindow(c.Request.Context(), client, key, rule.Window)
		if err != nil {
			logger.Warnw("rate_limit_unavailable", "scope", rule.Scope, "error", err, "fail_open", rule.FailOpen)
			if rule.FailOpen {
				c.Next()
				return
			}
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if hits <= int64(rule.Limit) {
			c.Next()
			return
		}

		seconds := max(int(retryAfter.Round(time.Second)/time.Second), 1)
		logger.Infow("rate_limit_exceeded", "scope", rule.Scope, "subject", subject, "hits", hits, "retry_after", seconds)
		c.Header("Retry-After", strconv.Itoa(seconds))
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), "error.rate_limited", seconds))
		c.Abort()
	}
}

// hitWindow 计数加一并返回窗口剩余时长；键无过期时间时补设窗口
func hitWindow(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining < 0 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, err
		}
		remaining = window
	}
	return incr.Val(), remaining, nil
}

// KeyByIP 按客户端 IP
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 按 JSON 字段与 IP 组合，字段缺失时只用 IP
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(peekJSONString(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// KeyByUserID 按登录用户，须挂在用户鉴权之后
func KeyByUserID(c *gin.Context) string {
	if uid := c.GetUint(constants.ContextKeyUserID); uid != 0 {
		return "user:" + strconv.FormatUint(uint64(uid), 10)
	}
	return c.ClientIP()
}

// peekJSONString 读取顶层字符串字段，并把请求体还原给后续 handler
func peekJSONString(c *gin.Context, field string) string {
	if c.Request == nil || c.Request.Body == nil {
		return ""
	}
	head, err := io.ReadAll(io.LimitReader(c.Request.Body, rateLimitPeekLimit))
	if err != nil {
		return ""
	}
	c.Request.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(head), c.Request.Body), Closer: c.Request.Body}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(head, &payload); err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(payload[field], &value); err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

type readCloser struct {
	io.Reader
	io.Closer
}
