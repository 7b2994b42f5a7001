package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/receitas-next/internal/config"
	"github.com/receitas-next/internal/constants"

	"github.com/gin-gonic/gin"
)

func TestKeyByIPAndJSONFieldRestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":" Ana@Receitas.com ","senha":"x"}`))
	c.Request.RemoteAddr = "10.0.0.8:4431"

	if key := KeyByIPAndJSONField("email")(c); key != "ana@receitas.com|10.0.0.8" {
		t.Fatalf("unexpected key: %s", key)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		t.Fatalf("read restored body failed: %v", err)
	}
	if !strings.Contains(string(body), `"senha":"x"`) {
		t.Fatalf("body not restored: %s", body)
	}
}

func TestKeyByIPAndJSONFieldFallsBackToIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, raw := range []string{`not json`, `{"email":42}`, `{}`} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(raw))
		c.Request.RemoteAddr = "10.0.0.9:1000"
		if key := KeyByIPAndJSONField("email")(c); key != "10.0.0.9" {
			t.Fatalf("body %q: expected ip fallback, got %s", raw, key)
		}
	}
}

func TestKeyByUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/user/withdrawals/request", nil)
	c.Request.RemoteAddr = "10.0.0.10:1000"
	if key := KeyByUserID(c); key != "10.0.0.10" {
		t.Fatalf("anonymous request should use ip, got %s", key)
	}
	c.Set(constants.ContextKeyUserID, uint(31))
	if key := KeyByUserID(c); key != "user:31" {
		t.Fatalf("unexpected user key: %s", key)
	}
}

func TestRateLimitMiddlewarePassesWithoutRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	rule := newRateLimitRule("withdraw", config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 1})
	r.Use(RateLimitMiddleware(nil, rule, KeyByIP))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if w.Code != http.StatusOK || w.Body.String() != "pong" {
			t.Fatalf("request %d: want 200 pong, got %d %s", i, w.Code, w.Body.String())
		}
	}
}

func TestRateLimitRuleActive(t *testing.T) {
	rule := newRateLimitRule("login", config.RateLimitConfig{WindowSeconds: 300, MaxAttempts: 5})
	if !rule.active() || rule.Window != 5*time.Minute || rule.Scope != "login" {
		t.Fatalf("unexpected rule: %+v", rule)
	}
	if newRateLimitRule("login", config.RateLimitConfig{}).active() {
		t.Fatalf("zero config should disable the rule")
	}
}
