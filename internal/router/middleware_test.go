package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/loanlead-next/internal/config"
	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func TestResolveAllowedOrigin(t *testing.T) {
	got := resolveAllowedOrigin("https://example.com", []string{"*"}, false)
	if got != "*" {
		t.Fatalf("wildcard without credentials should return *, got %s", got)
	}

	got = resolveAllowedOrigin("https://example.com", []string{"*"}, true)
	if got != "https://example.com" {
		t.Fatalf("wildcard with credentials should echo origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://a.example.com", []string{"https://a.example.com", "https://b.example.com"}, false)
	if got != "https://a.example.com" {
		t.Fatalf("allow-list should return matched origin, got %s", got)
	}

	got = resolveAllowedOrigin("https://x.example.com", []string{"https://a.example.com"}, false)
	if got != "" {
		t.Fatalf("unmatched origin should be empty, got %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": getRequestID(c)})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	if w.Header().Get(requestIDHeader) != "req-123" {
		t.Fatalf("response request id want req-123 got %s", w.Header().Get(requestIDHeader))
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp["request_id"] != "req-123" {
		t.Fatalf("context request id want req-123 got %s", resp["request_id"])
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/ping", nil)
	r.ServeHTTP(w2, req2)
	if strings.TrimSpace(w2.Header().Get(requestIDHeader)) == "" {
		t.Fatalf("generated request id should not be blank")
	}
}

func TestAdminJWTAuthMiddlewareMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AdminJWTAuthMiddleware("", nil))
	r.GET("/admin/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}

func newAuthMiddlewareEnv(t *testing.T) (repository.AdminRepository, *service.AuthService, *models.Admin) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_middleware_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.JWT.SecretKey = "middleware-test-secret-0123456789abcdef"
	cfg.JWT.ExpireHours = 1

	adminRepo := repository.NewAdminRepository(db)
	authService := service.NewAuthService(cfg, adminRepo)

	hash, err := authService.HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{Name: "admin", PasswordHash: hash, IsActive: true}
	if err := adminRepo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return adminRepo, authService, admin
}

func newAuthTestRouter(secretKey string, adminRepo repository.AdminRepository) *gin.Engine {
	r := gin.New()
	r.Use(AdminJWTAuthMiddleware(secretKey, adminRepo))
	r.GET("/admin/ping", func(c *gin.Context) {
		adminID, _ := c.Get("admin_id")
		c.JSON(http.StatusOK, gin.H{"admin_id": adminID})
	})
	return r
}

func TestAdminJWTAuthMiddlewareTokenSources(t *testing.T) {
	gin.SetMode(gin.TestMode)

	adminRepo, authService, admin := newAuthMiddlewareEnv(t)
	token, _, err := authService.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	r := newAuthTestRouter("middleware-test-secret-0123456789abcdef", adminRepo)

	readStatusCode := func(body []byte) int {
		var resp struct {
			StatusCode int `json:"status_code"`
		}
		_ = json.Unmarshal(body, &resp)
		return resp.StatusCode
	}

	// Cookie 携带有效 token
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: token})
	r.ServeHTTP(w, req)
	if readStatusCode(w.Body.Bytes()) == 401 {
		t.Fatalf("cookie token should pass, body: %s", w.Body.String())
	}

	// Bearer 头携带有效 token
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if readStatusCode(w.Body.Bytes()) == 401 {
		t.Fatalf("bearer token should pass, body: %s", w.Body.String())
	}

	// Cookie 优先于 Bearer：Cookie 无效时即使 Bearer 有效也拒绝
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: "garbage"})
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if readStatusCode(w.Body.Bytes()) != 401 {
		t.Fatalf("invalid cookie should take precedence over bearer, body: %s", w.Body.String())
	}

	// 无任何凭证
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	r.ServeHTTP(w, req)
	if readStatusCode(w.Body.Bytes()) != 401 {
		t.Fatalf("missing token should be rejected, body: %s", w.Body.String())
	}
}

func TestAdminJWTAuthMiddlewareDisabledAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	adminRepo, authService, admin := newAuthMiddlewareEnv(t)
	token, _, err := authService.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	admin.IsActive = false
	if err := adminRepo.Update(admin); err != nil {
		t.Fatalf("disable admin failed: %v", err)
	}

	r := newAuthTestRouter("middleware-test-secret-0123456789abcdef", adminRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: token})
	r.ServeHTTP(w, req)

	var resp struct {
		StatusCode int    `json:"status_code"`
		Msg        string `json:"msg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("disabled account want 401 got %d", resp.StatusCode)
	}
	if resp.Msg != "账号已被禁用" {
		t.Fatalf("msg want 账号已被禁用 got %s", resp.Msg)
	}
}
