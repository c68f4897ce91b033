package admin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/loanlead-next/internal/config"
	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/provider"
	"github.com/loanlead-next/internal/repository"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func setupAuthHandlerTest(t *testing.T, mode string) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_auth_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	if err := db.Create(&models.Admin{
		Name:         "admin",
		PasswordHash: string(hash),
		IsActive:     true,
	}).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = mode
	cfg.JWT.SecretKey = "admin-handler-test-secret-0123456789abcdef"
	cfg.JWT.ExpireHours = 1

	adminRepo := repository.NewAdminRepository(db)
	return New(&provider.Container{
		Config:      cfg,
		AdminRepo:   adminRepo,
		AuthService: service.NewAuthService(cfg, adminRepo),
	})
}

func newRecorderWithCookie(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: constants.AuthCookieName, Value: token})
	r.ServeHTTP(w, req)
	return w
}

func findAuthCookie(t *testing.T, cookies []*http.Cookie) *http.Cookie {
	t.Helper()
	for _, cookie := range cookies {
		if cookie.Name == constants.AuthCookieName {
			return cookie
		}
	}
	t.Fatalf("auth cookie not set")
	return nil
}

func TestAdminLoginCookieAttributes(t *testing.T) {
	h := setupAuthHandlerTest(t, "release")

	r := gin.New()
	r.POST("/api/admin/login", h.AdminLogin)

	w := doJSON(r, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"secret123"}`)
	if resp := decodeAdminResponse(t, w); resp.StatusCode != 0 {
		t.Fatalf("login want 0 got %d, body: %s", resp.StatusCode, w.Body.String())
	}

	cookie := findAuthCookie(t, w.Result().Cookies())
	if !cookie.HttpOnly {
		t.Fatalf("auth cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("auth cookie SameSite want Strict got %v", cookie.SameSite)
	}
	if !cookie.Secure {
		t.Fatalf("auth cookie should be Secure in release mode")
	}
	if cookie.MaxAge != 3600 {
		t.Fatalf("auth cookie max-age want 3600 got %d", cookie.MaxAge)
	}
}

func TestAdminLoginCookieNotSecureInDebug(t *testing.T) {
	h := setupAuthHandlerTest(t, "debug")

	r := gin.New()
	r.POST("/api/admin/login", h.AdminLogin)

	w := doJSON(r, http.MethodPost, "/api/admin/login", `{"username":"admin","password":"secret123"}`)
	if resp := decodeAdminResponse(t, w); resp.StatusCode != 0 {
		t.Fatalf("login want 0 got %d", resp.StatusCode)
	}

	cookie := findAuthCookie(t, w.Result().Cookies())
	if cookie.Secure {
		t.Fatalf("auth cookie should not be Secure in debug mode")
	}
	if cookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("auth cookie SameSite want Strict got %v", cookie.SameSite)
	}
}

func TestAdminLogoutWithoutCredentials(t *testing.T) {
	h := setupAuthHandlerTest(t, "debug")

	r := gin.New()
	r.POST("/api/admin/logout", h.AdminLogout)

	// 无任何凭证（或凭证已过期）也要能登出并清掉 Cookie
	w := doJSON(r, http.MethodPost, "/api/admin/logout", "")
	if resp := decodeAdminResponse(t, w); resp.StatusCode != 0 {
		t.Fatalf("logout want 0 got %d, body: %s", resp.StatusCode, w.Body.String())
	}

	cookie := findAuthCookie(t, w.Result().Cookies())
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("logout should clear auth cookie, got value=%q max-age=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestAdminLogoutWithInvalidToken(t *testing.T) {
	h := setupAuthHandlerTest(t, "debug")

	r := gin.New()
	r.POST("/api/admin/logout", h.AdminLogout)

	w := newRecorderWithCookie(r, http.MethodPost, "/api/admin/logout", "not-a-jwt")
	if resp := decodeAdminResponse(t, w); resp.StatusCode != 0 {
		t.Fatalf("logout with stale token want 0 got %d", resp.StatusCode)
	}

	cookie := findAuthCookie(t, w.Result().Cookies())
	if cookie.MaxAge >= 0 {
		t.Fatalf("logout should expire auth cookie, got max-age=%d", cookie.MaxAge)
	}
}
