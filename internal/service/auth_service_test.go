package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/loanlead-next/internal/config"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newAuthTestEnv(t *testing.T) (*AuthService, repository.AdminRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:auth_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	cfg.JWT.SecretKey = "unit-test-secret-key-0123456789abcdef"
	cfg.JWT.ExpireHours = 1

	adminRepo := repository.NewAdminRepository(db)
	return NewAuthService(cfg, adminRepo), adminRepo
}

func seedAdmin(t *testing.T, svc *AuthService, repo repository.AdminRepository, name, password string, active bool) *models.Admin {
	t.Helper()

	hash, err := svc.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := &models.Admin{
		Name:         name,
		PasswordHash: hash,
		IsActive:     active,
	}
	if err := repo.Create(admin); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	return admin
}

func TestLoginSuccess(t *testing.T) {
	svc, repo := newAuthTestEnv(t)
	seedAdmin(t, svc, repo, "admin", "secret-pass", true)

	admin, token, expiresAt, err := svc.Login("admin", "secret-pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("token should not be empty")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future, got %v", expiresAt)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("last login time should be recorded")
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Name != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, repo := newAuthTestEnv(t)
	seedAdmin(t, svc, repo, "admin", "secret-pass", true)
	seedAdmin(t, svc, repo, "frozen", "secret-pass", false)

	if _, _, _, err := svc.Login("admin", "wrong-pass"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("nobody", "secret-pass"); err != ErrInvalidCredentials {
		t.Fatalf("unknown user want ErrInvalidCredentials got %v", err)
	}
	if _, _, _, err := svc.Login("frozen", "secret-pass"); err != ErrInvalidCredentials {
		t.Fatalf("disabled account want ErrInvalidCredentials got %v", err)
	}
}

func TestParseJWTRejectsTampered(t *testing.T) {
	svc, repo := newAuthTestEnv(t)
	admin := seedAdmin(t, svc, repo, "admin", "secret-pass", true)

	token, _, err := svc.GenerateJWT(admin)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}
	if _, err := svc.ParseJWT(token + "x"); err == nil {
		t.Fatalf("tampered token should be rejected")
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo := newAuthTestEnv(t)
	admin := seedAdmin(t, svc, repo, "admin", "old-pass-123", true)

	if err := svc.ChangePassword(admin.ID, "wrong-old", "new-pass-123"); err != ErrInvalidPassword {
		t.Fatalf("wrong old password want ErrInvalidPassword got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "old-pass-123", "short"); err != ErrInvalidParam {
		t.Fatalf("short new password want ErrInvalidParam got %v", err)
	}
	if err := svc.ChangePassword(admin.ID+100, "old-pass-123", "new-pass-123"); err != ErrNotFound {
		t.Fatalf("missing admin want ErrNotFound got %v", err)
	}

	if err := svc.ChangePassword(admin.ID, "old-pass-123", "new-pass-123"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, _, _, err := svc.Login("admin", "old-pass-123"); err != ErrInvalidCredentials {
		t.Fatalf("old password should stop working, got %v", err)
	}
	if _, _, _, err := svc.Login("admin", "new-pass-123"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestGetAdminFallsBackToDatabase(t *testing.T) {
	svc, repo := newAuthTestEnv(t)
	admin := seedAdmin(t, svc, repo, "admin", "secret-pass", true)

	got, err := svc.GetAdmin(context.Background(), admin.ID)
	if err != nil {
		t.Fatalf("get admin failed: %v", err)
	}
	if got.Name != "admin" {
		t.Fatalf("admin name want admin got %s", got.Name)
	}
	if _, err := svc.GetAdmin(context.Background(), admin.ID+100); err != ErrNotFound {
		t.Fatalf("missing admin want ErrNotFound got %v", err)
	}
}
