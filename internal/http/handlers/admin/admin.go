package admin

import (
	"errors"
	"net/http"
	"strings"

	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/http/response"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string                 `json:"token"`
	User      map[string]interface{} `json:"user"`
	ExpiresAt string                 `json:"expires_at"`
}

// AdminLogin 管理员登录
// 成功后同时下发 Cookie 与 Token，管理端页面走 Cookie，API 调用可走 Bearer
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	if h.CaptchaService != nil && h.CaptchaService.Enabled() {
		if captchaErr := h.CaptchaService.Verify(req.CaptchaID, req.CaptchaCode); captchaErr != nil {
			switch {
			case errors.Is(captchaErr, service.ErrCaptchaRequired):
				respondError(c, response.CodeBadRequest, "请输入验证码", nil)
			case errors.Is(captchaErr, service.ErrCaptchaInvalid):
				respondError(c, response.CodeBadRequest, "验证码错误或已过期", nil)
			default:
				respondError(c, response.CodeInternal, "验证码校验失败", captchaErr)
			}
			return
		}
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	maxAge := h.Config.JWT.ExpireHours * 3600
	if maxAge <= 0 {
		maxAge = 3600
	}
	h.setAuthCookie(c, token, maxAge)

	requestLog(c).Infow("admin_login_success", "admin_id", admin.ID, "name", admin.Name)
	response.Success(c, LoginResponse{
		Token: token,
		User: map[string]interface{}{
			"id":   admin.ID,
			"name": admin.Name,
		},
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// setAuthCookie 下发登录 Cookie，release 模式附加 Secure 标记
func (h *Handler) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	secure := h.Config.Server.Mode == "release"
	c.SetCookie(constants.AuthCookieName, token, maxAge, "/", "", secure, true)
}

// AdminLogout 管理员登出
// 不要求登录态：Token 过期时也要能清掉残留 Cookie；Token 可解析时顺带清理缓存快照
func (h *Handler) AdminLogout(c *gin.Context) {
	token, err := c.Cookie(constants.AuthCookieName)
	if err != nil || token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token != "" {
		if claims, parseErr := h.AuthService.ParseJWT(token); parseErr == nil {
			h.AuthService.Logout(c.Request.Context(), claims.AdminID)
		}
	}
	h.setAuthCookie(c, "", -1)
	response.SuccessWithMsg(c, "登出成功", nil)
}

// AdminAuthCheck 登录态检查
func (h *Handler) AdminAuthCheck(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeUnauthorized, "未登录或登录已过期", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录态检查失败", err)
		return
	}
	response.Success(c, gin.H{
		"authenticated": true,
		"user": gin.H{
			"id":   admin.ID,
			"name": admin.Name,
		},
	})
}

// UpdatePasswordRequest 修改密码请求
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateAdminPassword 修改管理员密码
func (h *Handler) UpdateAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			respondError(c, response.CodeBadRequest, "原密码错误", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidParam) {
			respondError(c, response.CodeBadRequest, "新密码至少需要6个字符", nil)
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "管理员不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "修改密码失败", err)
		return
	}
	response.Success(c, nil)
}

// GetLoginCaptcha 获取登录验证码
func (h *Handler) GetLoginCaptcha(c *gin.Context) {
	if h.CaptchaService == nil || !h.CaptchaService.Enabled() {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "验证码生成失败", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
