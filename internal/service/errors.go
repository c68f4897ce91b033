package service

import "errors"

// 服务层统一错误，由 HTTP 层映射为响应码
var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("资源不存在")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrInvalidPassword 原密码错误
	ErrInvalidPassword = errors.New("原密码错误")
	// ErrAccountDisabled 账号已被禁用
	ErrAccountDisabled = errors.New("账号已被禁用")
	// ErrNumberConflict 编号已存在
	ErrNumberConflict = errors.New("编号已存在")
	// ErrShortLinkConflict 短链接已被占用
	ErrShortLinkConflict = errors.New("短链接已被占用")
	// ErrInvalidParam 参数不合法
	ErrInvalidParam = errors.New("参数不合法")
	// ErrCaptchaRequired 需要验证码
	ErrCaptchaRequired = errors.New("请输入验证码")
	// ErrCaptchaInvalid 验证码错误
	ErrCaptchaInvalid = errors.New("验证码错误或已过期")
)
