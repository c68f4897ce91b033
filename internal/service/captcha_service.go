package service

import (
	"strings"
	"sync"

	"github.com/loanlead-next/internal/config"

	"github.com/mojocn/base64Captcha"
)

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 登录验证码服务
// 按配置开关决定登录是否需要验证码，关闭时 Verify 直接放行
type CaptchaService struct {
	cfg config.CaptchaConfig

	mu    sync.Mutex
	store base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: cfg}
}

// Enabled 验证码是否启用
func (s *CaptchaService) Enabled() bool {
	return s != nil && s.cfg.Enabled
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if !s.Enabled() {
		return nil, ErrCaptchaInvalid
	}

	height := s.cfg.Height
	if height <= 0 {
		height = 80
	}
	width := s.cfg.Width
	if width <= 0 {
		width = 240
	}
	length := s.cfg.Length
	if length <= 0 {
		length = 4
	}
	noiseCount := s.cfg.NoiseCount
	if noiseCount < 0 {
		noiseCount = 0
	}

	driver := base64Captcha.NewDriverDigit(height, width, length, 0.7, noiseCount)
	captcha := base64Captcha.NewCaptcha(driver, s.ensureStore())
	id, b64, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}
	return &CaptchaImageChallenge{
		CaptchaID:   id,
		ImageBase64: b64,
	}, nil
}

// Verify 校验验证码
// 未启用时直接通过；校验后立即失效，防止重放
func (s *CaptchaService) Verify(captchaID, captchaCode string) error {
	if !s.Enabled() {
		return nil
	}
	captchaID = strings.TrimSpace(captchaID)
	captchaCode = strings.TrimSpace(captchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaRequired
	}
	if !s.ensureStore().Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = base64Captcha.DefaultMemStore
	}
	return s.store
}
