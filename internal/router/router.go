package router

import (
	"fmt"
	"strings"

	"github.com/loanlead-next/internal/cache"
	"github.com/loanlead-next/internal/config"
	adminhandlers "github.com/loanlead-next/internal/http/handlers/admin"
	publichandlers "github.com/loanlead-next/internal/http/handlers/public"
	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/provider"

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

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ll"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		Message:       "登录尝试过于频繁",
	}
	h5SubmitRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:h5_submit", redisPrefix),
		WindowSeconds: cfg.H5.SubmitRateLimit.WindowSeconds,
		MaxRequests:   cfg.H5.SubmitRateLimit.MaxAttempts,
		Message:       "提交过于频繁",
	}

	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	api := r.Group("/api")
	{
		// H5 前台接口（无需鉴权）
		h5 := api.Group("/h5")
		{
			h5.GET("/default-channel", publicHandler.GetDefaultChannel)
			h5.GET("/questionnaire", publicHandler.GetH5Questionnaire)
			h5.POST("/customers", RateLimitMiddleware(redisClient, h5SubmitRule, KeyByIP), publicHandler.CreateH5Customer)
			h5.PUT("/customers", RateLimitMiddleware(redisClient, h5SubmitRule, KeyByIP), publicHandler.UpdateH5Customer)
		}

		// 管理员接口
		admin := api.Group("/admin")
		{
			// 登录/登出接口（无需鉴权，过期 Token 也要能登出清 Cookie）
			admin.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)
			admin.POST("/logout", adminHandler.AdminLogout)
			admin.GET("/captcha", adminHandler.GetLoginCaptcha)

			// 需要鉴权的接口
			authorized := admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo))
			{
				authorized.GET("/auth/check", adminHandler.AdminAuthCheck)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 仪表盘
				authorized.GET("/dashboard", adminHandler.GetDashboard)

				// 渠道管理
				authorized.GET("/channels", adminHandler.GetChannels)
				authorized.GET("/channels/:id", adminHandler.GetChannel)
				authorized.POST("/channels", adminHandler.CreateChannel)
				authorized.PUT("/channels/:id", adminHandler.UpdateChannel)
				authorized.DELETE("/channels/:id", adminHandler.DeleteChannel)

				// 问卷管理
				authorized.GET("/questionnaires", adminHandler.GetQuestionnaires)
				authorized.GET("/questionnaires/:id", adminHandler.GetQuestionnaire)
				authorized.POST("/questionnaires", adminHandler.CreateQuestionnaire)
				authorized.PUT("/questionnaires/:id", adminHandler.UpdateQuestionnaire)
				authorized.DELETE("/questionnaires/:id", adminHandler.DeleteQuestionnaire)
				authorized.POST("/questionnaires/:id/copy", adminHandler.CopyQuestionnaire)

				// 客户管理
				authorized.GET("/customers", adminHandler.GetCustomers)
				authorized.GET("/customers/export", adminHandler.ExportCustomers)
				authorized.GET("/customers/:id", adminHandler.GetCustomer)
				authorized.POST("/customers", adminHandler.CreateCustomer)
				authorized.PUT("/customers/:id", adminHandler.UpdateCustomer)
				authorized.DELETE("/customers/:id", adminHandler.DeleteCustomer)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
