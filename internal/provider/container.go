package provider

import (
	"github.com/loanlead-next/internal/cache"
	"github.com/loanlead-next/internal/config"
	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/queue"
	"github.com/loanlead-next/internal/repository"
	"github.com/loanlead-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo         repository.AdminRepository
	ChannelRepo       repository.ChannelRepository
	QuestionnaireRepo repository.QuestionnaireRepository
	CustomerRepo      repository.CustomerRepository
	DashboardRepo     repository.DashboardRepository

	// Services
	AuthService          *service.AuthService
	CaptchaService       *service.CaptchaService
	ChannelService       *service.ChannelService
	QuestionnaireService *service.QuestionnaireService
	LeadService          *service.LeadService
	DashboardService     *service.DashboardService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ChannelRepo = repository.NewChannelRepository(db)
	c.QuestionnaireRepo = repository.NewQuestionnaireRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.DashboardRepo = repository.NewDashboardRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)
	c.ChannelService = service.NewChannelService(c.ChannelRepo, c.QuestionnaireRepo)
	c.QuestionnaireService = service.NewQuestionnaireService(c.QuestionnaireRepo, c.ChannelRepo)
	c.LeadService = service.NewLeadService(c.CustomerRepo, c.ChannelRepo, c.QuestionnaireRepo, c.QueueClient)
	c.DashboardService = service.NewDashboardService(c.DashboardRepo)
}
