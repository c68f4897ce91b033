package service

import (
	"context"
	"strings"
	"time"

	"github.com/loanlead-next/internal/cache"
	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/queue"
	"github.com/loanlead-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeadService 线索聚合服务
// 同一客户记录跨两步提交（问卷答案、个人信息）累积填写，
// 在进入「已答卷」状态的那一次写入上触发渠道提交计数，且只触发一次。
type LeadService struct {
	customerRepo      repository.CustomerRepository
	channelRepo       repository.ChannelRepository
	questionnaireRepo repository.QuestionnaireRepository
	queueClient       *queue.Client
}

// NewLeadService 创建线索服务实例
func NewLeadService(
	customerRepo repository.CustomerRepository,
	channelRepo repository.ChannelRepository,
	questionnaireRepo repository.QuestionnaireRepository,
	queueClient *queue.Client,
) *LeadService {
	return &LeadService{
		customerRepo:      customerRepo,
		channelRepo:       channelRepo,
		questionnaireRepo: questionnaireRepo,
		queueClient:       queueClient,
	}
}

// SelectedAnswerInput 单题答案入参
type SelectedAnswerInput struct {
	QuestionID         string `json:"questionId"`
	QuestionTitle      string `json:"questionTitle"`
	SelectedOptionID   string `json:"selectedOptionId"`
	SelectedOptionText string `json:"selectedOptionText"`
}

// LeadInput 客户创建/更新入参
// 指针字段为 nil 表示本次请求未携带该字段，更新时保留原值
type LeadInput struct {
	CustomerName      *string               `json:"customerName"`
	ApplicationAmount *string               `json:"applicationAmount"`
	Province          *string               `json:"province"`
	City              *string               `json:"city"`
	District          *string               `json:"district"`
	PhoneNumber       *string               `json:"phoneNumber"`
	IDCard            *string               `json:"idCard"`
	SubmissionTime    *time.Time            `json:"submissionTime"`
	QuestionnaireID   *string               `json:"questionnaireId"`
	SelectedQuestions []SelectedAnswerInput `json:"selectedQuestions"`
	ChannelID         *string               `json:"channelId"`
	ChannelLink       *string               `json:"channelLink"`
}

// List 客户列表
func (s *LeadService) List(filter repository.CustomerListFilter) ([]models.Customer, int64, error) {
	return s.customerRepo.List(filter)
}

// ListAll 不分页获取满足条件的全部客户
func (s *LeadService) ListAll(filter repository.CustomerListFilter) ([]models.Customer, error) {
	return s.customerRepo.ListAll(filter)
}

// Get 根据 ID 获取客户
func (s *LeadService) Get(id string) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrNotFound
	}
	return customer, nil
}

// Create 创建客户记录（漏斗第一步或后台录入）
func (s *LeadService) Create(ctx context.Context, input LeadInput) (*models.Customer, error) {
	customer := &models.Customer{
		ID:     uuid.NewString(),
		Status: constants.CustomerStatusStarted,
	}
	s.applyInput(customer, input)

	if customer.HasAnswers() {
		if customer.SubmissionTime == nil {
			now := time.Now()
			customer.SubmissionTime = &now
		}
		customer.Status = constants.CustomerStatusAnswered
	}
	if customer.Status == constants.CustomerStatusAnswered && hasPersonalInfo(customer) {
		customer.Status = constants.CustomerStatusInfoSubmitted
	}

	if err := s.customerRepo.Create(customer); err != nil {
		return nil, err
	}

	// 答案已带上的写入即完成一次答卷，触发一次渠道计数
	if customer.Status != constants.CustomerStatusStarted {
		s.attribute(ctx, customer)
	}
	return customer, nil
}

// Update 更新客户记录（漏斗第二步或后台编辑）
// 采用合并语义：请求未携带的字段保留原值
func (s *LeadService) Update(ctx context.Context, id string, input LeadInput) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, ErrNotFound
	}

	prevStatus := customer.Status
	s.applyInput(customer, input)

	if prevStatus == constants.CustomerStatusStarted && customer.HasAnswers() {
		if customer.SubmissionTime == nil {
			now := time.Now()
			customer.SubmissionTime = &now
		}
		customer.Status = constants.CustomerStatusAnswered
	}
	if customer.Status == constants.CustomerStatusAnswered && hasPersonalInfo(customer) {
		customer.Status = constants.CustomerStatusInfoSubmitted
	}

	if err := s.customerRepo.Update(customer); err != nil {
		return nil, err
	}

	// 计数只在 started -> answered 的状态迁移上触发，重复提交不再计数
	if prevStatus == constants.CustomerStatusStarted && customer.Status != constants.CustomerStatusStarted {
		s.attribute(ctx, customer)
	}
	return customer, nil
}

// Delete 删除客户记录
func (s *LeadService) Delete(id string) error {
	customer, err := s.customerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil {
		return ErrNotFound
	}
	return s.customerRepo.Delete(id)
}

// ExportGrouped 按问卷名称分组导出客户
func (s *LeadService) ExportGrouped(filter repository.CustomerListFilter) (map[string][]models.Customer, int, error) {
	customers, err := s.customerRepo.ListAll(filter)
	if err != nil {
		return nil, 0, err
	}

	nameByID := make(map[string]string)
	grouped := make(map[string][]models.Customer)
	for _, customer := range customers {
		groupName := "未命名问卷"
		if customer.QuestionnaireID != nil {
			id := *customer.QuestionnaireID
			name, ok := nameByID[id]
			if !ok {
				qn, err := s.questionnaireRepo.GetByID(id)
				if err != nil {
					return nil, 0, err
				}
				if qn != nil {
					name = qn.QuestionnaireName
				}
				nameByID[id] = name
			}
			if name != "" {
				groupName = name
			}
		}
		grouped[groupName] = append(grouped[groupName], customer)
	}
	return grouped, len(customers), nil
}

// applyInput 合并入参到客户记录
func (s *LeadService) applyInput(customer *models.Customer, input LeadInput) {
	if input.CustomerName != nil && strings.TrimSpace(*input.CustomerName) != "" {
		customer.CustomerName = strings.TrimSpace(*input.CustomerName)
	}
	if input.ApplicationAmount != nil && strings.TrimSpace(*input.ApplicationAmount) != "" {
		customer.ApplicationAmount = normalizeAmount(*input.ApplicationAmount)
	}
	if input.Province != nil && *input.Province != "" {
		customer.Province = strings.TrimSpace(*input.Province)
	}
	if input.City != nil && *input.City != "" {
		customer.City = strings.TrimSpace(*input.City)
	}
	if input.District != nil && *input.District != "" {
		customer.District = strings.TrimSpace(*input.District)
	}
	if input.PhoneNumber != nil && *input.PhoneNumber != "" {
		customer.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.IDCard != nil && *input.IDCard != "" {
		customer.IDCard = strings.TrimSpace(*input.IDCard)
	}
	if input.SubmissionTime != nil {
		customer.SubmissionTime = input.SubmissionTime
	}
	if input.QuestionnaireID != nil && strings.TrimSpace(*input.QuestionnaireID) != "" {
		id := strings.TrimSpace(*input.QuestionnaireID)
		customer.QuestionnaireID = &id
	}
	if input.ChannelID != nil && *input.ChannelID != "" {
		customer.ChannelID = strings.TrimSpace(*input.ChannelID)
	}
	if input.ChannelLink != nil && *input.ChannelLink != "" {
		customer.ChannelLink = strings.TrimSpace(*input.ChannelLink)
	}
	if input.SelectedQuestions != nil {
		customer.SelectedQuestions = s.buildAnswerSnapshot(customer.QuestionnaireID, input.SelectedQuestions)
	}
}

// buildAnswerSnapshot 固化答案快照
// 问卷可查到时以问卷当前文案为准补齐题目和选项文本，查不到时保留客户端文案
func (s *LeadService) buildAnswerSnapshot(questionnaireID *string, answers []SelectedAnswerInput) models.SelectedQuestionList {
	var questionnaire *models.Questionnaire
	if questionnaireID != nil && *questionnaireID != "" {
		qn, err := s.questionnaireRepo.GetByID(*questionnaireID)
		if err != nil {
			logger.Warnw("answer_snapshot_questionnaire_lookup_failed",
				"questionnaire_id", *questionnaireID,
				"error", err,
			)
		} else {
			questionnaire = qn
		}
	}

	snapshot := make(models.SelectedQuestionList, 0, len(answers))
	for _, answer := range answers {
		item := models.SelectedQuestion{
			QuestionID:         answer.QuestionID,
			QuestionTitle:      answer.QuestionTitle,
			SelectedOptionID:   answer.SelectedOptionID,
			SelectedOptionText: answer.SelectedOptionText,
		}
		if question := questionnaire.FindQuestion(answer.QuestionID); question != nil {
			item.QuestionTitle = question.Title
			if option := question.FindOption(answer.SelectedOptionID); option != nil {
				item.SelectedOptionText = option.Text
			}
		}
		snapshot = append(snapshot, item)
	}
	return snapshot
}

// attribute 渠道归因并递增提交计数
// 优先按渠道编号匹配，其次按短链接；都不命中时线索照常保存，
// 但记录结构化日志、Redis 计数与审计任务，保证归因丢失可观测
func (s *LeadService) attribute(ctx context.Context, customer *models.Customer) {
	var channel *models.Channel
	var err error

	if customer.ChannelID != "" {
		channel, err = s.channelRepo.GetByNumber(customer.ChannelID)
		if err != nil {
			logger.Warnw("lead_attribution_lookup_failed",
				"customer_id", customer.ID,
				"channel_id", customer.ChannelID,
				"error", err,
			)
			return
		}
	}
	if channel == nil && customer.ChannelLink != "" {
		channel, err = s.channelRepo.GetByShortLink(customer.ChannelLink)
		if err != nil {
			logger.Warnw("lead_attribution_lookup_failed",
				"customer_id", customer.ID,
				"channel_link", customer.ChannelLink,
				"error", err,
			)
			return
		}
	}

	if channel == nil {
		s.reportAttributionMiss(ctx, customer)
		return
	}

	if err := s.channelRepo.IncrementSubmitCount(channel.ID); err != nil {
		logger.Warnw("channel_submit_count_increment_failed",
			"customer_id", customer.ID,
			"channel_id", channel.ID,
			"error", err,
		)
	}
}

func (s *LeadService) reportAttributionMiss(ctx context.Context, customer *models.Customer) {
	logger.Warnw("lead_attribution_miss",
		"customer_id", customer.ID,
		"channel_id", customer.ChannelID,
		"channel_link", customer.ChannelLink,
	)
	if _, err := cache.Incr(ctx, "metrics:lead_attribution_miss"); err != nil {
		logger.Warnw("lead_attribution_miss_metric_failed", "error", err)
	}
	err := s.queueClient.EnqueueLeadAttributionMiss(queue.LeadAttributionMissPayload{
		CustomerID:  customer.ID,
		ChannelID:   customer.ChannelID,
		ChannelLink: customer.ChannelLink,
	})
	if err != nil {
		logger.Warnw("lead_attribution_miss_enqueue_failed", "customer_id", customer.ID, "error", err)
	}
}

// hasPersonalInfo 个人信息是否已补全
func hasPersonalInfo(customer *models.Customer) bool {
	return customer.CustomerName != "" || customer.PhoneNumber != "" || customer.IDCard != ""
}

// normalizeAmount 规范化申请额度，非法数值原样保留
func normalizeAmount(raw string) string {
	trimmed := strings.TrimSpace(raw)
	amount, err := decimal.NewFromString(strings.ReplaceAll(trimmed, ",", ""))
	if err != nil {
		return trimmed
	}
	if amount.IsNegative() {
		return trimmed
	}
	return amount.String()
}
