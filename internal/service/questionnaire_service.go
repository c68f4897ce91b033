package service

import (
	"strings"

	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionnaireService 问卷服务
type QuestionnaireService struct {
	questionnaireRepo repository.QuestionnaireRepository
	channelRepo       repository.ChannelRepository
}

// NewQuestionnaireService 创建问卷服务实例
func NewQuestionnaireService(questionnaireRepo repository.QuestionnaireRepository, channelRepo repository.ChannelRepository) *QuestionnaireService {
	return &QuestionnaireService{
		questionnaireRepo: questionnaireRepo,
		channelRepo:       channelRepo,
	}
}

// QuestionnaireInput 问卷创建/更新入参
type QuestionnaireInput struct {
	QuestionnaireNumber string
	QuestionnaireName   string
	Remark              string
	Questions           models.QuestionList
}

// List 问卷列表
func (s *QuestionnaireService) List(filter repository.QuestionnaireListFilter) ([]models.Questionnaire, int64, error) {
	return s.questionnaireRepo.List(filter)
}

// Get 根据 ID 获取问卷
func (s *QuestionnaireService) Get(id string) (*models.Questionnaire, error) {
	questionnaire, err := s.questionnaireRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if questionnaire == nil {
		return nil, ErrNotFound
	}
	return questionnaire, nil
}

// Create 创建问卷
func (s *QuestionnaireService) Create(input QuestionnaireInput) (*models.Questionnaire, error) {
	number := strings.TrimSpace(input.QuestionnaireNumber)
	name := strings.TrimSpace(input.QuestionnaireName)
	if number == "" || name == "" {
		return nil, ErrInvalidParam
	}

	count, err := s.questionnaireRepo.CountByNumber(number, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrNumberConflict
	}

	questions := input.Questions
	if questions == nil {
		questions = models.QuestionList{}
	}
	questionnaire := &models.Questionnaire{
		ID:                  uuid.NewString(),
		QuestionnaireNumber: number,
		QuestionnaireName:   name,
		Remark:              strings.TrimSpace(input.Remark),
		Questions:           questions,
	}
	if err := s.questionnaireRepo.Create(questionnaire); err != nil {
		return nil, err
	}
	return questionnaire, nil
}

// Update 更新问卷
// 编号/名称为空时保留原值；题目为空时保留原题目
func (s *QuestionnaireService) Update(id string, input QuestionnaireInput) (*models.Questionnaire, error) {
	questionnaire, err := s.questionnaireRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if questionnaire == nil {
		return nil, ErrNotFound
	}

	if number := strings.TrimSpace(input.QuestionnaireNumber); number != "" && number != questionnaire.QuestionnaireNumber {
		count, err := s.questionnaireRepo.CountByNumber(number, &questionnaire.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrNumberConflict
		}
		questionnaire.QuestionnaireNumber = number
	}
	if name := strings.TrimSpace(input.QuestionnaireName); name != "" {
		questionnaire.QuestionnaireName = name
	}
	questionnaire.Remark = strings.TrimSpace(input.Remark)
	if input.Questions != nil {
		questionnaire.Questions = input.Questions
	}

	if err := s.questionnaireRepo.Update(questionnaire); err != nil {
		return nil, err
	}
	return questionnaire, nil
}

// Delete 删除问卷
// 事务内同时清除渠道对该问卷的引用，避免渠道悬挂在已删除问卷上
func (s *QuestionnaireService) Delete(id string) error {
	questionnaire, err := s.questionnaireRepo.GetByID(id)
	if err != nil {
		return err
	}
	if questionnaire == nil {
		return ErrNotFound
	}
	return s.questionnaireRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.channelRepo.ClearQuestionnaireRef(tx, id); err != nil {
			return err
		}
		return s.questionnaireRepo.Delete(tx, id)
	})
}

// Copy 复制问卷
// 返回未落库的深拷贝副本：问卷、题目、选项全部换新 ID，编号加 _copy 后缀。
// 副本由前端确认后再走创建接口入库。
func (s *QuestionnaireService) Copy(id string) (*models.Questionnaire, error) {
	source, err := s.questionnaireRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, ErrNotFound
	}

	number := source.QuestionnaireNumber + "_copy"
	for {
		count, err := s.questionnaireRepo.CountByNumber(number, nil)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			break
		}
		number += "_copy"
	}

	questions := make(models.QuestionList, 0, len(source.Questions))
	for _, question := range source.Questions {
		options := make([]models.QuestionOption, 0, len(question.Options))
		for _, option := range question.Options {
			options = append(options, models.QuestionOption{
				ID:   uuid.NewString(),
				Text: option.Text,
			})
		}
		questions = append(questions, models.Question{
			ID:      uuid.NewString(),
			Title:   question.Title,
			Options: options,
		})
	}

	return &models.Questionnaire{
		ID:                  uuid.NewString(),
		QuestionnaireNumber: number,
		QuestionnaireName:   source.QuestionnaireName,
		Remark:              source.Remark,
		Questions:           questions,
	}, nil
}
