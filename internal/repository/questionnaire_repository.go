package repository

import (
	"errors"
	"strings"

	"github.com/loanlead-next/internal/models"

	"gorm.io/gorm"
)

// QuestionnaireRepository 问卷数据访问接口
type QuestionnaireRepository interface {
	List(filter QuestionnaireListFilter) ([]models.Questionnaire, int64, error)
	GetByID(id string) (*models.Questionnaire, error)
	GetByNumber(questionnaireNumber string) (*models.Questionnaire, error)
	GetFirst() (*models.Questionnaire, error)
	Create(questionnaire *models.Questionnaire) error
	Update(questionnaire *models.Questionnaire) error
	Delete(tx *gorm.DB, id string) error
	CountByNumber(questionnaireNumber string, excludeID *string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormQuestionnaireRepository GORM 实现
type GormQuestionnaireRepository struct {
	db *gorm.DB
}

// NewQuestionnaireRepository 创建问卷仓库
func NewQuestionnaireRepository(db *gorm.DB) *GormQuestionnaireRepository {
	return &GormQuestionnaireRepository{db: db}
}

// Transaction 执行事务
func (r *GormQuestionnaireRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 问卷列表
func (r *GormQuestionnaireRepository) List(filter QuestionnaireListFilter) ([]models.Questionnaire, int64, error) {
	var questionnaires []models.Questionnaire

	query := r.db.Model(&models.Questionnaire{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("questionnaire_number LIKE ? OR questionnaire_name LIKE ?", like, like)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&questionnaires).Error; err != nil {
		return nil, 0, err
	}
	return questionnaires, total, nil
}

// GetByID 根据 ID 获取问卷
func (r *GormQuestionnaireRepository) GetByID(id string) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	if err := r.db.Where("id = ?", id).First(&questionnaire).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &questionnaire, nil
}

// GetByNumber 根据问卷编号获取问卷
func (r *GormQuestionnaireRepository) GetByNumber(questionnaireNumber string) (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	if err := r.db.Where("questionnaire_number = ?", questionnaireNumber).First(&questionnaire).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &questionnaire, nil
}

// GetFirst 获取最早创建的问卷
func (r *GormQuestionnaireRepository) GetFirst() (*models.Questionnaire, error) {
	var questionnaire models.Questionnaire
	if err := r.db.Order("created_at ASC").First(&questionnaire).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &questionnaire, nil
}

// Create 创建问卷
func (r *GormQuestionnaireRepository) Create(questionnaire *models.Questionnaire) error {
	return r.db.Create(questionnaire).Error
}

// Update 更新问卷
func (r *GormQuestionnaireRepository) Update(questionnaire *models.Questionnaire) error {
	return r.db.Save(questionnaire).Error
}

// Delete 删除问卷
func (r *GormQuestionnaireRepository) Delete(tx *gorm.DB, id string) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Where("id = ?", id).Delete(&models.Questionnaire{}).Error
}

// CountByNumber 统计问卷编号数量
func (r *GormQuestionnaireRepository) CountByNumber(questionnaireNumber string, excludeID *string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Questionnaire{}).Where("questionnaire_number = ?", questionnaireNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
