package repository

import (
	"errors"
	"strings"

	"github.com/loanlead-next/internal/models"

	"gorm.io/gorm"
)

// ChannelRepository 渠道数据访问接口
type ChannelRepository interface {
	List(filter ChannelListFilter) ([]models.Channel, int64, error)
	GetByID(id string) (*models.Channel, error)
	GetByNumber(channelNumber string) (*models.Channel, error)
	GetByShortLink(shortLink string) (*models.Channel, error)
	GetDefault() (*models.Channel, error)
	Create(channel *models.Channel) error
	Update(channel *models.Channel) error
	Delete(id string) error
	CountByNumber(channelNumber string, excludeID *string) (int64, error)
	CountByShortLink(shortLink string, excludeID *string) (int64, error)
	ClearDefaultExcept(excludeID string) error
	ClearQuestionnaireRef(tx *gorm.DB, questionnaireID string) error
	IncrementUV(id string) error
	IncrementSubmitCount(id string) error
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormChannelRepository GORM 实现
type GormChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository 创建渠道仓库
func NewChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// Transaction 执行事务
func (r *GormChannelRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 渠道列表
func (r *GormChannelRepository) List(filter ChannelListFilter) ([]models.Channel, int64, error) {
	var channels []models.Channel

	query := r.db.Model(&models.Channel{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("channel_number LIKE ? OR channel_name LIKE ?", like, like)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
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
	if err := query.Order("created_at DESC").Find(&channels).Error; err != nil {
		return nil, 0, err
	}
	return channels, total, nil
}

// GetByID 根据 ID 获取渠道
func (r *GormChannelRepository) GetByID(id string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.Where("id = ?", id).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// GetByNumber 根据渠道编号获取渠道
func (r *GormChannelRepository) GetByNumber(channelNumber string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.Where("channel_number = ?", channelNumber).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// GetByShortLink 根据短链接获取渠道
func (r *GormChannelRepository) GetByShortLink(shortLink string) (*models.Channel, error) {
	if strings.TrimSpace(shortLink) == "" {
		return nil, nil
	}
	var channel models.Channel
	if err := r.db.Where("short_link = ?", shortLink).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// GetDefault 获取默认渠道（最近设置的优先）
func (r *GormChannelRepository) GetDefault() (*models.Channel, error) {
	var channel models.Channel
	err := r.db.
		Where("is_default = ?", true).
		Order("updated_at DESC").
		First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &channel, nil
}

// Create 创建渠道
func (r *GormChannelRepository) Create(channel *models.Channel) error {
	return r.db.Create(channel).Error
}

// Update 更新渠道
func (r *GormChannelRepository) Update(channel *models.Channel) error {
	return r.db.Save(channel).Error
}

// Delete 删除渠道
func (r *GormChannelRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Channel{}).Error
}

// CountByNumber 统计渠道编号数量
func (r *GormChannelRepository) CountByNumber(channelNumber string, excludeID *string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Channel{}).Where("channel_number = ?", channelNumber)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByShortLink 统计短链接数量
func (r *GormChannelRepository) CountByShortLink(shortLink string, excludeID *string) (int64, error) {
	var count int64
	query := r.db.Model(&models.Channel{}).Where("short_link = ?", shortLink)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClearDefaultExcept 取消除指定渠道外所有渠道的默认标记
func (r *GormChannelRepository) ClearDefaultExcept(excludeID string) error {
	query := r.db.Model(&models.Channel{}).Where("is_default = ?", true)
	if excludeID != "" {
		query = query.Where("id != ?", excludeID)
	}
	return query.Update("is_default", false).Error
}

// ClearQuestionnaireRef 清除渠道对指定问卷的引用
func (r *GormChannelRepository) ClearQuestionnaireRef(tx *gorm.DB, questionnaireID string) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Model(&models.Channel{}).
		Where("questionnaire_id = ?", questionnaireID).
		Update("questionnaire_id", nil).Error
}

// IncrementUV 原子递增 UV 访问次数
// 渠道已不存在时返回 gorm.ErrRecordNotFound
func (r *GormChannelRepository) IncrementUV(id string) error {
	result := r.db.Model(&models.Channel{}).
		Where("id = ?", id).
		Update("uv_count", gorm.Expr("uv_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementSubmitCount 原子递增问卷填写总数
// 渠道已不存在时返回 gorm.ErrRecordNotFound
func (r *GormChannelRepository) IncrementSubmitCount(id string) error {
	result := r.db.Model(&models.Channel{}).
		Where("id = ?", id).
		Update("questionnaire_submit_count", gorm.Expr("questionnaire_submit_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
