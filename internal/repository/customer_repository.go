package repository

import (
	"errors"
	"strings"

	"github.com/loanlead-next/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	ListAll(filter CustomerListFilter) ([]models.Customer, error)
	GetByID(id string) (*models.Customer, error)
	Create(customer *models.Customer) error
	Update(customer *models.Customer) error
	Delete(id string) error
	CountByStatus(status string) (int64, error)
	Count() (int64, error)
}

// GormCustomerRepository GORM 实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓库
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

func (r *GormCustomerRepository) buildListQuery(filter CustomerListFilter) *gorm.DB {
	query := r.db.Model(&models.Customer{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"customer_name LIKE ? OR phone_number LIKE ? OR id_card LIKE ? OR channel_link LIKE ?",
			like, like, like, like,
		)
	}
	if filter.Province != "" {
		query = query.Where("province = ?", filter.Province)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.District != "" {
		query = query.Where("district = ?", filter.District)
	}
	if filter.ChannelID != "" {
		query = query.Where("channel_id = ?", filter.ChannelID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("submission_time >= ?", *filter.SubmittedFrom)
	}
	if filter.SubmittedTo != nil {
		query = query.Where("submission_time <= ?", *filter.SubmittedTo)
	}
	return query
}

// List 客户列表
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	var customers []models.Customer

	query := r.buildListQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// ListAll 不分页获取满足条件的全部客户（导出用）
func (r *GormCustomerRepository) ListAll(filter CustomerListFilter) ([]models.Customer, error) {
	var customers []models.Customer
	query := r.buildListQuery(filter)
	if err := query.Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// GetByID 根据 ID 获取客户
func (r *GormCustomerRepository) GetByID(id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("id = ?", id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// Update 更新客户
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// Delete 删除客户
func (r *GormCustomerRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Customer{}).Error
}

// CountByStatus 按填写状态统计客户数量
func (r *GormCustomerRepository) CountByStatus(status string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Customer{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Count 统计客户总数
func (r *GormCustomerRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Customer{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
