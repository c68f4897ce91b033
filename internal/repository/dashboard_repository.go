package repository

import (
	"time"

	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/models"

	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetLeadTrends(startAt, endAt time.Time) ([]DashboardLeadTrendRow, error)
	GetTopChannels(startAt, endAt time.Time, limit int) ([]DashboardChannelRankingRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	ChannelsTotal       int64
	ActiveChannels      int64
	QuestionnairesTotal int64
	CustomersTotal      int64
	AnsweredCustomers   int64
	CompletedCustomers  int64
	NewCustomers        int64
	UVTotal             int64
	SubmitTotal         int64
}

// DashboardLeadTrendRow 线索趋势统计
type DashboardLeadTrendRow struct {
	Day       string
	Created   int64
	Completed int64
}

// DashboardChannelRankingRow 渠道排行原始行
type DashboardChannelRankingRow struct {
	ChannelID     string
	ChannelNumber string
	ChannelName   string
	UVCount       int64
	SubmitCount   int64
	LeadCount     int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取仪表盘总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	var row DashboardOverviewRow

	if err := r.db.Model(&models.Channel{}).Count(&row.ChannelsTotal).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Channel{}).Where("is_active = ?", true).Count(&row.ActiveChannels).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Questionnaire{}).Count(&row.QuestionnairesTotal).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Customer{}).Count(&row.CustomersTotal).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Customer{}).
		Where("status = ?", constants.CustomerStatusAnswered).
		Count(&row.AnsweredCustomers).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Customer{}).
		Where("status = ?", constants.CustomerStatusInfoSubmitted).
		Count(&row.CompletedCustomers).Error; err != nil {
		return row, err
	}
	if err := r.db.Model(&models.Customer{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&row.NewCustomers).Error; err != nil {
		return row, err
	}

	type counterSums struct {
		UVTotal     int64
		SubmitTotal int64
	}
	var sums counterSums
	err := r.db.Model(&models.Channel{}).
		Select("COALESCE(SUM(uv_count), 0) AS uv_total, COALESCE(SUM(questionnaire_submit_count), 0) AS submit_total").
		Scan(&sums).Error
	if err != nil {
		return row, err
	}
	row.UVTotal = sums.UVTotal
	row.SubmitTotal = sums.SubmitTotal
	return row, nil
}

// GetLeadTrends 按天统计新建与完成线索数
func (r *GormDashboardRepository) GetLeadTrends(startAt, endAt time.Time) ([]DashboardLeadTrendRow, error) {
	var created []struct {
		Day   string
		Count int64
	}
	err := r.db.Model(&models.Customer{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&created).Error
	if err != nil {
		return nil, err
	}

	var completed []struct {
		Day   string
		Count int64
	}
	err = r.db.Model(&models.Customer{}).
		Select("DATE(created_at) AS day, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Where("status = ?", constants.CustomerStatusInfoSubmitted).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&completed).Error
	if err != nil {
		return nil, err
	}

	completedByDay := make(map[string]int64, len(completed))
	for _, c := range completed {
		completedByDay[c.Day] = c.Count
	}

	rows := make([]DashboardLeadTrendRow, 0, len(created))
	for _, c := range created {
		rows = append(rows, DashboardLeadTrendRow{
			Day:       c.Day,
			Created:   c.Count,
			Completed: completedByDay[c.Day],
		})
	}
	return rows, nil
}

// GetTopChannels 按线索数获取渠道排行
func (r *GormDashboardRepository) GetTopChannels(startAt, endAt time.Time, limit int) ([]DashboardChannelRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []DashboardChannelRankingRow
	err := r.db.Model(&models.Channel{}).
		Select(`channels.id AS channel_id,
			channels.channel_number,
			channels.channel_name,
			channels.uv_count,
			channels.questionnaire_submit_count AS submit_count,
			COALESCE((SELECT COUNT(*) FROM customers c WHERE c.channel_id = channels.channel_number AND c.created_at >= ? AND c.created_at < ?), 0) AS lead_count`,
			startAt, endAt).
		Order("lead_count DESC, channels.uv_count DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
