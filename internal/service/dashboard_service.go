package service

import (
	"time"

	"github.com/loanlead-next/internal/repository"
)

// DashboardService 仪表盘服务
type DashboardService struct {
	dashboardRepo repository.DashboardRepository
}

// NewDashboardService 创建仪表盘服务实例
func NewDashboardService(dashboardRepo repository.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// DashboardOverview 仪表盘总览
type DashboardOverview struct {
	ChannelsTotal       int64 `json:"channels_total"`
	ActiveChannels      int64 `json:"active_channels"`
	QuestionnairesTotal int64 `json:"questionnaires_total"`
	CustomersTotal      int64 `json:"customers_total"`
	AnsweredCustomers   int64 `json:"answered_customers"`
	CompletedCustomers  int64 `json:"completed_customers"`
	NewCustomers        int64 `json:"new_customers"`
	UVTotal             int64 `json:"uv_total"`
	SubmitTotal         int64 `json:"submit_total"`
}

// DashboardLeadTrend 线索趋势
type DashboardLeadTrend struct {
	Day       string `json:"day"`
	Created   int64  `json:"created"`
	Completed int64  `json:"completed"`
}

// DashboardChannelRanking 渠道排行
type DashboardChannelRanking struct {
	ChannelID     string `json:"channel_id"`
	ChannelNumber string `json:"channel_number"`
	ChannelName   string `json:"channel_name"`
	UVCount       int64  `json:"uv_count"`
	SubmitCount   int64  `json:"submit_count"`
	LeadCount     int64  `json:"lead_count"`
}

// normalizeRange 规整统计时间范围，默认最近 7 天
func normalizeRange(days int) (time.Time, time.Time) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	endAt := now.Add(24 * time.Hour).Truncate(24 * time.Hour)
	startAt := endAt.AddDate(0, 0, -days)
	return startAt, endAt
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(days int) (*DashboardOverview, error) {
	startAt, endAt := normalizeRange(days)
	row, err := s.dashboardRepo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}
	return &DashboardOverview{
		ChannelsTotal:       row.ChannelsTotal,
		ActiveChannels:      row.ActiveChannels,
		QuestionnairesTotal: row.QuestionnairesTotal,
		CustomersTotal:      row.CustomersTotal,
		AnsweredCustomers:   row.AnsweredCustomers,
		CompletedCustomers:  row.CompletedCustomers,
		NewCustomers:        row.NewCustomers,
		UVTotal:             row.UVTotal,
		SubmitTotal:         row.SubmitTotal,
	}, nil
}

// GetLeadTrends 获取线索趋势
func (s *DashboardService) GetLeadTrends(days int) ([]DashboardLeadTrend, error) {
	startAt, endAt := normalizeRange(days)
	rows, err := s.dashboardRepo.GetLeadTrends(startAt, endAt)
	if err != nil {
		return nil, err
	}
	trends := make([]DashboardLeadTrend, 0, len(rows))
	for _, row := range rows {
		trends = append(trends, DashboardLeadTrend{
			Day:       row.Day,
			Created:   row.Created,
			Completed: row.Completed,
		})
	}
	return trends, nil
}

// GetTopChannels 获取渠道排行
func (s *DashboardService) GetTopChannels(days, limit int) ([]DashboardChannelRanking, error) {
	startAt, endAt := normalizeRange(days)
	rows, err := s.dashboardRepo.GetTopChannels(startAt, endAt, limit)
	if err != nil {
		return nil, err
	}
	rankings := make([]DashboardChannelRanking, 0, len(rows))
	for _, row := range rows {
		rankings = append(rankings, DashboardChannelRanking{
			ChannelID:     row.ChannelID,
			ChannelNumber: row.ChannelNumber,
			ChannelName:   row.ChannelName,
			UVCount:       row.UVCount,
			SubmitCount:   row.SubmitCount,
			LeadCount:     row.LeadCount,
		})
	}
	return rankings, nil
}
