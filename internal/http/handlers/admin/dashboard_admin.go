package admin

import (
	"strconv"

	"github.com/loanlead-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetDashboard 获取仪表盘统计
func (h *Handler) GetDashboard(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	overview, err := h.DashboardService.GetOverview(days)
	if err != nil {
		respondError(c, response.CodeInternal, "获取仪表盘统计失败", err)
		return
	}
	trends, err := h.DashboardService.GetLeadTrends(days)
	if err != nil {
		respondError(c, response.CodeInternal, "获取仪表盘统计失败", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	topChannels, err := h.DashboardService.GetTopChannels(days, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "获取仪表盘统计失败", err)
		return
	}

	response.Success(c, gin.H{
		"overview":     overview,
		"lead_trends":  trends,
		"top_channels": topChannels,
	})
}
