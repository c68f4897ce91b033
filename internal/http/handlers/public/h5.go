package public

import (
	"errors"
	"strings"

	"github.com/loanlead-next/internal/http/response"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetDefaultChannel 获取默认渠道
// 优先返回最近设置为默认的渠道，其次回退到 CH001
func (h *Handler) GetDefaultChannel(c *gin.Context) {
	channel, err := h.ChannelService.ResolveDefault()
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "未找到默认渠道", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取默认渠道失败", err)
		return
	}
	response.Success(c, gin.H{
		"channel": gin.H{
			"id":            channel.ID,
			"channelNumber": channel.ChannelNumber,
			"channelName":   channel.ChannelName,
			"shortLink":     channel.ShortLinkValue(),
			"isDefault":     channel.IsDefault,
			"isActive":      channel.IsActive,
		},
	})
}

// GetH5Questionnaire 按渠道标识获取问卷
// 渠道标识先按主键匹配再按渠道编号匹配；命中后记一次 UV
func (h *Handler) GetH5Questionnaire(c *gin.Context) {
	channelID := strings.TrimSpace(c.Query("channelId"))
	if channelID == "" {
		respondError(c, response.CodeBadRequest, "缺少渠道ID参数", nil)
		return
	}

	channel, err := h.ChannelService.Resolve(channelID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "渠道不存在", nil)
			return
		}
		if errors.Is(err, service.ErrInvalidParam) {
			respondError(c, response.CodeBadRequest, "缺少渠道ID参数", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取渠道和问卷信息失败", err)
		return
	}

	if !channel.IsActive {
		respondError(c, response.CodeBadRequest, "渠道已停用", nil)
		return
	}
	if channel.QuestionnaireID == nil {
		respondError(c, response.CodeBadRequest, "渠道未绑定问卷", nil)
		return
	}

	questionnaire, err := h.QuestionnaireService.Get(*channel.QuestionnaireID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "问卷不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取渠道和问卷信息失败", err)
		return
	}

	if err := h.ChannelService.RecordVisit(channel); err != nil {
		requestLog(c).Warnw("channel_uv_increment_failed", "channel_id", channel.ID, "error", err)
	}

	response.Success(c, gin.H{
		"channel": gin.H{
			"id":            channel.ID,
			"channelNumber": channel.ChannelNumber,
			"channelName":   channel.ChannelName,
			"shortLink":     channel.ShortLinkValue(),
			"uvCount":       channel.UVCount,
		},
		"questionnaire": questionnaire,
	})
}

// CreateH5Customer 漏斗第一步：提交问卷答案建档
func (h *Handler) CreateH5Customer(c *gin.Context) {
	var req service.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}
	customer, err := h.LeadService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, response.CodeInternal, "提交失败", err)
		return
	}
	response.Success(c, customer)
}

// h5UpdateRequest 漏斗第二步请求，id 在请求体中携带
type h5UpdateRequest struct {
	ID string `json:"id" binding:"required"`
	service.LeadInput
}

// UpdateH5Customer 漏斗第二步：补充个人信息，合并到既有记录
func (h *Handler) UpdateH5Customer(c *gin.Context) {
	var req h5UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "客户ID不能为空", err)
		return
	}
	customer, err := h.LeadService.Update(c.Request.Context(), req.ID, req.LeadInput)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "提交失败", err)
		return
	}
	response.Success(c, customer)
}
