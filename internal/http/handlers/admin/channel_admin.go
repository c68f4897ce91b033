package admin

import (
	"errors"
	"strings"
	"time"

	"github.com/loanlead-next/internal/http/response"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
)

// channelListItem 列表项，附带绑定问卷名称
type channelListItem struct {
	models.Channel
	QuestionnaireName string `json:"questionnaireName"`
}

// questionnaireNames 批量查询问卷名称，查不到的留空
func (h *Handler) questionnaireNames(ids []string) map[string]string {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		name := ""
		if qn, err := h.QuestionnaireRepo.GetByID(id); err == nil && qn != nil {
			name = qn.QuestionnaireName
		}
		names[id] = name
	}
	return names
}

// ChannelRequest 渠道创建/更新请求
type ChannelRequest struct {
	ChannelNumber   string   `json:"channelNumber"`
	ChannelName     string   `json:"channelName"`
	QuestionnaireID *string  `json:"questionnaireId"`
	Remark          string   `json:"remark"`
	ShortLink       string   `json:"shortLink"`
	Tags            []string `json:"tags"`
	DownloadLink    string   `json:"downloadLink"`
	IsDefault       bool     `json:"isDefault"`
	IsActive        *bool    `json:"isActive"`
}

func (r ChannelRequest) toInput() service.ChannelInput {
	return service.ChannelInput{
		ChannelNumber:   r.ChannelNumber,
		ChannelName:     r.ChannelName,
		QuestionnaireID: r.QuestionnaireID,
		Remark:          r.Remark,
		ShortLink:       r.ShortLink,
		Tags:            r.Tags,
		DownloadLink:    r.DownloadLink,
		IsDefault:       r.IsDefault,
		IsActive:        r.IsActive,
	}
}

// parseDateQuery 解析日期查询参数（支持 RFC3339 与 2006-01-02）
func parseDateQuery(raw string, endOfDay bool) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	return nil
}

// GetChannels 获取渠道列表
func (h *Handler) GetChannels(c *gin.Context) {
	page, pageSize := paginationQuery(c)

	filter := repository.ChannelListFilter{
		Page:        page,
		PageSize:    pageSize,
		Search:      c.Query("search"),
		CreatedFrom: parseDateQuery(c.Query("startDate"), false),
		CreatedTo:   parseDateQuery(c.Query("endDate"), true),
	}
	if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
		value := isActive == "true" || isActive == "1"
		filter.IsActive = &value
	}

	channels, total, err := h.ChannelService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取渠道列表失败", err)
		return
	}

	ids := make([]string, 0, len(channels))
	for _, ch := range channels {
		if ch.QuestionnaireID != nil {
			ids = append(ids, *ch.QuestionnaireID)
		}
	}
	names := h.questionnaireNames(ids)

	items := make([]channelListItem, 0, len(channels))
	for _, ch := range channels {
		item := channelListItem{Channel: ch}
		if ch.QuestionnaireID != nil {
			item.QuestionnaireName = names[*ch.QuestionnaireID]
		}
		items = append(items, item)
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetChannel 获取渠道详情
func (h *Handler) GetChannel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少渠道ID", nil)
		return
	}
	channel, err := h.ChannelService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "渠道不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取渠道失败", err)
		return
	}
	response.Success(c, channel)
}

// CreateChannel 创建渠道
func (h *Handler) CreateChannel(c *gin.Context) {
	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	channel, err := h.ChannelService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidParam):
			respondError(c, response.CodeBadRequest, "渠道名称不能为空", nil)
		case errors.Is(err, service.ErrNumberConflict):
			respondError(c, response.CodeConflict, "渠道编号已存在", nil)
		case errors.Is(err, service.ErrShortLinkConflict):
			respondError(c, response.CodeConflict, "短链接已被占用", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeBadRequest, "绑定的问卷不存在", nil)
		default:
			respondError(c, response.CodeInternal, "创建渠道失败", err)
		}
		return
	}
	response.Success(c, channel)
}

// UpdateChannel 更新渠道
func (h *Handler) UpdateChannel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少渠道ID", nil)
		return
	}

	var req ChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	channel, err := h.ChannelService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "渠道不存在", nil)
		case errors.Is(err, service.ErrNumberConflict):
			respondError(c, response.CodeConflict, "渠道编号已存在", nil)
		case errors.Is(err, service.ErrShortLinkConflict):
			respondError(c, response.CodeConflict, "短链接已被占用", nil)
		default:
			respondError(c, response.CodeInternal, "更新渠道失败", err)
		}
		return
	}
	response.Success(c, channel)
}

// DeleteChannel 删除渠道
func (h *Handler) DeleteChannel(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少渠道ID", nil)
		return
	}
	if err := h.ChannelService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "渠道不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除渠道失败", err)
		return
	}
	response.SuccessWithMsg(c, "渠道删除成功", nil)
}
