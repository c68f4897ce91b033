package admin

import (
	"errors"
	"strings"

	"github.com/loanlead-next/internal/http/response"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"
	"github.com/loanlead-next/internal/service"

	"github.com/gin-gonic/gin"
)

// customerListItem 列表项，附带问卷与渠道名称
type customerListItem struct {
	models.Customer
	QuestionnaireName string `json:"questionnaireName"`
	ChannelName       string `json:"channelName"`
}

// channelNames 按渠道编号批量查询渠道名称，查不到的留空
func (h *Handler) channelNames(numbers []string) map[string]string {
	names := make(map[string]string, len(numbers))
	for _, number := range numbers {
		if _, ok := names[number]; ok {
			continue
		}
		name := ""
		if ch, err := h.ChannelRepo.GetByNumber(number); err == nil && ch != nil {
			name = ch.ChannelName
		}
		names[number] = name
	}
	return names
}

func buildCustomerListFilter(c *gin.Context, page, pageSize int) repository.CustomerListFilter {
	return repository.CustomerListFilter{
		Page:          page,
		PageSize:      pageSize,
		Search:        c.Query("search"),
		Province:      c.Query("province"),
		City:          c.Query("city"),
		District:      c.Query("district"),
		ChannelID:     c.Query("channelId"),
		Status:        c.Query("status"),
		SubmittedFrom: parseDateQuery(c.Query("startDate"), false),
		SubmittedTo:   parseDateQuery(c.Query("endDate"), true),
	}
}

// GetCustomers 获取客户列表
func (h *Handler) GetCustomers(c *gin.Context) {
	page, pageSize := paginationQuery(c)

	customers, total, err := h.LeadService.List(buildCustomerListFilter(c, page, pageSize))
	if err != nil {
		respondError(c, response.CodeInternal, "获取客户列表失败", err)
		return
	}

	questionnaireIDs := make([]string, 0, len(customers))
	channelNumbers := make([]string, 0, len(customers))
	for _, customer := range customers {
		if customer.QuestionnaireID != nil {
			questionnaireIDs = append(questionnaireIDs, *customer.QuestionnaireID)
		}
		if customer.ChannelID != "" {
			channelNumbers = append(channelNumbers, customer.ChannelID)
		}
	}
	questionnaireNames := h.questionnaireNames(questionnaireIDs)
	channelNames := h.channelNames(channelNumbers)

	items := make([]customerListItem, 0, len(customers))
	for _, customer := range customers {
		item := customerListItem{Customer: customer}
		if customer.QuestionnaireID != nil {
			item.QuestionnaireName = questionnaireNames[*customer.QuestionnaireID]
		}
		if customer.ChannelID != "" {
			item.ChannelName = channelNames[customer.ChannelID]
		}
		items = append(items, item)
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetCustomer 获取客户详情
func (h *Handler) GetCustomer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少客户ID", nil)
		return
	}
	customer, err := h.LeadService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取客户失败", err)
		return
	}
	response.Success(c, customer)
}

// CreateCustomer 创建客户（后台录入）
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req service.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}
	customer, err := h.LeadService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, response.CodeInternal, "创建客户失败", err)
		return
	}
	response.Success(c, customer)
}

// UpdateCustomer 更新客户（后台编辑，合并语义）
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少客户ID", nil)
		return
	}

	var req service.LeadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	customer, err := h.LeadService.Update(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "更新客户失败", err)
		return
	}
	response.Success(c, customer)
}

// DeleteCustomer 删除客户
func (h *Handler) DeleteCustomer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少客户ID", nil)
		return
	}
	if err := h.LeadService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除客户失败", err)
		return
	}
	response.SuccessWithMsg(c, "客户删除成功", nil)
}

// ExportCustomers 按问卷分组导出客户
func (h *Handler) ExportCustomers(c *gin.Context) {
	grouped, total, err := h.LeadService.ExportGrouped(buildCustomerListFilter(c, 0, 0))
	if err != nil {
		respondError(c, response.CodeInternal, "导出客户失败", err)
		return
	}
	response.Success(c, gin.H{
		"groupedCustomers": grouped,
		"total":            total,
	})
}
