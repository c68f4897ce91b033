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

// QuestionnaireRequest 问卷创建/更新请求
type QuestionnaireRequest struct {
	QuestionnaireNumber string              `json:"questionnaireNumber"`
	QuestionnaireName   string              `json:"questionnaireName"`
	Remark              string              `json:"remark"`
	Questions           models.QuestionList `json:"questions"`
}

func (r QuestionnaireRequest) toInput() service.QuestionnaireInput {
	return service.QuestionnaireInput{
		QuestionnaireNumber: r.QuestionnaireNumber,
		QuestionnaireName:   r.QuestionnaireName,
		Remark:              r.Remark,
		Questions:           r.Questions,
	}
}

// questionnaireListItem 列表项，附带题目数量
type questionnaireListItem struct {
	models.Questionnaire
	QuestionCount int `json:"questionCount"`
}

// GetQuestionnaires 获取问卷列表
func (h *Handler) GetQuestionnaires(c *gin.Context) {
	page, pageSize := paginationQuery(c)

	filter := repository.QuestionnaireListFilter{
		Page:        page,
		PageSize:    pageSize,
		Search:      c.Query("search"),
		CreatedFrom: parseDateQuery(c.Query("startDate"), false),
		CreatedTo:   parseDateQuery(c.Query("endDate"), true),
	}

	questionnaires, total, err := h.QuestionnaireService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "获取问卷列表失败", err)
		return
	}

	items := make([]questionnaireListItem, 0, len(questionnaires))
	for _, qn := range questionnaires {
		items = append(items, questionnaireListItem{
			Questionnaire: qn,
			QuestionCount: qn.QuestionCount(),
		})
	}
	response.SuccessWithPage(c, items, response.NewPagination(page, pageSize, total))
}

// GetQuestionnaire 获取问卷详情
func (h *Handler) GetQuestionnaire(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少问卷ID", nil)
		return
	}
	questionnaire, err := h.QuestionnaireService.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "问卷不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "获取问卷失败", err)
		return
	}
	response.Success(c, questionnaire)
}

// CreateQuestionnaire 创建问卷
func (h *Handler) CreateQuestionnaire(c *gin.Context) {
	var req QuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	questionnaire, err := h.QuestionnaireService.Create(req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidParam):
			respondError(c, response.CodeBadRequest, "问卷编号和名称不能为空", nil)
		case errors.Is(err, service.ErrNumberConflict):
			respondError(c, response.CodeConflict, "问卷编号已存在", nil)
		default:
			respondError(c, response.CodeInternal, "创建问卷失败", err)
		}
		return
	}
	response.Success(c, questionnaire)
}

// UpdateQuestionnaire 更新问卷
func (h *Handler) UpdateQuestionnaire(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少问卷ID", nil)
		return
	}

	var req QuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数不合法", err)
		return
	}

	questionnaire, err := h.QuestionnaireService.Update(id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "问卷不存在", nil)
		case errors.Is(err, service.ErrNumberConflict):
			respondError(c, response.CodeConflict, "问卷编号已存在", nil)
		default:
			respondError(c, response.CodeInternal, "更新问卷失败", err)
		}
		return
	}
	response.Success(c, questionnaire)
}

// DeleteQuestionnaire 删除问卷
func (h *Handler) DeleteQuestionnaire(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少问卷ID", nil)
		return
	}
	if err := h.QuestionnaireService.Delete(id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "问卷不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "删除问卷失败", err)
		return
	}
	response.SuccessWithMsg(c, "问卷删除成功", nil)
}

// CopyQuestionnaire 复制问卷
func (h *Handler) CopyQuestionnaire(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		respondError(c, response.CodeBadRequest, "缺少问卷ID", nil)
		return
	}
	clone, err := h.QuestionnaireService.Copy(id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "问卷不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "复制问卷失败", err)
		return
	}
	response.Success(c, clone)
}
