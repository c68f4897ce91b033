package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SelectedQuestion 客户已选择的题目和答案快照
// 提交时固化题目和选项文本，后续修改问卷不影响历史记录
type SelectedQuestion struct {
	QuestionID         string `json:"questionId"`
	QuestionTitle      string `json:"questionTitle"`
	SelectedOptionID   string `json:"selectedOptionId"`
	SelectedOptionText string `json:"selectedOptionText"`
}

// SelectedQuestionList 答案快照数组，整体以 JSON 存储
type SelectedQuestionList []SelectedQuestion

// Value 实现 driver.Valuer 接口
func (s SelectedQuestionList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *SelectedQuestionList) Scan(value interface{}) error {
	if value == nil {
		*s = SelectedQuestionList{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// Customer 客户（线索）表
type Customer struct {
	ID                string               `gorm:"type:varchar(36);primaryKey" json:"id"`         // 主键（UUID）
	CustomerName      string               `gorm:"type:varchar(120)" json:"customerName"`         // 客户名称
	ApplicationAmount string               `gorm:"type:varchar(60)" json:"applicationAmount"`     // 申请额度
	Province          string               `gorm:"type:varchar(60);index" json:"province"`        // 省
	City              string               `gorm:"type:varchar(60);index" json:"city"`            // 市
	District          string               `gorm:"type:varchar(60);index" json:"district"`        // 区
	PhoneNumber       string               `gorm:"type:varchar(30)" json:"phoneNumber"`           // 手机号
	IDCard            string               `gorm:"type:varchar(30)" json:"idCard"`                // 身份证
	Status            string               `gorm:"type:varchar(20);not null;index" json:"status"` // 填写状态（started/answered/info_submitted）
	SubmissionTime    *time.Time           `gorm:"index" json:"submissionTime"`                   // 答卷提交时间
	QuestionnaireID   *string              `gorm:"type:varchar(36);index" json:"questionnaireId"` // 问卷 ID
	SelectedQuestions SelectedQuestionList `gorm:"type:json" json:"selectedQuestions"`            // 选择的题目和答案
	ChannelID         string               `gorm:"type:varchar(60);index" json:"channelId"`       // 来源渠道编号
	ChannelLink       string               `gorm:"type:varchar(500)" json:"channelLink"`          // 来源渠道链接
	CreatedAt         time.Time            `gorm:"index" json:"createdAt"`                        // 创建时间
	UpdatedAt         time.Time            `json:"updatedAt"`                                     // 修改时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}

// HasAnswers 是否已有答案快照
func (c *Customer) HasAnswers() bool {
	return c != nil && len(c.SelectedQuestions) > 0
}
