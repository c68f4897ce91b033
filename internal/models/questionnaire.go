package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// QuestionOption 问卷题选项
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question 问卷题（题 id、标题、选项若干）
type Question struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Options []QuestionOption `json:"options"`
}

// QuestionList 问卷题数组，整体以 JSON 存储
type QuestionList []Question

// Value 实现 driver.Valuer 接口
func (q QuestionList) Value() (driver.Value, error) {
	if q == nil {
		return nil, nil
	}
	return json.Marshal(q)
}

// Scan 实现 sql.Scanner 接口
func (q *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*q = QuestionList{}
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
	return json.Unmarshal(bytes, q)
}

// Questionnaire 问卷表
type Questionnaire struct {
	ID                  string       `gorm:"type:varchar(36);primaryKey" json:"id"`                            // 主键（UUID）
	QuestionnaireNumber string       `gorm:"type:varchar(60);uniqueIndex;not null" json:"questionnaireNumber"` // 问卷编号
	QuestionnaireName   string       `gorm:"type:varchar(120);not null" json:"questionnaireName"`              // 问卷名称
	Remark              string       `gorm:"type:varchar(500)" json:"remark"`                                  // 备注
	Questions           QuestionList `gorm:"type:json" json:"questions"`                                       // 问卷题
	CreatedAt           time.Time    `gorm:"index" json:"createdAt"`                                           // 创建时间
	UpdatedAt           time.Time    `json:"updatedAt"`                                                        // 修改时间
}

// TableName 指定表名
func (Questionnaire) TableName() string {
	return "questionnaires"
}

// QuestionCount 题目数量
func (q *Questionnaire) QuestionCount() int {
	if q == nil {
		return 0
	}
	return len(q.Questions)
}

// FindQuestion 按题目 ID 查找题目
func (q *Questionnaire) FindQuestion(questionID string) *Question {
	if q == nil {
		return nil
	}
	for i := range q.Questions {
		if q.Questions[i].ID == questionID {
			return &q.Questions[i]
		}
	}
	return nil
}

// FindOption 按选项 ID 查找选项
func (q *Question) FindOption(optionID string) *QuestionOption {
	if q == nil {
		return nil
	}
	for i := range q.Options {
		if q.Options[i].ID == optionID {
			return &q.Options[i]
		}
	}
	return nil
}
