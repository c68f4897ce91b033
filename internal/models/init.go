package models

import (
	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin 初始化默认管理员账号
func InitDefaultAdmin(name, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)
	if count > 0 {
		return nil
	}

	if name == "" {
		name = "admin"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "name", name)
		logger.Warnw("default_admin_password_change_required", "name", name)
	} else {
		logger.Warnw("default_admin_created", "name", name, "password_hidden", true)
	}
	return nil
}

// InitDefaultData 初始化默认问卷和默认渠道
func InitDefaultData() error {
	var qnCount int64
	DB.Model(&Questionnaire{}).Count(&qnCount)
	if qnCount == 0 {
		qn := Questionnaire{
			ID:                  uuid.NewString(),
			QuestionnaireNumber: "QN001",
			QuestionnaireName:   "贷款申请问卷",
			Remark:              "默认贷款申请问卷",
			Questions: QuestionList{
				{
					ID:    "q1",
					Title: "您的年龄是？",
					Options: []QuestionOption{
						{ID: "o1", Text: "18-25岁"},
						{ID: "o2", Text: "26-35岁"},
						{ID: "o3", Text: "36-45岁"},
						{ID: "o4", Text: "46岁以上"},
					},
				},
				{
					ID:    "q2",
					Title: "您的月收入范围是？",
					Options: []QuestionOption{
						{ID: "o1", Text: "5000元以下"},
						{ID: "o2", Text: "5000-10000元"},
						{ID: "o3", Text: "10000-20000元"},
						{ID: "o4", Text: "20000元以上"},
					},
				},
			},
		}
		if err := DB.Create(&qn).Error; err != nil {
			return err
		}
		logger.Infow("default_questionnaire_created", "questionnaire_number", qn.QuestionnaireNumber)
	}

	var chCount int64
	DB.Model(&Channel{}).Count(&chCount)
	if chCount == 0 {
		var qn Questionnaire
		var questionnaireID *string
		if err := DB.Order("created_at asc").First(&qn).Error; err == nil {
			questionnaireID = &qn.ID
		}
		shortLink := "https://loan.example.com/ch001"
		ch := Channel{
			ID:              uuid.NewString(),
			ChannelNumber:   constants.DefaultChannelNumber,
			ChannelName:     "默认渠道",
			QuestionnaireID: questionnaireID,
			Remark:          "默认测试渠道",
			ShortLink:       &shortLink,
			IsDefault:       true,
			IsActive:        true,
		}
		if err := DB.Create(&ch).Error; err != nil {
			return err
		}
		logger.Infow("default_channel_created", "channel_number", ch.ChannelNumber)
	}
	return nil
}
