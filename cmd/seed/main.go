package main

import (
	"time"

	"github.com/loanlead-next/internal/config"
	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/models"

	"github.com/google/uuid"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 默认管理员 / 默认问卷 / 默认渠道
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}
	if err := models.InitDefaultData(); err != nil {
		stdLog.Fatalf("Failed to init default data: %v", err)
	}

	// 添加问卷
	questionnaires := []models.Questionnaire{
		{
			ID:                  uuid.NewString(),
			QuestionnaireNumber: "QN002",
			QuestionnaireName:   "小微企业经营贷问卷",
			Remark:              "面向个体工商户与小微企业主",
			Questions: models.QuestionList{
				{
					ID:    "q1",
					Title: "您的企业经营年限是？",
					Options: []models.QuestionOption{
						{ID: "o1", Text: "1年以内"},
						{ID: "o2", Text: "1-3年"},
						{ID: "o3", Text: "3-5年"},
						{ID: "o4", Text: "5年以上"},
					},
				},
				{
					ID:    "q2",
					Title: "您的年营业额范围是？",
					Options: []models.QuestionOption{
						{ID: "o1", Text: "50万元以下"},
						{ID: "o2", Text: "50-200万元"},
						{ID: "o3", Text: "200-500万元"},
						{ID: "o4", Text: "500万元以上"},
					},
				},
				{
					ID:    "q3",
					Title: "您是否有房产或车辆可用于抵押？",
					Options: []models.QuestionOption{
						{ID: "o1", Text: "有房产"},
						{ID: "o2", Text: "有车辆"},
						{ID: "o3", Text: "两者都有"},
						{ID: "o4", Text: "暂无"},
					},
				},
			},
		},
		{
			ID:                  uuid.NewString(),
			QuestionnaireNumber: "QN003",
			QuestionnaireName:   "消费分期意向问卷",
			Remark:              "短链投放用",
			Questions: models.QuestionList{
				{
					ID:    "q1",
					Title: "您的职业类型是？",
					Options: []models.QuestionOption{
						{ID: "o1", Text: "上班族"},
						{ID: "o2", Text: "自由职业"},
						{ID: "o3", Text: "个体经营"},
						{ID: "o4", Text: "其他"},
					},
				},
				{
					ID:    "q2",
					Title: "您期望的分期期数是？",
					Options: []models.QuestionOption{
						{ID: "o1", Text: "3期"},
						{ID: "o2", Text: "6期"},
						{ID: "o3", Text: "12期"},
						{ID: "o4", Text: "24期及以上"},
					},
				},
			},
		},
	}

	questionnaireIDs := map[string]string{}
	for _, qn := range questionnaires {
		var existing models.Questionnaire
		if err := models.DB.Where("questionnaire_number = ?", qn.QuestionnaireNumber).First(&existing).Error; err != nil {
			if err := models.DB.Create(&qn).Error; err != nil {
				stdLog.Printf("Failed to create questionnaire %s: %v", qn.QuestionnaireNumber, err)
				continue
			}
			stdLog.Printf("Created questionnaire: %s", qn.QuestionnaireNumber)
			questionnaireIDs[qn.QuestionnaireNumber] = qn.ID
		} else {
			stdLog.Printf("Questionnaire already exists: %s", qn.QuestionnaireNumber)
			questionnaireIDs[qn.QuestionnaireNumber] = existing.ID
		}
	}

	// 添加渠道
	type channelSeed struct {
		number      string
		name        string
		qnNumber    string
		shortLink   string
		tags        models.StringArray
		remark      string
		downloadURL string
	}
	channelSeeds := []channelSeed{
		{
			number:      "CH100",
			name:        "抖音信息流A计划",
			qnNumber:    "QN002",
			shortLink:   "https://loan.example.com/dy-a",
			tags:        models.StringArray{"短视频", "信息流"},
			remark:      "投放时段 9:00-22:00",
			downloadURL: "https://loan.example.com/app/android",
		},
		{
			number:      "CH101",
			name:        "微信朋友圈B计划",
			qnNumber:    "QN003",
			shortLink:   "https://loan.example.com/wx-b",
			tags:        models.StringArray{"社交", "朋友圈"},
			remark:      "",
			downloadURL: "",
		},
		{
			number:    "CH102",
			name:      "短信召回渠道",
			qnNumber:  "QN003",
			shortLink: "https://loan.example.com/sms",
			tags:      models.StringArray{"召回"},
		},
	}

	channelNumbers := map[string]bool{}
	for _, seed := range channelSeeds {
		var existing models.Channel
		if err := models.DB.Where("channel_number = ?", seed.number).First(&existing).Error; err == nil {
			stdLog.Printf("Channel already exists: %s", seed.number)
			channelNumbers[seed.number] = true
			continue
		}
		var questionnaireID *string
		if id, ok := questionnaireIDs[seed.qnNumber]; ok {
			qid := id
			questionnaireID = &qid
		}
		shortLink := seed.shortLink
		ch := models.Channel{
			ID:              uuid.NewString(),
			ChannelNumber:   seed.number,
			ChannelName:     seed.name,
			QuestionnaireID: questionnaireID,
			Remark:          seed.remark,
			ShortLink:       &shortLink,
			Tags:            seed.tags,
			DownloadLink:    seed.downloadURL,
			IsActive:        true,
		}
		if err := models.DB.Create(&ch).Error; err != nil {
			stdLog.Printf("Failed to create channel %s: %v", seed.number, err)
			continue
		}
		stdLog.Printf("Created channel: %s", seed.number)
		channelNumbers[seed.number] = true
	}

	// 添加示例客户（覆盖三种填写状态）
	var sampleQnID *string
	if id, ok := questionnaireIDs["QN002"]; ok {
		qid := id
		sampleQnID = &qid
	}
	submittedAt := time.Now().Add(-2 * time.Hour)
	customers := []models.Customer{
		{
			ID:          uuid.NewString(),
			Status:      constants.CustomerStatusStarted,
			ChannelID:   "CH100",
			ChannelLink: "https://loan.example.com/dy-a",
		},
		{
			ID:              uuid.NewString(),
			Status:          constants.CustomerStatusAnswered,
			SubmissionTime:  &submittedAt,
			QuestionnaireID: sampleQnID,
			SelectedQuestions: models.SelectedQuestionList{
				{QuestionID: "q1", QuestionTitle: "您的企业经营年限是？", SelectedOptionID: "o3", SelectedOptionText: "3-5年"},
				{QuestionID: "q2", QuestionTitle: "您的年营业额范围是？", SelectedOptionID: "o2", SelectedOptionText: "50-200万元"},
			},
			ChannelID:   "CH100",
			ChannelLink: "https://loan.example.com/dy-a",
		},
		{
			ID:                uuid.NewString(),
			CustomerName:      "张三",
			ApplicationAmount: "200000",
			Province:          "广东省",
			City:              "深圳市",
			District:          "南山区",
			PhoneNumber:       "13800138000",
			IDCard:            "440300199001010000",
			Status:            constants.CustomerStatusInfoSubmitted,
			SubmissionTime:    &submittedAt,
			QuestionnaireID:   sampleQnID,
			SelectedQuestions: models.SelectedQuestionList{
				{QuestionID: "q1", QuestionTitle: "您的企业经营年限是？", SelectedOptionID: "o4", SelectedOptionText: "5年以上"},
				{QuestionID: "q2", QuestionTitle: "您的年营业额范围是？", SelectedOptionID: "o3", SelectedOptionText: "200-500万元"},
				{QuestionID: "q3", QuestionTitle: "您是否有房产或车辆可用于抵押？", SelectedOptionID: "o1", SelectedOptionText: "有房产"},
			},
			ChannelID:   "CH100",
			ChannelLink: "https://loan.example.com/dy-a",
		},
	}

	var customerCount int64
	models.DB.Model(&models.Customer{}).Count(&customerCount)
	if customerCount > 0 {
		stdLog.Printf("Customers already exist, skip sample customers")
	} else {
		for _, cust := range customers {
			if err := models.DB.Create(&cust).Error; err != nil {
				stdLog.Printf("Failed to create sample customer: %v", err)
				continue
			}
		}
		// 同步渠道统计（2 条已答卷线索，3 次访问）
		if channelNumbers["CH100"] {
			models.DB.Model(&models.Channel{}).
				Where("channel_number = ?", "CH100").
				Updates(map[string]interface{}{
					"uv_count":                   3,
					"questionnaire_submit_count": 2,
				})
		}
		stdLog.Printf("Created %d sample customers", len(customers))
	}

	stdLog.Println("Seed data created successfully!")
}
