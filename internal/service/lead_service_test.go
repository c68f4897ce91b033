package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newLeadTestEnv(t *testing.T) (*LeadService, repository.ChannelRepository, repository.QuestionnaireRepository, repository.CustomerRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:lead_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Questionnaire{}, &models.Channel{}, &models.Customer{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	channelRepo := repository.NewChannelRepository(db)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	svc := NewLeadService(customerRepo, channelRepo, questionnaireRepo, nil)
	return svc, channelRepo, questionnaireRepo, customerRepo
}

func seedLeadQuestionnaire(t *testing.T, repo repository.QuestionnaireRepository) *models.Questionnaire {
	t.Helper()

	qn := &models.Questionnaire{
		ID:                  uuid.NewString(),
		QuestionnaireNumber: "QN900",
		QuestionnaireName:   "测试问卷",
		Questions: models.QuestionList{
			{
				ID:    "q1",
				Title: "您的年龄是？",
				Options: []models.QuestionOption{
					{ID: "o1", Text: "18-25岁"},
					{ID: "o2", Text: "26-35岁"},
				},
			},
		},
	}
	if err := repo.Create(qn); err != nil {
		t.Fatalf("create questionnaire failed: %v", err)
	}
	return qn
}

func seedLeadChannel(t *testing.T, repo repository.ChannelRepository, number, shortLink string) *models.Channel {
	t.Helper()

	ch := &models.Channel{
		ID:            uuid.NewString(),
		ChannelNumber: number,
		ChannelName:   "测试渠道" + number,
		IsActive:      true,
	}
	if shortLink != "" {
		ch.ShortLink = &shortLink
	}
	if err := repo.Create(ch); err != nil {
		t.Fatalf("create channel failed: %v", err)
	}
	return ch
}

func strPtr(s string) *string { return &s }

func TestLeadTwoStepSubmitCountsOnce(t *testing.T) {
	svc, channelRepo, questionnaireRepo, _ := newLeadTestEnv(t)
	qn := seedLeadQuestionnaire(t, questionnaireRepo)
	ch := seedLeadChannel(t, channelRepo, "CH800", "")
	ctx := context.Background()

	// 第一步：提交问卷答案
	customer, err := svc.Create(ctx, LeadInput{
		QuestionnaireID: &qn.ID,
		ChannelID:       strPtr("CH800"),
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", SelectedOptionID: "o1"},
		},
	})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}
	if customer.Status != constants.CustomerStatusAnswered {
		t.Fatalf("status want answered got %s", customer.Status)
	}
	if customer.SubmissionTime == nil {
		t.Fatalf("submission time should be set on answer submit")
	}

	got, err := channelRepo.GetByID(ch.ID)
	if err != nil || got == nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if got.QuestionnaireSubmitCount != 1 {
		t.Fatalf("submit count after answers want 1 got %d", got.QuestionnaireSubmitCount)
	}

	// 第二步：补全个人信息
	updated, err := svc.Update(ctx, customer.ID, LeadInput{
		CustomerName: strPtr("李四"),
		PhoneNumber:  strPtr("13900139000"),
	})
	if err != nil {
		t.Fatalf("update lead failed: %v", err)
	}
	if updated.Status != constants.CustomerStatusInfoSubmitted {
		t.Fatalf("status want info_submitted got %s", updated.Status)
	}

	// 重复提交个人信息
	if _, err := svc.Update(ctx, customer.ID, LeadInput{IDCard: strPtr("440300199001010000")}); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	got, err = channelRepo.GetByID(ch.ID)
	if err != nil || got == nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if got.QuestionnaireSubmitCount != 1 {
		t.Fatalf("submit count after follow-up updates want 1 got %d", got.QuestionnaireSubmitCount)
	}
}

func TestLeadStartedThenAnswerTriggersCount(t *testing.T) {
	svc, channelRepo, _, _ := newLeadTestEnv(t)
	ch := seedLeadChannel(t, channelRepo, "CH801", "")
	ctx := context.Background()

	customer, err := svc.Create(ctx, LeadInput{ChannelID: strPtr("CH801")})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}
	if customer.Status != constants.CustomerStatusStarted {
		t.Fatalf("status want started got %s", customer.Status)
	}

	got, _ := channelRepo.GetByID(ch.ID)
	if got.QuestionnaireSubmitCount != 0 {
		t.Fatalf("submit count before answers want 0 got %d", got.QuestionnaireSubmitCount)
	}

	if _, err := svc.Update(ctx, customer.ID, LeadInput{
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", QuestionTitle: "题目", SelectedOptionID: "o1", SelectedOptionText: "选项"},
		},
	}); err != nil {
		t.Fatalf("update lead failed: %v", err)
	}

	got, _ = channelRepo.GetByID(ch.ID)
	if got.QuestionnaireSubmitCount != 1 {
		t.Fatalf("submit count after answers want 1 got %d", got.QuestionnaireSubmitCount)
	}
}

func TestLeadAttributionByShortLink(t *testing.T) {
	svc, channelRepo, _, _ := newLeadTestEnv(t)
	ch := seedLeadChannel(t, channelRepo, "CH802", "https://loan.example.com/t802")
	ctx := context.Background()

	if _, err := svc.Create(ctx, LeadInput{
		ChannelLink: strPtr("https://loan.example.com/t802"),
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", SelectedOptionID: "o1"},
		},
	}); err != nil {
		t.Fatalf("create lead failed: %v", err)
	}

	got, _ := channelRepo.GetByID(ch.ID)
	if got.QuestionnaireSubmitCount != 1 {
		t.Fatalf("submit count via short link want 1 got %d", got.QuestionnaireSubmitCount)
	}
}

func TestLeadUnknownChannelStillSaved(t *testing.T) {
	svc, channelRepo, _, customerRepo := newLeadTestEnv(t)
	ch := seedLeadChannel(t, channelRepo, "CH803", "")
	ctx := context.Background()

	customer, err := svc.Create(ctx, LeadInput{
		ChannelID: strPtr("CH999"),
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", SelectedOptionID: "o1"},
		},
	})
	if err != nil {
		t.Fatalf("create lead with unknown channel failed: %v", err)
	}

	saved, err := customerRepo.GetByID(customer.ID)
	if err != nil || saved == nil {
		t.Fatalf("lead should be persisted despite attribution miss: %v", err)
	}
	if saved.ChannelID != "CH999" {
		t.Fatalf("channel id want CH999 got %s", saved.ChannelID)
	}

	got, _ := channelRepo.GetByID(ch.ID)
	if got.QuestionnaireSubmitCount != 0 {
		t.Fatalf("unrelated channel should not be counted, got %d", got.QuestionnaireSubmitCount)
	}
}

func TestLeadAnswerRelabelledFromQuestionnaire(t *testing.T) {
	svc, _, questionnaireRepo, _ := newLeadTestEnv(t)
	qn := seedLeadQuestionnaire(t, questionnaireRepo)
	ctx := context.Background()

	customer, err := svc.Create(ctx, LeadInput{
		QuestionnaireID: &qn.ID,
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", QuestionTitle: "过期标题", SelectedOptionID: "o1", SelectedOptionText: "过期选项"},
			{QuestionID: "q99", QuestionTitle: "问卷外题目", SelectedOptionID: "ox", SelectedOptionText: "客户端文案"},
		},
	})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}

	if len(customer.SelectedQuestions) != 2 {
		t.Fatalf("snapshot length want 2 got %d", len(customer.SelectedQuestions))
	}
	if customer.SelectedQuestions[0].QuestionTitle != "您的年龄是？" {
		t.Fatalf("question title should come from questionnaire, got %s", customer.SelectedQuestions[0].QuestionTitle)
	}
	if customer.SelectedQuestions[0].SelectedOptionText != "18-25岁" {
		t.Fatalf("option text should come from questionnaire, got %s", customer.SelectedQuestions[0].SelectedOptionText)
	}
	// 问卷中不存在的题目保留客户端文案
	if customer.SelectedQuestions[1].QuestionTitle != "问卷外题目" {
		t.Fatalf("unknown question should keep client title, got %s", customer.SelectedQuestions[1].QuestionTitle)
	}
}

func TestLeadSnapshotFrozenAfterQuestionnaireEdit(t *testing.T) {
	svc, _, questionnaireRepo, customerRepo := newLeadTestEnv(t)
	qn := seedLeadQuestionnaire(t, questionnaireRepo)
	ctx := context.Background()

	customer, err := svc.Create(ctx, LeadInput{
		QuestionnaireID: &qn.ID,
		SelectedQuestions: []SelectedAnswerInput{
			{QuestionID: "q1", SelectedOptionID: "o1"},
		},
	})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}

	// 提交后修改问卷文案
	qn.Questions[0].Title = "改版后的标题"
	qn.Questions[0].Options[0].Text = "改版后的选项"
	if err := questionnaireRepo.Update(qn); err != nil {
		t.Fatalf("update questionnaire failed: %v", err)
	}

	saved, err := customerRepo.GetByID(customer.ID)
	if err != nil || saved == nil {
		t.Fatalf("reload customer failed: %v", err)
	}
	if saved.SelectedQuestions[0].QuestionTitle != "您的年龄是？" {
		t.Fatalf("snapshot title should stay frozen, got %s", saved.SelectedQuestions[0].QuestionTitle)
	}
	if saved.SelectedQuestions[0].SelectedOptionText != "18-25岁" {
		t.Fatalf("snapshot option text should stay frozen, got %s", saved.SelectedQuestions[0].SelectedOptionText)
	}
}

func TestLeadUpdateMergesFields(t *testing.T) {
	svc, _, _, _ := newLeadTestEnv(t)
	ctx := context.Background()

	customer, err := svc.Create(ctx, LeadInput{
		Province: strPtr("广东省"),
		City:     strPtr("深圳市"),
	})
	if err != nil {
		t.Fatalf("create lead failed: %v", err)
	}

	updated, err := svc.Update(ctx, customer.ID, LeadInput{
		District: strPtr("南山区"),
	})
	if err != nil {
		t.Fatalf("update lead failed: %v", err)
	}
	if updated.Province != "广东省" || updated.City != "深圳市" {
		t.Fatalf("absent fields should keep old values, got %s/%s", updated.Province, updated.City)
	}
	if updated.District != "南山区" {
		t.Fatalf("district want 南山区 got %s", updated.District)
	}
}

func TestLeadUpdateNotFound(t *testing.T) {
	svc, _, _, _ := newLeadTestEnv(t)

	if _, err := svc.Update(context.Background(), "missing-id", LeadInput{}); err != ErrNotFound {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "200000", want: "200000"},
		{input: " 200,000 ", want: "200000"},
		{input: "200000.50", want: "200000.5"},
		{input: "-100", want: "-100"},
		{input: "二十万", want: "二十万"},
	}
	for _, tc := range cases {
		if got := normalizeAmount(tc.input); got != tc.want {
			t.Fatalf("normalizeAmount(%q) want %q got %q", tc.input, tc.want, got)
		}
	}
}
