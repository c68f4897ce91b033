package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newChannelTestEnv(t *testing.T) (*ChannelService, repository.ChannelRepository, repository.QuestionnaireRepository) {
	t.Helper()

	dsn := fmt.Sprintf("file:channel_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Questionnaire{}, &models.Channel{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	channelRepo := repository.NewChannelRepository(db)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	return NewChannelService(channelRepo, questionnaireRepo), channelRepo, questionnaireRepo
}

func TestChannelCreateGeneratesNumber(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	channel, err := svc.Create(ChannelInput{ChannelName: "自动编号渠道"})
	if err != nil {
		t.Fatalf("create channel failed: %v", err)
	}
	if !strings.HasPrefix(channel.ChannelNumber, constants.ChannelNumberPrefix) {
		t.Fatalf("generated number should start with %s, got %s", constants.ChannelNumberPrefix, channel.ChannelNumber)
	}
	if !channel.IsActive {
		t.Fatalf("channel should default to active")
	}
}

func TestChannelNumberConflict(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	if _, err := svc.Create(ChannelInput{ChannelNumber: "CH700", ChannelName: "渠道A"}); err != nil {
		t.Fatalf("create first channel failed: %v", err)
	}
	if _, err := svc.Create(ChannelInput{ChannelNumber: "CH700", ChannelName: "渠道B"}); err != ErrNumberConflict {
		t.Fatalf("want ErrNumberConflict got %v", err)
	}
}

func TestChannelShortLinkConflict(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	link := "https://loan.example.com/dup"
	if _, err := svc.Create(ChannelInput{ChannelNumber: "CH701", ChannelName: "渠道A", ShortLink: link}); err != nil {
		t.Fatalf("create first channel failed: %v", err)
	}
	if _, err := svc.Create(ChannelInput{ChannelNumber: "CH702", ChannelName: "渠道B", ShortLink: link}); err != ErrShortLinkConflict {
		t.Fatalf("want ErrShortLinkConflict got %v", err)
	}
}

func TestChannelCreateUnknownQuestionnaire(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	missing := uuid.NewString()
	if _, err := svc.Create(ChannelInput{ChannelName: "渠道", QuestionnaireID: &missing}); err != ErrNotFound {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestChannelDefaultSwitch(t *testing.T) {
	svc, channelRepo, _ := newChannelTestEnv(t)

	first, err := svc.Create(ChannelInput{ChannelNumber: "CH710", ChannelName: "旧默认", IsDefault: true})
	if err != nil {
		t.Fatalf("create first channel failed: %v", err)
	}
	second, err := svc.Create(ChannelInput{ChannelNumber: "CH711", ChannelName: "新默认", IsDefault: true})
	if err != nil {
		t.Fatalf("create second channel failed: %v", err)
	}

	resolved, err := svc.ResolveDefault()
	if err != nil {
		t.Fatalf("resolve default failed: %v", err)
	}
	if resolved.ID != second.ID {
		t.Fatalf("default channel want %s got %s", second.ChannelNumber, resolved.ChannelNumber)
	}

	reloaded, err := channelRepo.GetByID(first.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload first channel failed: %v", err)
	}
	if reloaded.IsDefault {
		t.Fatalf("previous default flag should be cleared")
	}
}

func TestResolveDefaultFallsBackToCH001(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	if _, err := svc.ResolveDefault(); err != ErrNotFound {
		t.Fatalf("empty table want ErrNotFound got %v", err)
	}

	if _, err := svc.Create(ChannelInput{ChannelNumber: constants.DefaultChannelNumber, ChannelName: "保底渠道"}); err != nil {
		t.Fatalf("create fallback channel failed: %v", err)
	}
	resolved, err := svc.ResolveDefault()
	if err != nil {
		t.Fatalf("resolve default failed: %v", err)
	}
	if resolved.ChannelNumber != constants.DefaultChannelNumber {
		t.Fatalf("fallback channel want %s got %s", constants.DefaultChannelNumber, resolved.ChannelNumber)
	}
}

func TestChannelResolveByIDOrNumber(t *testing.T) {
	svc, _, _ := newChannelTestEnv(t)

	channel, err := svc.Create(ChannelInput{ChannelNumber: "CH720", ChannelName: "渠道"})
	if err != nil {
		t.Fatalf("create channel failed: %v", err)
	}

	byID, err := svc.Resolve(channel.ID)
	if err != nil || byID.ID != channel.ID {
		t.Fatalf("resolve by id failed: %v", err)
	}
	byNumber, err := svc.Resolve("CH720")
	if err != nil || byNumber.ID != channel.ID {
		t.Fatalf("resolve by number failed: %v", err)
	}
	if _, err := svc.Resolve("CH-missing"); err != ErrNotFound {
		t.Fatalf("want ErrNotFound got %v", err)
	}
}

func TestRecordVisitIncrementsUV(t *testing.T) {
	svc, channelRepo, _ := newChannelTestEnv(t)

	channel, err := svc.Create(ChannelInput{ChannelNumber: "CH730", ChannelName: "渠道"})
	if err != nil {
		t.Fatalf("create channel failed: %v", err)
	}

	if err := svc.RecordVisit(channel); err != nil {
		t.Fatalf("first visit failed: %v", err)
	}
	if err := svc.RecordVisit(channel); err != nil {
		t.Fatalf("second visit failed: %v", err)
	}
	if channel.UVCount != 2 {
		t.Fatalf("in-memory uv count want 2 got %d", channel.UVCount)
	}

	reloaded, err := channelRepo.GetByID(channel.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if reloaded.UVCount != 2 {
		t.Fatalf("persisted uv count want 2 got %d", reloaded.UVCount)
	}
}

func TestRecordVisitDeletedChannel(t *testing.T) {
	svc, channelRepo, _ := newChannelTestEnv(t)

	channel, err := svc.Create(ChannelInput{ChannelNumber: "CH735", ChannelName: "渠道"})
	if err != nil {
		t.Fatalf("create channel failed: %v", err)
	}
	if err := channelRepo.Delete(channel.ID); err != nil {
		t.Fatalf("delete channel failed: %v", err)
	}

	// 渠道被删后，计数接口上报 NotFound 而不是静默丢失
	if err := svc.RecordVisit(channel); err != ErrNotFound {
		t.Fatalf("visit on deleted channel want ErrNotFound got %v", err)
	}
	if err := svc.RecordSubmission(channel.ID); err != ErrNotFound {
		t.Fatalf("submission on deleted channel want ErrNotFound got %v", err)
	}
}

func TestChannelUpdateClearsShortLink(t *testing.T) {
	svc, channelRepo, _ := newChannelTestEnv(t)

	channel, err := svc.Create(ChannelInput{ChannelNumber: "CH740", ChannelName: "渠道", ShortLink: "https://loan.example.com/t740"})
	if err != nil {
		t.Fatalf("create channel failed: %v", err)
	}

	if _, err := svc.Update(channel.ID, ChannelInput{ChannelName: "渠道"}); err != nil {
		t.Fatalf("update channel failed: %v", err)
	}
	reloaded, err := channelRepo.GetByID(channel.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload channel failed: %v", err)
	}
	if reloaded.ShortLink != nil {
		t.Fatalf("short link should be cleared, got %s", *reloaded.ShortLink)
	}
}
