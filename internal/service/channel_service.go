package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/loanlead-next/internal/constants"
	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/models"
	"github.com/loanlead-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelService 渠道服务
type ChannelService struct {
	channelRepo       repository.ChannelRepository
	questionnaireRepo repository.QuestionnaireRepository
}

// NewChannelService 创建渠道服务实例
func NewChannelService(channelRepo repository.ChannelRepository, questionnaireRepo repository.QuestionnaireRepository) *ChannelService {
	return &ChannelService{
		channelRepo:       channelRepo,
		questionnaireRepo: questionnaireRepo,
	}
}

// ChannelInput 渠道创建/更新入参
type ChannelInput struct {
	ChannelNumber   string
	ChannelName     string
	QuestionnaireID *string
	Remark          string
	ShortLink       string
	Tags            []string
	DownloadLink    string
	IsDefault       bool
	IsActive        *bool
}

// List 渠道列表
func (s *ChannelService) List(filter repository.ChannelListFilter) ([]models.Channel, int64, error) {
	return s.channelRepo.List(filter)
}

// Get 根据 ID 获取渠道
func (s *ChannelService) Get(id string) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrNotFound
	}
	return channel, nil
}

// Resolve 按标识解析渠道：先按主键 ID，再按渠道编号
func (s *ChannelService) Resolve(identifier string) (*models.Channel, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrInvalidParam
	}
	channel, err := s.channelRepo.GetByID(identifier)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		channel, err = s.channelRepo.GetByNumber(identifier)
		if err != nil {
			return nil, err
		}
	}
	if channel == nil {
		return nil, ErrNotFound
	}
	return channel, nil
}

// ResolveDefault 获取默认渠道
// 优先使用最近标记为默认的渠道，其次回退到 CH001
func (s *ChannelService) ResolveDefault() (*models.Channel, error) {
	channel, err := s.channelRepo.GetDefault()
	if err != nil {
		return nil, err
	}
	if channel == nil {
		channel, err = s.channelRepo.GetByNumber(constants.DefaultChannelNumber)
		if err != nil {
			return nil, err
		}
	}
	if channel == nil {
		return nil, ErrNotFound
	}
	return channel, nil
}

// RecordVisit 记录一次渠道访问（UV 计数原子递增）
// 渠道在此期间被删除时返回 ErrNotFound
func (s *ChannelService) RecordVisit(channel *models.Channel) error {
	if channel == nil {
		return ErrInvalidParam
	}
	if err := s.channelRepo.IncrementUV(channel.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	channel.UVCount++
	return nil
}

// RecordSubmission 记录一次问卷完成（提交计数原子递增）
// 渠道在此期间被删除时返回 ErrNotFound
func (s *ChannelService) RecordSubmission(channelID string) error {
	if strings.TrimSpace(channelID) == "" {
		return ErrInvalidParam
	}
	if err := s.channelRepo.IncrementSubmitCount(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Create 创建渠道
// 渠道编号为空时按时间自动生成；标记默认时取消其他渠道的默认标记
func (s *ChannelService) Create(input ChannelInput) (*models.Channel, error) {
	name := strings.TrimSpace(input.ChannelName)
	if name == "" {
		return nil, ErrInvalidParam
	}

	number := strings.TrimSpace(input.ChannelNumber)
	if number == "" {
		number = s.generateChannelNumber()
	}
	count, err := s.channelRepo.CountByNumber(number, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrNumberConflict
	}

	shortLink := strings.TrimSpace(input.ShortLink)
	if shortLink != "" {
		count, err = s.channelRepo.CountByShortLink(shortLink, nil)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrShortLinkConflict
		}
	}

	if input.QuestionnaireID != nil && *input.QuestionnaireID != "" {
		qn, err := s.questionnaireRepo.GetByID(*input.QuestionnaireID)
		if err != nil {
			return nil, err
		}
		if qn == nil {
			return nil, ErrNotFound
		}
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	channel := &models.Channel{
		ID:              uuid.NewString(),
		ChannelNumber:   number,
		ChannelName:     name,
		QuestionnaireID: normalizeIDRef(input.QuestionnaireID),
		Remark:          strings.TrimSpace(input.Remark),
		Tags:            input.Tags,
		DownloadLink:    strings.TrimSpace(input.DownloadLink),
		IsDefault:       input.IsDefault,
		IsActive:        isActive,
	}
	if shortLink != "" {
		channel.ShortLink = &shortLink
	}

	if err := s.channelRepo.Create(channel); err != nil {
		return nil, err
	}
	if channel.IsDefault {
		if err := s.channelRepo.ClearDefaultExcept(channel.ID); err != nil {
			logger.Warnw("clear_default_channel_failed", "channel_id", channel.ID, "error", err)
		}
	}
	return channel, nil
}

// Update 更新渠道
func (s *ChannelService) Update(id string, input ChannelInput) (*models.Channel, error) {
	channel, err := s.channelRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if channel == nil {
		return nil, ErrNotFound
	}

	if number := strings.TrimSpace(input.ChannelNumber); number != "" && number != channel.ChannelNumber {
		count, err := s.channelRepo.CountByNumber(number, &channel.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrNumberConflict
		}
		channel.ChannelNumber = number
	}
	if name := strings.TrimSpace(input.ChannelName); name != "" {
		channel.ChannelName = name
	}

	shortLink := strings.TrimSpace(input.ShortLink)
	if shortLink != "" && shortLink != channel.ShortLinkValue() {
		count, err := s.channelRepo.CountByShortLink(shortLink, &channel.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrShortLinkConflict
		}
	}
	if shortLink == "" {
		channel.ShortLink = nil
	} else {
		channel.ShortLink = &shortLink
	}

	if input.QuestionnaireID != nil && *input.QuestionnaireID != "" {
		qn, err := s.questionnaireRepo.GetByID(*input.QuestionnaireID)
		if err != nil {
			return nil, err
		}
		if qn == nil {
			return nil, ErrNotFound
		}
	}
	channel.QuestionnaireID = normalizeIDRef(input.QuestionnaireID)

	channel.Remark = strings.TrimSpace(input.Remark)
	channel.Tags = input.Tags
	channel.DownloadLink = strings.TrimSpace(input.DownloadLink)
	channel.IsDefault = input.IsDefault
	if input.IsActive != nil {
		channel.IsActive = *input.IsActive
	}

	if err := s.channelRepo.Update(channel); err != nil {
		return nil, err
	}
	if channel.IsDefault {
		if err := s.channelRepo.ClearDefaultExcept(channel.ID); err != nil {
			logger.Warnw("clear_default_channel_failed", "channel_id", channel.ID, "error", err)
		}
	}
	return channel, nil
}

// Delete 删除渠道（硬删除）
func (s *ChannelService) Delete(id string) error {
	channel, err := s.channelRepo.GetByID(id)
	if err != nil {
		return err
	}
	if channel == nil {
		return ErrNotFound
	}
	return s.channelRepo.Delete(id)
}

// generateChannelNumber 按时间生成渠道编号
func (s *ChannelService) generateChannelNumber() string {
	return fmt.Sprintf("%s%s", constants.ChannelNumberPrefix, time.Now().Format("20060102150405"))
}

func normalizeIDRef(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
