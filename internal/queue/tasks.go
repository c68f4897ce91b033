package queue

import (
	"encoding/json"

	"github.com/loanlead-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskLeadAttributionMiss 渠道归因失败审计任务
	TaskLeadAttributionMiss = constants.TaskLeadAttributionMiss
)

// LeadAttributionMissPayload 归因失败审计任务载荷
type LeadAttributionMissPayload struct {
	CustomerID  string `json:"customer_id"`
	ChannelID   string `json:"channel_id"`
	ChannelLink string `json:"channel_link"`
}

// NewLeadAttributionMissTask 创建归因失败审计任务
func NewLeadAttributionMissTask(payload LeadAttributionMissPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAttributionMiss, body), nil
}
