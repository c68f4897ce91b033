package worker

import (
	"context"
	"encoding/json"

	"github.com/loanlead-next/internal/logger"
	"github.com/loanlead-next/internal/provider"
	"github.com/loanlead-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskLeadAttributionMiss, c.handleLeadAttributionMiss)
}

// handleLeadAttributionMiss 归因失败审计
// 落一条可检索的结构化日志；若客户随后补传了可解析的渠道标识则跳过
func (c *Consumer) handleLeadAttributionMiss(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_attribution_miss_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LeadAttributionMissPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_attribution_miss_unmarshal_failed", "error", err)
		return err
	}
	if payload.CustomerID == "" {
		logger.Debugw("worker_attribution_miss_skip_invalid_payload")
		return nil
	}

	customer, err := c.CustomerRepo.GetByID(payload.CustomerID)
	if err != nil {
		logger.Warnw("worker_attribution_miss_fetch_customer_failed", "customer_id", payload.CustomerID, "error", err)
		return err
	}
	if customer == nil {
		logger.Debugw("worker_attribution_miss_skip_customer_not_found", "customer_id", payload.CustomerID)
		return nil
	}

	if customer.ChannelID != "" {
		channel, err := c.ChannelRepo.GetByNumber(customer.ChannelID)
		if err == nil && channel != nil {
			logger.Debugw("worker_attribution_miss_skip_resolved",
				"customer_id", customer.ID,
				"channel_number", channel.ChannelNumber,
			)
			return nil
		}
	}

	logger.Warnw("lead_attribution_miss_audit",
		"customer_id", payload.CustomerID,
		"channel_id", payload.ChannelID,
		"channel_link", payload.ChannelLink,
		"customer_status", customer.Status,
	)
	return nil
}
