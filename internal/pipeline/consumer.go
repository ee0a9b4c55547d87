package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type notificationHandler interface {
	HandleNotification(ctx context.Context, n Notification) error
}

type consumerMetrics interface {
	ObservePipelineEvent(outcome string)
}

// Consumer drains the pipeline queue with a blocking pop loop. Failed
// messages are re-queued with an attempt counter until the retry budget is
// spent, then dropped.
type Consumer struct {
	client     *redis.Client
	queue      string
	handler    notificationHandler
	metrics    consumerMetrics
	maxRetries int
	logger     *zap.Logger
}

// NewConsumer constructs Consumer.
func NewConsumer(client *redis.Client, queue string, handler notificationHandler, metrics consumerMetrics, maxRetries int, logger *zap.Logger) *Consumer {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{client: client, queue: queue, handler: handler, metrics: metrics, maxRetries: maxRetries, logger: logger}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	c.logger.Info("pipeline consumer started", zap.String("queue", c.queue))
	for {
		if ctx.Err() != nil {
			c.logger.Info("pipeline consumer stopped")
			return
		}

		res, err := c.client.BRPop(ctx, 5*time.Second, c.queue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			c.logger.Error("queue pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(res) < 2 {
			continue
		}
		c.process(ctx, []byte(res[1]))
	}
}

func (c *Consumer) process(ctx context.Context, raw []byte) {
	msg, err := DecodeMessage(raw)
	if err != nil {
		c.logger.Error("dropping undecodable message", zap.Error(err))
		c.observe("dropped")
		return
	}

	err = c.handler.HandleNotification(ctx, msg.Body)
	if err == nil {
		c.observe("processed")
		return
	}
	if errors.Is(err, ErrDiscard) {
		c.logger.Warn("discarding message", zap.Error(err))
		c.observe("discarded")
		return
	}

	msg.Attempts++
	if msg.Attempts >= c.maxRetries {
		c.logger.Error("retry budget exhausted, dropping message", zap.Int("attempts", msg.Attempts), zap.Error(err))
		c.observe("dropped")
		return
	}

	encoded, encErr := msg.Encode()
	if encErr != nil {
		c.logger.Error("failed to re-encode message for retry", zap.Error(encErr))
		c.observe("dropped")
		return
	}
	if pushErr := c.client.LPush(ctx, c.queue, encoded).Err(); pushErr != nil {
		c.logger.Error("failed to re-queue message", zap.Error(pushErr))
		c.observe("dropped")
		return
	}
	c.logger.Warn("re-queued message for retry", zap.Int("attempt", msg.Attempts), zap.Error(err))
	c.observe("retried")
}

func (c *Consumer) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.ObservePipelineEvent(outcome)
	}
}
