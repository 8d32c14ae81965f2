package messaging

import (
	"context"

	"github.com/wyfcoding/fraudreview/internal/review/domain"
	"github.com/wyfcoding/fraudreview/pkg/logger"
	"github.com/wyfcoding/fraudreview/pkg/mq"
)

// kafkaPublisher 基于 Kafka 的事件发布者实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建 Kafka 事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

// Publish 发布事件。失败只记日志不回传——变更事件是旁路，
// 不允许反向影响已经成功的写入。
func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	if err := p.producer.SendMessage(ctx, topic, key, event); err != nil {
		logger.Warn(ctx, "Failed to publish domain event", "topic", topic, "key", key, "error", err)
	}
	return nil
}

// noopPublisher 事件发布关闭时的空实现
type noopPublisher struct{}

// NewNoopPublisher 创建空事件发布者
func NewNoopPublisher() domain.EventPublisher {
	return &noopPublisher{}
}

func (p *noopPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return nil
}
