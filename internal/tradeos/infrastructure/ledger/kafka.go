package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// KafkaMirror 审计事件 Kafka 镜像
// 以聚合 ID 为分区键，同一聚合的事件在分区内保持 Seq 顺序，
// 供下游监控与重建消费。
type KafkaMirror struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaMirror 创建 Kafka 镜像
func NewKafkaMirror(brokers []string, topic string) *KafkaMirror {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	return &KafkaMirror{writer: writer, topic: topic}
}

// Append 将审计事件发布到镜像主题。
func (m *KafkaMirror) Append(ctx context.Context, event *domain.AuditEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event %s/%d: %w", event.AggregateID, event.Seq, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: data,
	}
	if err := m.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish audit event %s/%d: %w", event.AggregateID, event.Seq, err)
	}
	return nil
}

// Close 关闭底层 writer
func (m *KafkaMirror) Close() error {
	return m.writer.Close()
}
