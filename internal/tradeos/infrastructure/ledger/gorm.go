package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditEventModel 审计账本表
// 仅插入，业务上不提供更新与删除；(aggregate_id, seq) 唯一约束
// 使重放同一事件的写入自然幂等。
type AuditEventModel struct {
	ID            uint64         `gorm:"primaryKey;autoIncrement"`
	Type          string         `gorm:"column:type;type:varchar(40);not null"`
	AggregateType string         `gorm:"column:aggregate_type;type:varchar(20);index;not null"`
	AggregateID   string         `gorm:"column:aggregate_id;type:varchar(32);uniqueIndex:uk_aggregate_seq;not null"`
	Seq           uint64         `gorm:"column:seq;uniqueIndex:uk_aggregate_seq;not null"`
	Payload       map[string]any `gorm:"column:payload;serializer:json"`
	OccurredAt    time.Time      `gorm:"column:occurred_at;not null"`
	CreatedAt     time.Time
}

// TableName 指定表名
func (AuditEventModel) TableName() string {
	return "audit_ledger"
}

// GormLedger MySQL WORM 账本
type GormLedger struct {
	db *gorm.DB
}

// NewGormLedger 创建 MySQL 账本并迁移账本表
func NewGormLedger(db *gorm.DB) (*GormLedger, error) {
	if err := db.AutoMigrate(&AuditEventModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit ledger table: %w", err)
	}
	return &GormLedger{db: db}, nil
}

// Append 追加审计事件，重复 (aggregate_id, seq) 幂等丢弃。
func (l *GormLedger) Append(ctx context.Context, event *domain.AuditEvent) error {
	row := AuditEventModel{
		Type:          event.Type,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Seq:           event.Seq,
		Payload:       event.Payload,
		OccurredAt:    event.OccurredAt,
	}
	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to append audit event %s/%d: %w", event.AggregateID, event.Seq, err)
	}
	return nil
}

// LastSeq 返回聚合最新落账的序号，无事件时为 0。
func (l *GormLedger) LastSeq(ctx context.Context, aggregateID string) (uint64, error) {
	var last uint64
	err := l.db.WithContext(ctx).
		Model(&AuditEventModel{}).
		Where("aggregate_id = ?", aggregateID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read last seq for aggregate %s: %w", aggregateID, err)
	}
	return last, nil
}
