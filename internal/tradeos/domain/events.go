package domain

import (
	"context"
	"time"
)

// 审计事件类型常量，对应引擎的每一次状态变更。
const (
	EventOrderCreated      = "order.created"
	EventOrderHeld         = "order.held"
	EventOrderReleased     = "order.released"
	EventOrderCancelled    = "order.cancelled"
	EventOrderFilled       = "order.filled"
	EventOrderPartialFill  = "order.partially_filled"
	EventBlockBuilt        = "block.built"
	EventBlockRouted       = "block.routed"
	EventBlockAllocated    = "block.allocated"
	EventExecutionRecorded = "execution.recorded"
	EventTradeErrorOpened  = "trade_error.opened"
	EventTradeErrorClosed  = "trade_error.closed"
	EventConfirmGenerated  = "confirm.generated"
	EventBlotterExported   = "blotter.exported"
)

// 聚合类型常量，审计事件按聚合保证因果有序。
const (
	AggregateOrder      = "order"
	AggregateBlock      = "block"
	AggregateTradeError = "trade_error"
	AggregateDesk       = "desk"
)

// AuditEvent WORM 账本事件
// 仅追加，不可修改或删除；(AggregateID, Seq) 为因果顺序键，
// 重放同一 (AggregateID, Seq) 的追加必须幂等。
type AuditEvent struct {
	// 事件类型
	Type string `json:"type"`
	// 聚合类型
	AggregateType string `json:"aggregate_type"`
	// 聚合 ID
	AggregateID string `json:"aggregate_id"`
	// 聚合内单调递增的序号
	Seq uint64 `json:"seq"`
	// 事件负载
	Payload map[string]any `json:"payload,omitempty"`
	// 事件时间
	OccurredAt time.Time `json:"occurred_at"`
}

// Ledger WORM 审计账本接口
// 实现必须保证同一聚合内事件按 Seq 有序落账，且重复追加幂等。
type Ledger interface {
	Append(ctx context.Context, event *AuditEvent) error
}

// SequenceReader 可读取聚合最新落账序号的账本。
// 进程重启后序号分配从账本恢复，避免重新计数后的追加
// 被幂等规则丢弃。
type SequenceReader interface {
	LastSeq(ctx context.Context, aggregateID string) (uint64, error)
}
