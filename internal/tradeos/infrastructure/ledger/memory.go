// Package ledger 提供 WORM 审计账本实现：内存账本、MySQL 落库账本、
// Kafka 镜像以及多路复合写入。
package ledger

import (
	"context"
	"sync"

	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// MemoryLedger 内存 WORM 账本
// 按聚合 ID 维护仅追加的事件序列；同一 (AggregateID, Seq) 的重复追加
// 幂等丢弃，序号出现空洞则拒绝。
type MemoryLedger struct {
	mu     sync.RWMutex
	events map[string][]*domain.AuditEvent
}

// NewMemoryLedger 创建内存账本
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{events: make(map[string][]*domain.AuditEvent)}
}

// Append 追加审计事件。
func (l *MemoryLedger) Append(ctx context.Context, event *domain.AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	stream := l.events[event.AggregateID]
	var lastSeq uint64
	if len(stream) > 0 {
		lastSeq = stream[len(stream)-1].Seq
	}

	// 重放：已落账的序号幂等丢弃。
	if event.Seq <= lastSeq {
		return nil
	}
	if event.Seq != lastSeq+1 {
		return domain.NewConflict("ledger gap for aggregate %s: have seq %d, got %d", event.AggregateID, lastSeq, event.Seq)
	}

	l.events[event.AggregateID] = append(stream, event)
	return nil
}

// LastSeq 返回聚合最新落账的序号，无事件时为 0。
func (l *MemoryLedger) LastSeq(ctx context.Context, aggregateID string) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stream := l.events[aggregateID]
	if len(stream) == 0 {
		return 0, nil
	}
	return stream[len(stream)-1].Seq, nil
}

// Events 返回聚合的事件序列副本，按 Seq 升序。
func (l *MemoryLedger) Events(aggregateID string) []*domain.AuditEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	stream := l.events[aggregateID]
	out := make([]*domain.AuditEvent, len(stream))
	copy(out, stream)
	return out
}

// Size 返回账本内事件总数。
func (l *MemoryLedger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, stream := range l.events {
		total += len(stream)
	}
	return total
}
