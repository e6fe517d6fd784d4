package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

func event(aggregateID string, seq uint64, eventType string) *domain.AuditEvent {
	return &domain.AuditEvent{
		Type:          eventType,
		AggregateType: domain.AggregateOrder,
		AggregateID:   aggregateID,
		Seq:           seq,
		OccurredAt:    time.Now(),
	}
}

func TestMemoryLedgerAppendOrdered(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, event("ORD-1", 1, domain.EventOrderCreated)))
	require.NoError(t, ledger.Append(ctx, event("ORD-1", 2, domain.EventOrderCancelled)))
	require.NoError(t, ledger.Append(ctx, event("ORD-2", 1, domain.EventOrderCreated)))

	stream := ledger.Events("ORD-1")
	require.Len(t, stream, 2)
	assert.Equal(t, uint64(1), stream[0].Seq)
	assert.Equal(t, uint64(2), stream[1].Seq)
	assert.Equal(t, 3, ledger.Size())
}

func TestMemoryLedgerReplayIsIdempotent(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, event("ORD-1", 1, domain.EventOrderCreated)))
	require.NoError(t, ledger.Append(ctx, event("ORD-1", 2, domain.EventOrderHeld)))

	// 重放已落账的序号：幂等丢弃，不追加也不报错
	require.NoError(t, ledger.Append(ctx, event("ORD-1", 1, domain.EventOrderCreated)))
	require.NoError(t, ledger.Append(ctx, event("ORD-1", 2, domain.EventOrderHeld)))

	assert.Len(t, ledger.Events("ORD-1"), 2)
}

func TestMemoryLedgerLastSeq(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	last, err := ledger.LastSeq(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), last)

	require.NoError(t, ledger.Append(ctx, event("ORD-1", 1, domain.EventOrderCreated)))
	require.NoError(t, ledger.Append(ctx, event("ORD-1", 2, domain.EventOrderHeld)))

	last, err = ledger.LastSeq(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), last)
}

func TestMemoryLedgerRejectsGap(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, event("ORD-1", 1, domain.EventOrderCreated)))

	err := ledger.Append(ctx, event("ORD-1", 3, domain.EventOrderCancelled))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
	assert.Len(t, ledger.Events("ORD-1"), 1)
}
