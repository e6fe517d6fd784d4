package ledger

import (
	"context"

	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// Fanout 多路账本写入
// 主账本写入失败即整体失败；镜像写入尽力而为，失败仅记录日志，
// 不阻塞交易主链路。
type Fanout struct {
	primary domain.Ledger
	mirrors []domain.Ledger
}

// NewFanout 创建多路账本
func NewFanout(primary domain.Ledger, mirrors ...domain.Ledger) *Fanout {
	return &Fanout{primary: primary, mirrors: mirrors}
}

// Append 追加审计事件。
func (f *Fanout) Append(ctx context.Context, event *domain.AuditEvent) error {
	if err := f.primary.Append(ctx, event); err != nil {
		return err
	}
	for _, mirror := range f.mirrors {
		if err := mirror.Append(ctx, event); err != nil {
			logging.Error(ctx, "Failed to mirror audit event",
				"aggregate_id", event.AggregateID,
				"seq", event.Seq,
				"type", event.Type,
				"error", err,
			)
		}
	}
	return nil
}

// LastSeq 从主账本读取聚合最新落账的序号。
func (f *Fanout) LastSeq(ctx context.Context, aggregateID string) (uint64, error) {
	if reader, ok := f.primary.(domain.SequenceReader); ok {
		return reader.LastSeq(ctx, aggregateID)
	}
	return 0, nil
}
