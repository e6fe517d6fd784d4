package gateways

import (
	"context"
	"sync"
	"time"

	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// ComplianceAlert 受限标的命中告警
// 与订单拦截结果独立：命中即登记，供合规席位旁路审阅。
type ComplianceAlert struct {
	Symbol    string    `json:"symbol"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// MemoryComplianceGateway 合规网关内存实现
type MemoryComplianceGateway struct {
	mu         sync.RWMutex
	restricted map[string]string
	snapshots  map[string]domain.ComplianceSnapshot
	alerts     []ComplianceAlert
	overrides  []domain.OverrideRecord
}

// NewMemoryComplianceGateway 创建合规网关
func NewMemoryComplianceGateway() *MemoryComplianceGateway {
	return &MemoryComplianceGateway{
		restricted: make(map[string]string),
		snapshots:  make(map[string]domain.ComplianceSnapshot),
	}
}

func snapshotKey(accountID, instrumentID string) string {
	return accountID + "|" + instrumentID
}

// RestrictSymbol 将标的加入受限名单
func (g *MemoryComplianceGateway) RestrictSymbol(symbol, reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restricted[symbol] = reason
}

// SetSnapshot 设置账户+标的维度的合规快照
func (g *MemoryComplianceGateway) SetSnapshot(accountID, instrumentID string, snapshot domain.ComplianceSnapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshots[snapshotKey(accountID, instrumentID)] = snapshot
}

// GetSnapshot 获取合规快照；未配置时返回全通过的零值快照。
func (g *MemoryComplianceGateway) GetSnapshot(ctx context.Context, accountID, instrumentID string) (*domain.ComplianceSnapshot, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snapshot := g.snapshots[snapshotKey(accountID, instrumentID)]
	return &snapshot, nil
}

// IsSymbolRestricted 检查标的是否受限，命中时登记告警。
func (g *MemoryComplianceGateway) IsSymbolRestricted(ctx context.Context, symbol string) (*domain.RestrictionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	reason, ok := g.restricted[symbol]
	if !ok {
		return &domain.RestrictionResult{}, nil
	}
	g.alerts = append(g.alerts, ComplianceAlert{
		Symbol:    symbol,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	logging.Warn(ctx, "Restricted symbol hit", "symbol", symbol, "reason", reason)
	return &domain.RestrictionResult{Restricted: true, Reason: reason}, nil
}

// RecordOverride 登记最佳执行覆盖决策
func (g *MemoryComplianceGateway) RecordOverride(ctx context.Context, record domain.OverrideRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.overrides = append(g.overrides, record)
	logging.Info(ctx, "Best execution override recorded",
		"block_id", record.BlockID,
		"venue", record.Venue,
		"approver_id", record.ApproverID,
	)
	return nil
}

// Alerts 返回已登记的告警副本
func (g *MemoryComplianceGateway) Alerts() []ComplianceAlert {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ComplianceAlert, len(g.alerts))
	copy(out, g.alerts)
	return out
}

// Overrides 返回已登记的覆盖决策副本
func (g *MemoryComplianceGateway) Overrides() []domain.OverrideRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]domain.OverrideRecord, len(g.overrides))
	copy(out, g.overrides)
	return out
}
