package gateways

import (
	"context"
	"sync"

	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// MemorySurveillanceGateway 监察网关内存实现
type MemorySurveillanceGateway struct {
	mu       sync.RWMutex
	insiders map[string]bool
}

// NewMemorySurveillanceGateway 创建监察网关
func NewMemorySurveillanceGateway() *MemorySurveillanceGateway {
	return &MemorySurveillanceGateway{insiders: make(map[string]bool)}
}

// MarkInsider 登记账户对标的的内幕限制
func (g *MemorySurveillanceGateway) MarkInsider(accountID, instrumentID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.insiders[accountID+"|"+instrumentID] = true
}

// IsInsider 账户对标的是否存在内幕交易限制
func (g *MemorySurveillanceGateway) IsInsider(ctx context.Context, accountID, instrumentID string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.insiders[accountID+"|"+instrumentID], nil
}

// MemoryRegDeskGateway 监管报送网关内存实现
type MemoryRegDeskGateway struct {
	mu       sync.RWMutex
	confirms []*domain.ConfirmRecord
}

// NewMemoryRegDeskGateway 创建监管报送网关
func NewMemoryRegDeskGateway() *MemoryRegDeskGateway {
	return &MemoryRegDeskGateway{}
}

// LogConfirm 登记成交确认书
func (g *MemoryRegDeskGateway) LogConfirm(ctx context.Context, confirm *domain.ConfirmRecord) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.confirms = append(g.confirms, confirm)
	logging.Info(ctx, "Confirm logged to regulatory desk",
		"order_id", confirm.OrderID,
		"sha256", confirm.SHA256,
	)
	return nil
}

// Confirms 返回已登记的确认书副本
func (g *MemoryRegDeskGateway) Confirms() []*domain.ConfirmRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*domain.ConfirmRecord, len(g.confirms))
	copy(out, g.confirms)
	return out
}

// MemoryFeeScheduleGateway 费率表网关内存实现
type MemoryFeeScheduleGateway struct {
	mu    sync.RWMutex
	rules map[string]domain.MutualFundRules
}

// NewMemoryFeeScheduleGateway 创建费率表网关
func NewMemoryFeeScheduleGateway() *MemoryFeeScheduleGateway {
	return &MemoryFeeScheduleGateway{rules: make(map[string]domain.MutualFundRules)}
}

// SetRules 设置基金费率规则
func (g *MemoryFeeScheduleGateway) SetRules(symbol string, rules domain.MutualFundRules) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rules[symbol] = rules
}

// GetMutualFundRules 获取共同基金费率规则；未配置时返回零值规则。
func (g *MemoryFeeScheduleGateway) GetMutualFundRules(ctx context.Context, symbol string) (*domain.MutualFundRules, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	rules := g.rules[symbol]
	return &rules, nil
}
