package gateways

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// custodyAccount 单一托管账户
// 持有账户级互斥锁：同一账户的仓位与现金变动原子生效。
type custodyAccount struct {
	mu        sync.Mutex
	cash      decimal.Decimal
	positions map[string]decimal.Decimal
}

// MemoryCustodyGateway 托管网关内存实现
type MemoryCustodyGateway struct {
	mu       sync.RWMutex
	accounts map[string]*custodyAccount
}

// NewMemoryCustodyGateway 创建托管网关
func NewMemoryCustodyGateway() *MemoryCustodyGateway {
	return &MemoryCustodyGateway{accounts: make(map[string]*custodyAccount)}
}

func (g *MemoryCustodyGateway) account(accountID string) *custodyAccount {
	g.mu.Lock()
	defer g.mu.Unlock()
	acct, ok := g.accounts[accountID]
	if !ok {
		acct = &custodyAccount{positions: make(map[string]decimal.Decimal)}
		g.accounts[accountID] = acct
	}
	return acct
}

// Deposit 入金
func (g *MemoryCustodyGateway) Deposit(accountID string, amount decimal.Decimal) {
	acct := g.account(accountID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.cash = acct.cash.Add(amount)
}

// SetPosition 直接设置仓位（测试与初始化用）
func (g *MemoryCustodyGateway) SetPosition(accountID, instrumentID string, quantity decimal.Decimal) {
	acct := g.account(accountID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.positions[instrumentID] = quantity
}

// GetSnapshot 获取托管账户快照
func (g *MemoryCustodyGateway) GetSnapshot(ctx context.Context, accountID, instrumentID string) (*domain.CustodySnapshot, error) {
	acct := g.account(accountID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	positions := make(map[string]decimal.Decimal, len(acct.positions))
	for id, qty := range acct.positions {
		positions[id] = qty
	}
	return &domain.CustodySnapshot{Cash: acct.cash, Positions: positions}, nil
}

// UpdatePosition 原子更新账户仓位与现金
func (g *MemoryCustodyGateway) UpdatePosition(ctx context.Context, update domain.PositionUpdate) error {
	acct := g.account(update.AccountID)
	acct.mu.Lock()
	defer acct.mu.Unlock()
	acct.positions[update.InstrumentID] = acct.positions[update.InstrumentID].Add(update.Quantity)
	acct.cash = acct.cash.Add(update.CashDelta)
	return nil
}
