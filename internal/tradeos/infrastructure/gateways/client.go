// Package gateways 提供各外部协作方网关的内存实现，
// 用于单进程部署与测试环境。
package gateways

import (
	"context"
	"sync"

	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// MemoryClientGateway 客户主数据网关内存实现
type MemoryClientGateway struct {
	mu      sync.RWMutex
	gates   map[string]domain.AccountGates
	wallets map[string]map[string]bool
}

// NewMemoryClientGateway 创建客户网关
func NewMemoryClientGateway() *MemoryClientGateway {
	return &MemoryClientGateway{
		gates:   make(map[string]domain.AccountGates),
		wallets: make(map[string]map[string]bool),
	}
}

// SetGates 设置账户准入标志
func (g *MemoryClientGateway) SetGates(accountID string, gates domain.AccountGates) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gates[accountID] = gates
}

// WhitelistWallet 将钱包地址加入账户白名单
func (g *MemoryClientGateway) WhitelistWallet(accountID, address string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.wallets[accountID] == nil {
		g.wallets[accountID] = make(map[string]bool)
	}
	g.wallets[accountID][address] = true
}

// GetAccountGates 获取账户准入标志
func (g *MemoryClientGateway) GetAccountGates(ctx context.Context, accountID string) (*domain.AccountGates, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	gates, ok := g.gates[accountID]
	if !ok {
		return nil, domain.NewNotFound("account not found: %s", accountID)
	}
	return &gates, nil
}

// VerifyWallet 校验钱包地址是否在账户白名单内
func (g *MemoryClientGateway) VerifyWallet(ctx context.Context, accountID, address string) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.wallets[accountID][address], nil
}
