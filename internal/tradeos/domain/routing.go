package domain

import (
	"context"
	"fmt"
)

// RoutingEngine 路由引擎
// 在不可逆的对外派发时点重新校验合规状态（订单创建后状态可能已变化），
// 再按资产类别分发到执行适配器。
type RoutingEngine struct {
	compliance ComplianceGateway
	adapters   map[AssetClass]ExecutionAdapter
}

// NewRoutingEngine 创建路由引擎
func NewRoutingEngine(compliance ComplianceGateway, adapters ...ExecutionAdapter) *RoutingEngine {
	byClass := make(map[AssetClass]ExecutionAdapter, len(adapters))
	for _, adapter := range adapters {
		byClass[adapter.AssetClass()] = adapter
	}
	return &RoutingEngine{compliance: compliance, adapters: byClass}
}

// Route 将块派发到选定场所并返回块级执行记录。
// IPO 冷静期内的标的拒绝路由，除非全部成员订单均为 IOI（非约束性意向）。
func (e *RoutingEngine) Route(ctx context.Context, block *Block, orders []*Order, quote VenueQuote) ([]*Execution, error) {
	coolingOff := false
	for _, order := range orders {
		snapshot, err := e.compliance.GetSnapshot(ctx, order.AccountID, block.InstrumentID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch compliance snapshot for account %s: %w", order.AccountID, err)
		}
		if snapshot.IPOCoolingOff {
			coolingOff = true
			break
		}
	}
	if coolingOff && !allIOI(orders) {
		return nil, NewRoutingRejected("instrument %s is in IPO cooling-off window", block.InstrumentID)
	}

	adapter, ok := e.adapters[block.AssetClass]
	if !ok {
		return nil, NewRoutingRejected("no execution adapter for asset class %s", block.AssetClass)
	}

	executions, err := adapter.Execute(ctx, block, orders, quote)
	if err != nil {
		return nil, fmt.Errorf("adapter execution failed for block %s on %s: %w", block.BlockID, quote.Venue, err)
	}
	if len(executions) == 0 {
		return nil, NewRoutingRejected("venue %s returned no executions for block %s", quote.Venue, block.BlockID)
	}
	return executions, nil
}

// allIOI 全部成员订单是否均为一级市场意向单。
func allIOI(orders []*Order) bool {
	for _, order := range orders {
		if order.Details.PrimaryMarketMode != PrimaryMarketModeIOI {
			return false
		}
	}
	return true
}
