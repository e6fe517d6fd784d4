package domain

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// AllocationMethodProRata 按比例分摊
const AllocationMethodProRata = "PRO_RATA"

// Allocation 单一订单的分摊结果
type Allocation struct {
	OrderID  string          `json:"order_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// AllocationResult 块分摊结果
// 不变量：全部分摊数量之和恒等于块的已执行总量，不允许舍入损耗。
type AllocationResult struct {
	Method      string       `json:"method"`
	Allocations []Allocation `json:"allocations"`
}

// AllocationEngine 分摊引擎
// 将块级执行按最大余数法分摊回成员订单，并通过托管网关更新仓位与现金。
type AllocationEngine struct {
	custody CustodyGateway
}

// NewAllocationEngine 创建分摊引擎
func NewAllocationEngine(custody CustodyGateway) *AllocationEngine {
	return &AllocationEngine{custody: custody}
}

// Allocate 按比例分摊块的已执行数量。
// 舍入余数按最大小数残差分配，残差并列时按订单 ID 升序取先，
// 保证分摊之和与执行总量严格相等。
func (e *AllocationEngine) Allocate(ctx context.Context, block *Block, orders []*Order, method string) (*AllocationResult, error) {
	if method != AllocationMethodProRata {
		return nil, NewValidation("unsupported allocation method: %s", method)
	}
	if !block.HasExecutions() {
		return nil, NewValidation("block %s has no executions to allocate", block.BlockID)
	}
	if len(orders) != len(block.OrderIDs) {
		return nil, NewValidation("block %s expects %d orders, got %d", block.BlockID, len(block.OrderIDs), len(orders))
	}

	executed := block.ExecutedQuantity()
	vwap := block.ExecutedVWAP()
	unit := quantityUnit(block.AssetClass)

	ordered := make(map[string]*Order, len(orders))
	for _, order := range orders {
		ordered[order.OrderID] = order
	}

	// 第一轮：按请求数量占比切分，向下取整到数量步长。
	type share struct {
		orderID  string
		base     decimal.Decimal
		residual decimal.Decimal
	}
	shares := make([]share, 0, len(block.OrderIDs))
	distributed := decimal.Zero
	for _, orderID := range block.OrderIDs {
		order, ok := ordered[orderID]
		if !ok {
			return nil, NewValidation("order %s is missing from allocation input for block %s", orderID, block.BlockID)
		}
		raw := executed.Mul(order.Quantity).Div(block.TotalQty)
		units := raw.Div(unit).Floor()
		base := units.Mul(unit)
		shares = append(shares, share{
			orderID:  orderID,
			base:     base,
			residual: raw.Sub(base),
		})
		distributed = distributed.Add(base)
	}

	// 第二轮：最大余数法派发剩余步长，残差并列按订单 ID 升序。
	remainder := executed.Sub(distributed)
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := shares[order[a]].residual, shares[order[b]].residual
		if !ra.Equal(rb) {
			return ra.GreaterThan(rb)
		}
		return shares[order[a]].orderID < shares[order[b]].orderID
	})

	for _, idx := range order {
		if remainder.LessThan(unit) {
			break
		}
		shares[idx].base = shares[idx].base.Add(unit)
		remainder = remainder.Sub(unit)
	}
	// 亚步长残量（执行总量不是步长整数倍时）并入残差最大的订单，确保总量严格守恒。
	if remainder.IsPositive() {
		shares[order[0]].base = shares[order[0]].base.Add(remainder)
	}

	result := &AllocationResult{Method: method}
	for _, orderID := range block.OrderIDs {
		for _, s := range shares {
			if s.orderID != orderID {
				continue
			}
			result.Allocations = append(result.Allocations, Allocation{
				OrderID:  orderID,
				Quantity: s.base,
				Price:    vwap,
			})
		}
	}

	// 托管更新：买入增仓减现金，卖出减仓增现金。
	for _, alloc := range result.Allocations {
		member := ordered[alloc.OrderID]
		qtyDelta := alloc.Quantity
		cashDelta := alloc.Quantity.Mul(alloc.Price).Neg()
		if member.Side == SideSell {
			qtyDelta = qtyDelta.Neg()
			cashDelta = cashDelta.Neg()
		}
		update := PositionUpdate{
			AccountID:    member.AccountID,
			InstrumentID: block.InstrumentID,
			Quantity:     qtyDelta,
			CashDelta:    cashDelta,
			AvgPrice:     alloc.Price,
		}
		if err := e.custody.UpdatePosition(ctx, update); err != nil {
			return nil, fmt.Errorf("failed to update custody position for account %s: %w", member.AccountID, err)
		}
	}

	return result, nil
}

// quantityUnit 各资产类别的最小分摊步长。
func quantityUnit(ac AssetClass) decimal.Decimal {
	switch ac {
	case AssetClassCrypto:
		return decimal.New(1, -8)
	case AssetClassMutualFund:
		return decimal.New(1, -3)
	default:
		return decimal.New(1, 0)
	}
}
