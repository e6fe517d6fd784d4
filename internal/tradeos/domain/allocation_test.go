package domain_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/gateways"
)

func buyOrder(orderID, accountID string, qty int64) *domain.Order {
	return domain.NewOrder(orderID, "CLI-1", accountID, "TRD-1",
		domain.SideBuy, "AAPL", domain.AssetClassEquity,
		decimal.NewFromInt(qty), domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{})
}

func blockWithExecution(orders []*domain.Order, executedQty, price string) *domain.Block {
	total := decimal.Zero
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		total = total.Add(o.Quantity)
		ids = append(ids, o.OrderID)
	}
	block := domain.NewBlock("BLK-1", domain.AssetClassEquity, "AAPL", domain.SideBuy, ids, total)
	block.RecordExecutions([]*domain.Execution{{
		ExecutionID: "EXE-1",
		BlockID:     block.BlockID,
		Venue:       "NYSE",
		VenueExecID: "NYSE-1",
		Quantity:    decimal.RequireFromString(executedQty),
		Price:       decimal.RequireFromString(price),
		ExecutedAt:  time.Now(),
	}})
	return block
}

func TestAllocateProRataPartialFill(t *testing.T) {
	custody := gateways.NewMemoryCustodyGateway()
	engine := domain.NewAllocationEngine(custody)

	// 需求 100/50/50，执行 100：按比例 50/25/25
	orders := []*domain.Order{
		buyOrder("ORD-1", "ACC-1", 100),
		buyOrder("ORD-2", "ACC-2", 50),
		buyOrder("ORD-3", "ACC-3", 50),
	}
	block := blockWithExecution(orders, "100", "190")

	result, err := engine.Allocate(context.Background(), block, orders, domain.AllocationMethodProRata)
	require.NoError(t, err)
	require.Len(t, result.Allocations, 3)

	assert.True(t, result.Allocations[0].Quantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, result.Allocations[1].Quantity.Equal(decimal.NewFromInt(25)))
	assert.True(t, result.Allocations[2].Quantity.Equal(decimal.NewFromInt(25)))

	// 托管仓位与现金同步更新
	snapshot, err := custody.GetSnapshot(context.Background(), "ACC-1", "AAPL")
	require.NoError(t, err)
	assert.True(t, snapshot.Positions["AAPL"].Equal(decimal.NewFromInt(50)))
	assert.True(t, snapshot.Cash.Equal(decimal.NewFromInt(-9500)))
}

func TestAllocateConservesExecutedQuantity(t *testing.T) {
	engine := domain.NewAllocationEngine(gateways.NewMemoryCustodyGateway())

	// 3 股执行量无法被三个等量订单整除，余数按最大残差派发
	orders := []*domain.Order{
		buyOrder("ORD-1", "ACC-1", 10),
		buyOrder("ORD-2", "ACC-2", 10),
		buyOrder("ORD-3", "ACC-3", 10),
	}
	block := blockWithExecution(orders, "7", "50")

	result, err := engine.Allocate(context.Background(), block, orders, domain.AllocationMethodProRata)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, alloc := range result.Allocations {
		sum = sum.Add(alloc.Quantity)
		// 整股步长：不允许碎股
		assert.True(t, alloc.Quantity.Equal(alloc.Quantity.Floor()))
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(7)), "allocations must sum to executed quantity, got %s", sum)

	// 残差并列时按订单 ID 升序优先
	assert.True(t, result.Allocations[0].Quantity.GreaterThanOrEqual(result.Allocations[2].Quantity))
}

func TestAllocateCryptoFractionalUnits(t *testing.T) {
	engine := domain.NewAllocationEngine(gateways.NewMemoryCustodyGateway())

	orders := []*domain.Order{
		domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy, "BTC-USD",
			domain.AssetClassCrypto, decimal.RequireFromString("0.3"), domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{}),
		domain.NewOrder("ORD-2", "CLI-2", "ACC-2", "TRD-2", domain.SideBuy, "BTC-USD",
			domain.AssetClassCrypto, decimal.RequireFromString("0.7"), domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{}),
	}
	total := decimal.RequireFromString("1")
	block := domain.NewBlock("BLK-1", domain.AssetClassCrypto, "BTC-USD", domain.SideBuy,
		[]string{"ORD-1", "ORD-2"}, total)
	block.RecordExecutions([]*domain.Execution{{
		ExecutionID: "EXE-1", BlockID: "BLK-1", Venue: "MMKR", VenueExecID: "MMKR-1",
		Quantity: decimal.RequireFromString("0.99999999"), Price: decimal.NewFromInt(60000), ExecutedAt: time.Now(),
	}})

	result, err := engine.Allocate(context.Background(), block, orders, domain.AllocationMethodProRata)
	require.NoError(t, err)

	sum := decimal.Zero
	for _, alloc := range result.Allocations {
		sum = sum.Add(alloc.Quantity)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("0.99999999")))
}

func TestAllocateRejectsUnknownMethod(t *testing.T) {
	engine := domain.NewAllocationEngine(gateways.NewMemoryCustodyGateway())
	orders := []*domain.Order{buyOrder("ORD-1", "ACC-1", 10)}
	block := blockWithExecution(orders, "10", "50")

	_, err := engine.Allocate(context.Background(), block, orders, "FIFO")
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestAllocateRequiresExecutions(t *testing.T) {
	engine := domain.NewAllocationEngine(gateways.NewMemoryCustodyGateway())
	orders := []*domain.Order{buyOrder("ORD-1", "ACC-1", 10)}
	block := domain.NewBlock("BLK-1", domain.AssetClassEquity, "AAPL", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(10))

	_, err := engine.Allocate(context.Background(), block, orders, domain.AllocationMethodProRata)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
