package domain_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/adapters"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/gateways"
)

func TestRouteDispatchesToAdapter(t *testing.T) {
	compliance := gateways.NewMemoryComplianceGateway()
	engine := domain.NewRoutingEngine(compliance, adapters.NewEquityAdapter())

	orders := []*domain.Order{buyOrder("ORD-1", "ACC-1", 100)}
	block := domain.NewBlock("BLK-1", domain.AssetClassEquity, "AAPL", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(100))

	execs, err := engine.Route(context.Background(), block, orders,
		quote("NYSE", "190.00", 1000, "0.001", 5, 0.99))
	require.NoError(t, err)
	require.Len(t, execs, 1)
	assert.Equal(t, "NYSE", execs[0].Venue)
	assert.True(t, execs[0].Quantity.Equal(decimal.NewFromInt(100)))
}

func TestRouteRejectsDuringIPOCoolingOff(t *testing.T) {
	compliance := gateways.NewMemoryComplianceGateway()
	compliance.SetSnapshot("ACC-1", "NEWCO", domain.ComplianceSnapshot{IPOCoolingOff: true})
	engine := domain.NewRoutingEngine(compliance, adapters.NewEquityAdapter())

	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy, "NEWCO",
		domain.AssetClassEquity, decimal.NewFromInt(100),
		domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{})
	block := domain.NewBlock("BLK-1", domain.AssetClassEquity, "NEWCO", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(100))

	_, err := engine.Route(context.Background(), block, []*domain.Order{order},
		quote("NYSE", "42.00", 1000, "0.001", 5, 0.99))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindRoutingRejected))
}

func TestRouteIOIBypassesCoolingOff(t *testing.T) {
	compliance := gateways.NewMemoryComplianceGateway()
	compliance.SetSnapshot("ACC-1", "NEWCO", domain.ComplianceSnapshot{IPOCoolingOff: true})
	engine := domain.NewRoutingEngine(compliance, adapters.NewEquityAdapter())

	// 全部成员为非约束性意向单：冷静期放行
	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy, "NEWCO",
		domain.AssetClassEquity, decimal.NewFromInt(100),
		domain.PriceTypeMarket, domain.TimeInForceDay,
		domain.OrderDetails{PrimaryMarketMode: domain.PrimaryMarketModeIOI})
	block := domain.NewBlock("BLK-1", domain.AssetClassEquity, "NEWCO", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(100))

	execs, err := engine.Route(context.Background(), block, []*domain.Order{order},
		quote("NYSE", "42.00", 1000, "0.001", 5, 0.99))
	require.NoError(t, err)
	assert.Len(t, execs, 1)
}

func TestRouteNoAdapterForAssetClass(t *testing.T) {
	engine := domain.NewRoutingEngine(gateways.NewMemoryComplianceGateway(), adapters.NewEquityAdapter())

	block := domain.NewBlock("BLK-1", domain.AssetClassBond, "T-2036", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(100))
	_, err := engine.Route(context.Background(), block,
		[]*domain.Order{buyOrder("ORD-1", "ACC-1", 100)},
		quote("DEALER", "99.50", 1000, "0.001", 5, 0.99))
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindRoutingRejected))
}

func TestCryptoDEXRouteSplitsLegs(t *testing.T) {
	engine := domain.NewRoutingEngine(gateways.NewMemoryComplianceGateway(), adapters.NewCryptoAdapter())

	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy, "ETH-USD",
		domain.AssetClassCrypto, decimal.NewFromInt(25),
		domain.PriceTypeMarket, domain.TimeInForceDay,
		domain.OrderDetails{CryptoExecutionMode: adapters.CryptoModeDEX})
	block := domain.NewBlock("BLK-1", domain.AssetClassCrypto, "ETH-USD", domain.SideBuy,
		[]string{"ORD-1"}, decimal.NewFromInt(25))

	execs, err := engine.Route(context.Background(), block, []*domain.Order{order},
		quote("UNI-V3", "3000", 100, "0", 50, 0.99))
	require.NoError(t, err)
	// 25 按每段 10 拆为 10/10/5，价格逐段抬升
	require.Len(t, execs, 3)
	assert.True(t, execs[2].Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, execs[1].Price.GreaterThan(execs[0].Price))

	total := decimal.Zero
	for _, exec := range execs {
		total = total.Add(exec.Quantity)
	}
	assert.True(t, total.Equal(decimal.NewFromInt(25)))
}
