package domain_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
	"github.com/wyfcoding/tradeos/internal/tradeos/infrastructure/gateways"
)

type checkerFixture struct {
	client       *gateways.MemoryClientGateway
	compliance   *gateways.MemoryComplianceGateway
	surveillance *gateways.MemorySurveillanceGateway
	fees         *gateways.MemoryFeeScheduleGateway
	checker      *domain.PreTradeChecker
}

func newCheckerFixture() *checkerFixture {
	f := &checkerFixture{
		client:       gateways.NewMemoryClientGateway(),
		compliance:   gateways.NewMemoryComplianceGateway(),
		surveillance: gateways.NewMemorySurveillanceGateway(),
		fees:         gateways.NewMemoryFeeScheduleGateway(),
	}
	f.checker = domain.NewPreTradeChecker(f.client, f.compliance, f.surveillance, f.fees,
		decimal.NewFromInt(50000))
	return f
}

func (f *checkerFixture) goodAccount(accountID string) {
	f.client.SetGates(accountID, domain.AccountGates{
		KYCVerified:         true,
		AMLCleared:          true,
		SuitabilityApproved: true,
		MarginEnabled:       true,
		OptionsLevel:        3,
	})
}

func TestEvaluateCleanOrderPasses(t *testing.T) {
	f := newCheckerFixture()
	f.goodAccount("ACC-1")

	order := buyOrder("ORD-1", "ACC-1", 100)
	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Empty(t, result.Reasons)
}

func TestEvaluateCollectsAllFailures(t *testing.T) {
	f := newCheckerFixture()
	// KYC/AML/适当性全部缺失，且标的受限：四条原因一次性收齐
	f.client.SetGates("ACC-1", domain.AccountGates{})
	f.compliance.RestrictSymbol("AAPL", "earnings blackout")

	order := buyOrder("ORD-1", "ACC-1", 100)
	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Len(t, result.Reasons, 4)
}

func TestEvaluateOptionsLevel(t *testing.T) {
	f := newCheckerFixture()
	f.client.SetGates("ACC-1", domain.AccountGates{
		KYCVerified: true, AMLCleared: true, SuitabilityApproved: true, OptionsLevel: 1,
	})

	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy,
		"AAPL240920C", domain.AssetClassOptions, decimal.NewFromInt(10),
		domain.PriceTypeLimit, domain.TimeInForceDay,
		domain.OrderDetails{RequiredOptionsLevel: 3})

	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Options level insufficient: account level 1, required 3", result.Reasons[0])
}

func TestEvaluateRestrictedSymbolEmitsAlert(t *testing.T) {
	f := newCheckerFixture()
	f.goodAccount("ACC-1")
	f.compliance.RestrictSymbol("AAPL", "pending investigation")

	order := buyOrder("ORD-1", "ACC-1", 100)
	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	// 告警独立于拦截结果产生
	alerts := f.compliance.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, "AAPL", alerts[0].Symbol)
}

func TestEvaluateCryptoWallet(t *testing.T) {
	f := newCheckerFixture()
	f.goodAccount("ACC-1")

	// 未声明钱包地址
	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy,
		"BTC-USD", domain.AssetClassCrypto, decimal.NewFromInt(1),
		domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{})
	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	// 地址不在白名单
	order.Details.WalletAddress = "0xUNKNOWN"
	result, err = f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)

	// 白名单地址放行
	f.client.WhitelistWallet("ACC-1", "0xUNKNOWN")
	result, err = f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.True(t, result.Passed)
}

func TestEvaluateMutualFundRules(t *testing.T) {
	f := newCheckerFixture()
	f.goodAccount("ACC-1")
	f.fees.SetRules("VFIAX", domain.MutualFundRules{POPOnly: true, BreakpointEligible: false})

	// POP-only 基金禁止限价单
	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", domain.SideBuy,
		"VFIAX", domain.AssetClassMutualFund, decimal.NewFromInt(200),
		domain.PriceTypeLimit, domain.TimeInForceDay,
		domain.OrderDetails{EstimatedPrice: decimal.NewFromInt(400)})

	result, err := f.checker.Evaluate(context.Background(), order)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	// 限价单 + 名义金额达到 breakpoint 但基金不适用折扣档，两条原因
	assert.Len(t, result.Reasons, 2)
}

func TestEvaluateInsiderScreen(t *testing.T) {
	f := newCheckerFixture()
	f.goodAccount("ACC-1")
	f.surveillance.MarkInsider("ACC-1", "AAPL")

	result, err := f.checker.Evaluate(context.Background(), buyOrder("ORD-1", "ACC-1", 100))
	require.NoError(t, err)
	assert.False(t, result.Passed)
	require.Len(t, result.Reasons, 1)
	assert.Contains(t, result.Reasons[0], "insider surveillance")
}

func TestEvaluateUnknownAccountHeldNotErrored(t *testing.T) {
	f := newCheckerFixture()

	// 网关查不到账户：拦截而非报错
	result, err := f.checker.Evaluate(context.Background(), buyOrder("ORD-1", "ACC-MISSING", 100))
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Contains(t, result.Reasons[0], "Account eligibility check unavailable")
}
