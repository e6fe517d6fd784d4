package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

func newSegregatedError(side domain.Side) *domain.TradeErrorItem {
	order := domain.NewOrder("ORD-1", "CLI-1", "ACC-1", "TRD-1", side, "AAPL",
		domain.AssetClassEquity, decimal.NewFromInt(100),
		domain.PriceTypeMarket, domain.TimeInForceDay, domain.OrderDetails{})
	exec := &domain.Execution{
		ExecutionID: "EXE-1",
		OrderID:     "ORD-1",
		Quantity:    decimal.NewFromInt(100),
		Price:       decimal.NewFromInt(190),
		ExecutedAt:  time.Now(),
	}
	return domain.NewTradeError("TE-1", order, exec, "PRICE_ERROR",
		decimal.NewFromInt(185), time.Now())
}

func TestNewTradeErrorPnLDelta(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)
	assert.Equal(t, domain.TradeErrorSegregated, item.Status)
	// 买单：修正价 185 低于执行价 190，差额 -500
	assert.True(t, item.PnLDelta.Equal(decimal.NewFromInt(-500)))

	sellItem := newSegregatedError(domain.SideSell)
	assert.True(t, sellItem.PnLDelta.Equal(decimal.NewFromInt(500)))
}

func TestCloseRequiresTwoDistinctApprovers(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)

	err := item.Close(domain.TradeErrorCorrected, []string{"SUP-1"}, "TRD-1", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindApprovalRequired))

	// 重复的审批人只计一次
	err = item.Close(domain.TradeErrorCorrected, []string{"SUP-1", "SUP-1"}, "TRD-1", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindApprovalRequired))
}

func TestCloseRejectsRequesterAsApprover(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)

	err := item.Close(domain.TradeErrorCorrected, []string{"SUP-1", "TRD-1"}, "TRD-1", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindApprovalRequired))
	assert.Equal(t, domain.TradeErrorSegregated, item.Status)
}

func TestCloseWithDualControl(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)
	now := time.Now()

	err := item.Close(domain.TradeErrorWaived, []string{"SUP-1", "SUP-2"}, "TRD-1", now)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeErrorWaived, item.Status)
	require.Len(t, item.Approvals, 2)
	assert.Equal(t, "SUP-1", item.Approvals[0].ApproverID)
	assert.Equal(t, "SUP-2", item.Approvals[1].ApproverID)
	require.NotNil(t, item.ResolvedAt)
	assert.Equal(t, now, *item.ResolvedAt)
}

func TestCloseDeduplicatesApprovals(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)

	// 重复提交的审批人只登记一次，顺序保持提交顺序
	err := item.Close(domain.TradeErrorCorrected, []string{"SUP-1", "SUP-2", "SUP-1"}, "TRD-1", time.Now())
	require.NoError(t, err)
	require.Len(t, item.Approvals, 2)
	assert.Equal(t, "SUP-1", item.Approvals[0].ApproverID)
	assert.Equal(t, "SUP-2", item.Approvals[1].ApproverID)
}

func TestCloseOnlyFromSegregated(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)
	require.NoError(t, item.Close(domain.TradeErrorCorrected, []string{"SUP-1", "SUP-2"}, "TRD-1", time.Now()))

	err := item.Close(domain.TradeErrorRejected, []string{"SUP-3", "SUP-4"}, "TRD-1", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

func TestCloseInvalidResolution(t *testing.T) {
	item := newSegregatedError(domain.SideBuy)

	err := item.Close(domain.TradeErrorSegregated, []string{"SUP-1", "SUP-2"}, "TRD-1", time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
