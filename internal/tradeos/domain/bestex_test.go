package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

func newTestBlock(side domain.Side) *domain.Block {
	return domain.NewBlock("BLK-1", domain.AssetClassEquity, "AAPL", side,
		[]string{"ORD-1"}, decimal.NewFromInt(100))
}

func quote(venue string, price string, liquidity int64, fees string, latency int64, fillRate float64) domain.VenueQuote {
	return domain.VenueQuote{
		Venue:        venue,
		Price:        decimal.RequireFromString(price),
		AvailableQty: decimal.NewFromInt(liquidity),
		Fees:         decimal.RequireFromString(fees),
		LatencyMs:    latency,
		FillRate:     fillRate,
	}
}

func TestSelectVenueDominantQuote(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideBuy)

	// NYSE 在价格、流动性、成本、延迟、成交率全维度占优
	quotes := []domain.VenueQuote{
		quote("ARCA", "190.10", 500, "0.002", 12, 0.90),
		quote("NYSE", "190.00", 1000, "0.001", 5, 0.99),
	}

	record, err := engine.SelectVenue(block, quotes, nil)
	require.NoError(t, err)
	assert.Equal(t, "NYSE", record.Venue)
	assert.False(t, record.Overridden)
	assert.Len(t, record.Scores, 2)
	assert.Greater(t, record.Scores["NYSE"].Composite, record.Scores["ARCA"].Composite)
}

func TestSelectVenueTieBreaksByVenueID(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideBuy)

	// 两个场所报价完全一致，评分并列，应按场所标识升序取先
	quotes := []domain.VenueQuote{
		quote("ZULU", "190.00", 1000, "0.001", 5, 0.99),
		quote("ALPHA", "190.00", 1000, "0.001", 5, 0.99),
	}

	record, err := engine.SelectVenue(block, quotes, nil)
	require.NoError(t, err)
	assert.Equal(t, "ALPHA", record.Venue)
}

func TestSelectVenueSellSidePrefersHigherPrice(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideSell)

	quotes := []domain.VenueQuote{
		quote("LOW", "189.00", 1000, "0.001", 5, 0.95),
		quote("HIGH", "191.00", 1000, "0.001", 5, 0.95),
	}

	record, err := engine.SelectVenue(block, quotes, nil)
	require.NoError(t, err)
	assert.Equal(t, "HIGH", record.Venue)
}

func TestSelectVenueOverrideRequiresApprover(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideBuy)
	quotes := []domain.VenueQuote{
		quote("NYSE", "190.00", 1000, "0.001", 5, 0.99),
		quote("ARCA", "190.10", 500, "0.002", 12, 0.90),
	}

	_, err := engine.SelectVenue(block, quotes, &domain.VenueOverride{Venue: "ARCA"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindApprovalRequired))
}

func TestSelectVenueOverrideWithApprover(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideBuy)
	quotes := []domain.VenueQuote{
		quote("NYSE", "190.00", 1000, "0.001", 5, 0.99),
		quote("ARCA", "190.10", 500, "0.002", 12, 0.90),
	}

	record, err := engine.SelectVenue(block, quotes, &domain.VenueOverride{
		Venue:      "ARCA",
		ApproverID: "SUP-9",
		Reason:     "client directed",
	})
	require.NoError(t, err)
	assert.Equal(t, "ARCA", record.Venue)
	assert.True(t, record.Overridden)
	assert.Equal(t, "SUP-9", record.ApproverID)
	// 覆盖时评分明细仍需保留
	assert.Len(t, record.Scores, 2)
}

func TestSelectVenueOverrideUnknownVenue(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	block := newTestBlock(domain.SideBuy)
	quotes := []domain.VenueQuote{quote("NYSE", "190.00", 1000, "0.001", 5, 0.99)}

	_, err := engine.SelectVenue(block, quotes, &domain.VenueOverride{Venue: "DARK", ApproverID: "SUP-9"})
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestSelectVenueNoQuotes(t *testing.T) {
	engine := domain.NewBestExecutionEngine()
	_, err := engine.SelectVenue(newTestBlock(domain.SideBuy), nil, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
