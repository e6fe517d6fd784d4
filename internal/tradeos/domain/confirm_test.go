package domain_test

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

func filledOrder() *domain.Order {
	order := buyOrder("ORD-1", "ACC-1", 100)
	order.ApplyFill(&domain.Execution{
		ExecutionID: "EXE-1",
		OrderID:     "ORD-1",
		Venue:       "NYSE",
		VenueExecID: "NYSE-1",
		Quantity:    decimal.NewFromInt(60),
		Price:       decimal.NewFromInt(190),
		Fee:         decimal.RequireFromString("0.06"),
		ExecutedAt:  time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC),
	})
	order.ApplyFill(&domain.Execution{
		ExecutionID: "EXE-2",
		OrderID:     "ORD-1",
		Venue:       "NYSE",
		VenueExecID: "NYSE-2",
		Quantity:    decimal.NewFromInt(40),
		Price:       decimal.NewFromInt(191),
		Fee:         decimal.RequireFromString("0.04"),
		ExecutedAt:  time.Date(2026, 3, 2, 14, 31, 0, 0, time.UTC),
	})
	return order
}

func TestBuildConfirmDigest(t *testing.T) {
	order := filledOrder()

	confirm, err := domain.BuildConfirm(order, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", confirm.OrderID)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), confirm.SHA256)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(confirm.Payload), &payload))
	assert.True(t, decimal.RequireFromString(payload["quantity"].(string)).Equal(decimal.NewFromInt(100)))
	assert.True(t, decimal.RequireFromString(payload["avg_price"].(string)).Equal(decimal.RequireFromString("190.4")))
	assert.True(t, decimal.RequireFromString(payload["total_fees"].(string)).Equal(decimal.RequireFromString("0.1")))
	assert.Len(t, payload["executions"], 2)
}

func TestBuildConfirmDeterministic(t *testing.T) {
	order := filledOrder()

	// 生成时间不同，摘要必须一致
	first, err := domain.BuildConfirm(order, time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	second, err := domain.BuildConfirm(order, time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, first.SHA256, second.SHA256)
	assert.Equal(t, first.Payload, second.Payload)
}

func TestBuildConfirmRequiresExecutions(t *testing.T) {
	order := buyOrder("ORD-1", "ACC-1", 100)

	_, err := domain.BuildConfirm(order, time.Now())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}
