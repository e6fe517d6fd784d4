package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ConfirmRecord 成交确认书
// SHA256 摘要覆盖规范化负载，用于防篡改与下游去重。
type ConfirmRecord struct {
	OrderID     string    `json:"order_id"`
	SHA256      string    `json:"sha256"`
	Payload     string    `json:"payload"`
	GeneratedAt time.Time `json:"generated_at"`
}

// confirmLine 确认书中的单笔执行
type confirmLine struct {
	ExecutionID string `json:"execution_id"`
	Venue       string `json:"venue"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Fee         string `json:"fee"`
	ExecutedAt  string `json:"executed_at"`
}

// confirmPayload 确认书规范化负载
// 字段顺序固定；生成时间不进入负载，保证同一状态产生同一摘要。
type confirmPayload struct {
	ClientID     string        `json:"client_id"`
	AccountID    string        `json:"account_id"`
	OrderID      string        `json:"order_id"`
	InstrumentID string        `json:"instrument_id"`
	AssetClass   string        `json:"asset_class"`
	Side         string        `json:"side"`
	Quantity     string        `json:"quantity"`
	AvgPrice     string        `json:"avg_price"`
	TotalFees    string        `json:"total_fees"`
	Executions   []confirmLine `json:"executions"`
}

// BuildConfirm 生成订单的成交确认书。
// 订单必须已有执行记录；摘要为负载 JSON 的 SHA-256（64 位十六进制）。
func BuildConfirm(order *Order, now time.Time) (*ConfirmRecord, error) {
	if len(order.Executions) == 0 {
		return nil, NewValidation("order %s has no executions to confirm", order.OrderID)
	}

	totalQty := decimal.Zero
	totalNotional := decimal.Zero
	totalFees := decimal.Zero
	lines := make([]confirmLine, 0, len(order.Executions))
	for _, exec := range order.Executions {
		totalQty = totalQty.Add(exec.Quantity)
		totalNotional = totalNotional.Add(exec.Notional())
		totalFees = totalFees.Add(exec.Fee)
		lines = append(lines, confirmLine{
			ExecutionID: exec.ExecutionID,
			Venue:       exec.Venue,
			Quantity:    exec.Quantity.String(),
			Price:       exec.Price.String(),
			Fee:         exec.Fee.String(),
			ExecutedAt:  exec.ExecutedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	avgPrice := decimal.Zero
	if totalQty.IsPositive() {
		avgPrice = totalNotional.Div(totalQty)
	}

	payload := confirmPayload{
		ClientID:     order.ClientID,
		AccountID:    order.AccountID,
		OrderID:      order.OrderID,
		InstrumentID: order.InstrumentID,
		AssetClass:   string(order.AssetClass),
		Side:         string(order.Side),
		Quantity:     totalQty.String(),
		AvgPrice:     avgPrice.String(),
		TotalFees:    totalFees.String(),
		Executions:   lines,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize confirm payload: %w", err)
	}
	digest := sha256.Sum256(raw)

	return &ConfirmRecord{
		OrderID:     order.OrderID,
		SHA256:      hex.EncodeToString(digest[:]),
		Payload:     string(raw),
		GeneratedAt: now,
	}, nil
}
