package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// BlotterFilter 报表过滤条件，空字段表示不过滤。
type BlotterFilter struct {
	AssetClass   AssetClass  `json:"asset_class,omitempty"`
	InstrumentID string      `json:"instrument_id,omitempty"`
	Status       OrderStatus `json:"status,omitempty"`
}

// Matches 订单是否满足过滤条件。
func (f BlotterFilter) Matches(order *Order) bool {
	if f.AssetClass != "" && order.AssetClass != f.AssetClass {
		return false
	}
	if f.InstrumentID != "" && order.InstrumentID != f.InstrumentID {
		return false
	}
	if f.Status != "" && order.Status != f.Status {
		return false
	}
	return true
}

// blotterExecRow 报表中的执行行
type blotterExecRow struct {
	ExecutionID string `json:"execution_id"`
	Venue       string `json:"venue"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	ExecutedAt  string `json:"executed_at"`
}

// BlotterRow 报表中的订单行，字段顺序与行序固定。
type BlotterRow struct {
	OrderID        string           `json:"order_id"`
	ClientID       string           `json:"client_id"`
	AccountID      string           `json:"account_id"`
	InstrumentID   string           `json:"instrument_id"`
	AssetClass     string           `json:"asset_class"`
	Side           string           `json:"side"`
	Quantity       string           `json:"quantity"`
	FilledQuantity string           `json:"filled_quantity"`
	Status         string           `json:"status"`
	HeldReasons    []string         `json:"held_reasons,omitempty"`
	BlockID        string           `json:"block_id,omitempty"`
	Executions     []blotterExecRow `json:"executions,omitempty"`
}

// BlotterExport 报表导出结果
// 摘要仅覆盖行数据：同一订单/执行状态必然产生同一摘要，
// 与导出时刻无关。
type BlotterExport struct {
	Filter      BlotterFilter `json:"filter"`
	Rows        []BlotterRow  `json:"rows"`
	SHA256      string        `json:"sha256"`
	Payload     []byte        `json:"-"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// BuildBlotter 构建确定性的订单报表导出。
// 行按订单 ID 升序，执行按执行 ID 升序；负载不含任何时钟信息。
func BuildBlotter(orders []*Order, filter BlotterFilter, now time.Time) (*BlotterExport, error) {
	rows := make([]BlotterRow, 0, len(orders))
	for _, order := range orders {
		if !filter.Matches(order) {
			continue
		}

		execs := make([]blotterExecRow, 0, len(order.Executions))
		for _, exec := range order.Executions {
			execs = append(execs, blotterExecRow{
				ExecutionID: exec.ExecutionID,
				Venue:       exec.Venue,
				Quantity:    exec.Quantity.String(),
				Price:       exec.Price.String(),
				ExecutedAt:  exec.ExecutedAt.UTC().Format(time.RFC3339Nano),
			})
		}
		sort.Slice(execs, func(i, j int) bool { return execs[i].ExecutionID < execs[j].ExecutionID })

		rows = append(rows, BlotterRow{
			OrderID:        order.OrderID,
			ClientID:       order.ClientID,
			AccountID:      order.AccountID,
			InstrumentID:   order.InstrumentID,
			AssetClass:     string(order.AssetClass),
			Side:           string(order.Side),
			Quantity:       order.Quantity.String(),
			FilledQuantity: order.FilledQuantity.String(),
			Status:         string(order.Status),
			HeldReasons:    order.HeldReasons,
			BlockID:        order.BlockID,
			Executions:     execs,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].OrderID < rows[j].OrderID })

	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize blotter rows: %w", err)
	}
	digest := sha256.Sum256(payload)

	return &BlotterExport{
		Filter:      filter,
		Rows:        rows,
		SHA256:      hex.EncodeToString(digest[:]),
		Payload:     payload,
		GeneratedAt: now,
	}, nil
}
