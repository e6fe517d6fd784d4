// Package application 实现交易生命周期编排服务：
// 订单接收、成块、路由、分摊、差错处理与报表导出。
package application

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// CreateOrderCommand 订单接收命令
type CreateOrderCommand struct {
	ClientID     string              `json:"client_id"`
	AccountID    string              `json:"account_id"`
	TraderID     string              `json:"trader_id"`
	Side         string              `json:"side"`
	InstrumentID string              `json:"instrument_id"`
	AssetClass   string              `json:"asset_class"`
	Quantity     decimal.Decimal     `json:"quantity"`
	PriceType    string              `json:"price_type"`
	TimeInForce  string              `json:"time_in_force"`
	Details      domain.OrderDetails `json:"details"`
}

// BuildBlockCommand 成块命令
// 按条件聚合全部符合的 NEW 订单：资产类别必填，标的与方向可选。
type BuildBlockCommand struct {
	AssetClass   string `json:"asset_class"`
	InstrumentID string `json:"instrument_id,omitempty"`
	Side         string `json:"side,omitempty"`
}

// RouteBlockCommand 路由命令
type RouteBlockCommand struct {
	BlockID  string                `json:"block_id"`
	Quotes   []domain.VenueQuote   `json:"quotes"`
	Override *domain.VenueOverride `json:"override,omitempty"`
}

// AllocateBlockCommand 分摊命令
type AllocateBlockCommand struct {
	BlockID string `json:"block_id"`
	Method  string `json:"method"`
}

// OpenTradeErrorCommand 差错开立命令
type OpenTradeErrorCommand struct {
	OrderID        string          `json:"order_id"`
	ExecutionID    string          `json:"execution_id"`
	Type           string          `json:"type"`
	CorrectedPrice decimal.Decimal `json:"corrected_price"`
}

// CloseTradeErrorCommand 差错关闭命令
type CloseTradeErrorCommand struct {
	ErrorID     string   `json:"error_id"`
	Resolution  string   `json:"resolution"`
	ApproverIDs []string `json:"approver_ids"`
}

// ExecutionDTO 执行记录视图
type ExecutionDTO struct {
	ExecutionID string    `json:"execution_id"`
	OrderID     string    `json:"order_id,omitempty"`
	BlockID     string    `json:"block_id,omitempty"`
	Venue       string    `json:"venue"`
	VenueExecID string    `json:"venue_exec_id"`
	Quantity    string    `json:"quantity"`
	Price       string    `json:"price"`
	Fee         string    `json:"fee"`
	ExecutedAt  time.Time `json:"executed_at"`
}

// OrderDTO 订单视图
type OrderDTO struct {
	OrderID        string              `json:"order_id"`
	ClientID       string              `json:"client_id"`
	AccountID      string              `json:"account_id"`
	TraderID       string              `json:"trader_id"`
	Side           string              `json:"side"`
	InstrumentID   string              `json:"instrument_id"`
	AssetClass     string              `json:"asset_class"`
	Quantity       string              `json:"quantity"`
	FilledQuantity string              `json:"filled_quantity"`
	PriceType      string              `json:"price_type"`
	TimeInForce    string              `json:"time_in_force"`
	Details        domain.OrderDetails `json:"details"`
	Status         string              `json:"status"`
	HeldReasons    []string            `json:"held_reasons,omitempty"`
	BlockID        string              `json:"block_id,omitempty"`
	Executions     []ExecutionDTO      `json:"executions,omitempty"`
}

// BlockDTO 交易块视图
type BlockDTO struct {
	BlockID      string                `json:"block_id"`
	AssetClass   string                `json:"asset_class"`
	InstrumentID string                `json:"instrument_id"`
	Side         string                `json:"side"`
	TotalQty     string                `json:"total_qty"`
	Status       string                `json:"status"`
	OrderIDs     []string              `json:"order_ids"`
	Executions   []ExecutionDTO        `json:"executions,omitempty"`
	BestEx       *domain.BestExRecord  `json:"best_ex,omitempty"`
}

// TradeErrorDTO 交易差错视图
type TradeErrorDTO struct {
	ErrorID        string            `json:"error_id"`
	OrderID        string            `json:"order_id"`
	ExecutionID    string            `json:"execution_id"`
	Type           string            `json:"type"`
	CorrectedPrice string            `json:"corrected_price"`
	PnLDelta       string            `json:"pnl_delta"`
	Status         string            `json:"status"`
	Approvals      []domain.Approval `json:"approvals,omitempty"`
	OpenedAt       time.Time         `json:"opened_at"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
}

// AllocationDTO 分摊结果视图
type AllocationDTO struct {
	BlockID     string              `json:"block_id"`
	Method      string              `json:"method"`
	Allocations []domain.Allocation `json:"allocations"`
}

func toExecutionDTO(exec *domain.Execution) ExecutionDTO {
	return ExecutionDTO{
		ExecutionID: exec.ExecutionID,
		OrderID:     exec.OrderID,
		BlockID:     exec.BlockID,
		Venue:       exec.Venue,
		VenueExecID: exec.VenueExecID,
		Quantity:    exec.Quantity.String(),
		Price:       exec.Price.String(),
		Fee:         exec.Fee.String(),
		ExecutedAt:  exec.ExecutedAt,
	}
}

func toExecutionDTOs(execs []*domain.Execution) []ExecutionDTO {
	if len(execs) == 0 {
		return nil
	}
	out := make([]ExecutionDTO, 0, len(execs))
	for _, exec := range execs {
		out = append(out, toExecutionDTO(exec))
	}
	return out
}

// ToOrderDTO 领域订单转视图
func ToOrderDTO(order *domain.Order) *OrderDTO {
	return &OrderDTO{
		OrderID:        order.OrderID,
		ClientID:       order.ClientID,
		AccountID:      order.AccountID,
		TraderID:       order.TraderID,
		Side:           string(order.Side),
		InstrumentID:   order.InstrumentID,
		AssetClass:     string(order.AssetClass),
		Quantity:       order.Quantity.String(),
		FilledQuantity: order.FilledQuantity.String(),
		PriceType:      string(order.PriceType),
		TimeInForce:    string(order.TimeInForce),
		Details:        order.Details,
		Status:         string(order.Status),
		HeldReasons:    order.HeldReasons,
		BlockID:        order.BlockID,
		Executions:     toExecutionDTOs(order.Executions),
	}
}

// ToBlockDTO 领域块转视图
func ToBlockDTO(block *domain.Block) *BlockDTO {
	return &BlockDTO{
		BlockID:      block.BlockID,
		AssetClass:   string(block.AssetClass),
		InstrumentID: block.InstrumentID,
		Side:         string(block.Side),
		TotalQty:     block.TotalQty.String(),
		Status:       string(block.Status),
		OrderIDs:     block.OrderIDs,
		Executions:   toExecutionDTOs(block.Executions),
		BestEx:       block.BestEx,
	}
}

// ToTradeErrorDTO 领域差错转视图
func ToTradeErrorDTO(item *domain.TradeErrorItem) *TradeErrorDTO {
	return &TradeErrorDTO{
		ErrorID:        item.ErrorID,
		OrderID:        item.OrderID,
		ExecutionID:    item.ExecutionID,
		Type:           item.Type,
		CorrectedPrice: item.CorrectedPrice.String(),
		PnLDelta:       item.PnLDelta.String(),
		Status:         string(item.Status),
		Approvals:      item.Approvals,
		OpenedAt:       item.OpenedAt,
		ResolvedAt:     item.ResolvedAt,
	}
}
