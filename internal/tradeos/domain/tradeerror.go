package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TradeErrorStatus 交易差错状态
type TradeErrorStatus string

const (
	TradeErrorSegregated TradeErrorStatus = "Segregated"
	TradeErrorCorrected  TradeErrorStatus = "Corrected"
	TradeErrorRejected   TradeErrorStatus = "Rejected"
	TradeErrorWaived     TradeErrorStatus = "Waived"
)

// ValidTradeErrorResolution 校验差错关闭的目标状态。
func ValidTradeErrorResolution(s TradeErrorStatus) bool {
	switch s {
	case TradeErrorCorrected, TradeErrorRejected, TradeErrorWaived:
		return true
	}
	return false
}

// Approval 差错关闭的审批记录
type Approval struct {
	ApproverID string    `json:"approver_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

// TradeErrorItem 交易差错实体
// 开立后差错执行的经济影响被隔离，直至四眼审批关闭。
type TradeErrorItem struct {
	gorm.Model
	// 差错 ID
	ErrorID string `gorm:"column:error_id;type:varchar(32);uniqueIndex;not null" json:"error_id"`
	// 关联订单 ID
	OrderID string `gorm:"column:order_id;type:varchar(32);index;not null" json:"order_id"`
	// 关联执行 ID
	ExecutionID string `gorm:"column:execution_id;type:varchar(40);index;not null" json:"execution_id"`
	// 差错类型（如 PRICE_ERROR, WRONG_SIDE, DUPLICATE_FILL）
	Type string `gorm:"column:type;type:varchar(40);not null" json:"type"`
	// 修正价格
	CorrectedPrice decimal.Decimal `gorm:"column:corrected_price;type:decimal(20,8);not null" json:"corrected_price"`
	// 隔离的损益差额（修正价 − 执行价）× 数量，按方向取号
	PnLDelta decimal.Decimal `gorm:"column:pnl_delta;type:decimal(20,8);not null" json:"pnl_delta"`
	// 差错状态
	Status TradeErrorStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// 审批记录
	Approvals []Approval `gorm:"column:approvals;serializer:json" json:"approvals,omitempty"`
	// 开立时间
	OpenedAt time.Time `gorm:"column:opened_at;type:datetime;not null" json:"opened_at"`
	// 关闭时间
	ResolvedAt *time.Time `gorm:"column:resolved_at;type:datetime" json:"resolved_at,omitempty"`
}

// NewTradeError 开立交易差错并计算隔离损益。
// 买单方向：修正价高于执行价为客户不利差额（正数）；卖单取反。
func NewTradeError(errorID string, order *Order, exec *Execution, errType string, correctedPrice decimal.Decimal, now time.Time) *TradeErrorItem {
	delta := correctedPrice.Sub(exec.Price).Mul(exec.Quantity)
	if order.Side == SideSell {
		delta = delta.Neg()
	}
	return &TradeErrorItem{
		ErrorID:        errorID,
		OrderID:        order.OrderID,
		ExecutionID:    exec.ExecutionID,
		Type:           errType,
		CorrectedPrice: correctedPrice,
		PnLDelta:       delta,
		Status:         TradeErrorSegregated,
		OpenedAt:       now,
	}
}

// Close 以四眼原则关闭差错。
// 要求至少两名互不相同的审批人，且均不得为原始请求方；
// 仅 Segregated 状态的差错可以关闭。
func (t *TradeErrorItem) Close(status TradeErrorStatus, approverIDs []string, requesterID string, now time.Time) error {
	if t.Status != TradeErrorSegregated {
		return NewConflict("trade error %s is already resolved with status %s", t.ErrorID, t.Status)
	}
	if !ValidTradeErrorResolution(status) {
		return NewValidation("invalid trade error resolution status: %s", status)
	}

	seen := make(map[string]struct{}, len(approverIDs))
	approvals := make([]Approval, 0, len(approverIDs))
	for _, id := range approverIDs {
		if id == "" {
			continue
		}
		if id == requesterID {
			return NewApprovalRequired("approver %s is the original requester of order %s", id, t.OrderID)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		approvals = append(approvals, Approval{ApproverID: id, ApprovedAt: now})
	}
	if len(approvals) < 2 {
		return NewApprovalRequired("dual control requires at least two distinct approvers, got %d", len(approvals))
	}

	t.Approvals = approvals
	t.Status = status
	t.ResolvedAt = &now
	return nil
}
