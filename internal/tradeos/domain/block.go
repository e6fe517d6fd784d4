package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BlockStatus 块状态
type BlockStatus string

const (
	BlockStatusStaged    BlockStatus = "STAGED"
	BlockStatusRouted    BlockStatus = "ROUTED"
	BlockStatusFilled    BlockStatus = "FILLED"
	BlockStatusAllocated BlockStatus = "ALLOCATED"
)

// VenueScore 单一场所的评分明细
type VenueScore struct {
	Price     float64 `json:"price"`
	Liquidity float64 `json:"liquidity"`
	Cost      float64 `json:"cost"`
	Speed     float64 `json:"speed"`
	FillRate  float64 `json:"fill_rate"`
	Composite float64 `json:"composite"`
}

// BestExRecord 最佳执行决策记录
// 无论是否被人工覆盖，评分明细都保留用于事后审计。
type BestExRecord struct {
	// 最终选择的场所
	Venue string `json:"venue"`
	// 按场所的评分明细
	Scores map[string]VenueScore `json:"scores"`
	// 是否被人工覆盖
	Overridden bool `json:"overridden"`
	// 覆盖审批人（覆盖时必填）
	ApproverID string `json:"approver_id,omitempty"`
	// 覆盖原因
	Reason string `json:"reason,omitempty"`
}

// Block 交易块聚合
// 不变量：OrderIDs 在构建后不可变；TotalQty 恒等于成员订单数量之和。
type Block struct {
	gorm.Model
	// 块 ID
	BlockID string `gorm:"column:block_id;type:varchar(32);uniqueIndex;not null" json:"block_id"`
	// 资产类别
	AssetClass AssetClass `gorm:"column:asset_class;type:varchar(20);index;not null" json:"asset_class"`
	// 标的 ID
	InstrumentID string `gorm:"column:instrument_id;type:varchar(20);index;not null" json:"instrument_id"`
	// 买卖方向
	Side Side `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 总数量（成员订单数量之和）
	TotalQty decimal.Decimal `gorm:"column:total_qty;type:decimal(20,8);not null" json:"total_qty"`
	// 块状态
	Status BlockStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// 成员订单 ID（构建时固定，顺序即分摊顺序）
	OrderIDs []string `gorm:"column:order_ids;serializer:json" json:"order_ids"`
	// 块级执行记录（仅追加）
	Executions []*Execution `gorm:"foreignKey:BlockID;references:BlockID" json:"executions,omitempty"`
	// 最佳执行决策记录
	BestEx *BestExRecord `gorm:"column:best_ex;serializer:json" json:"best_ex,omitempty"`
}

// NewBlock 构建交易块，成员与总量在此定格。
func NewBlock(blockID string, assetClass AssetClass, instrumentID string, side Side, orderIDs []string, totalQty decimal.Decimal) *Block {
	return &Block{
		BlockID:      blockID,
		AssetClass:   assetClass,
		InstrumentID: instrumentID,
		Side:         side,
		TotalQty:     totalQty,
		Status:       BlockStatusStaged,
		OrderIDs:     orderIDs,
	}
}

// ExecutedQuantity 已执行总数量
func (b *Block) ExecutedQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, exec := range b.Executions {
		total = total.Add(exec.Quantity)
	}
	return total
}

// ExecutedVWAP 已执行数量加权平均价；无执行时返回零。
func (b *Block) ExecutedVWAP() decimal.Decimal {
	qty := b.ExecutedQuantity()
	if qty.IsZero() {
		return decimal.Zero
	}
	notional := decimal.Zero
	for _, exec := range b.Executions {
		notional = notional.Add(exec.Notional())
	}
	return notional.Div(qty)
}

// RecordExecutions 追加块级执行并推进状态。
func (b *Block) RecordExecutions(execs []*Execution) {
	b.Executions = append(b.Executions, execs...)
	if b.ExecutedQuantity().GreaterThanOrEqual(b.TotalQty) {
		b.Status = BlockStatusFilled
	} else {
		b.Status = BlockStatusRouted
	}
}

// HasExecutions 块是否已有执行记录（路由幂等判断依据）。
func (b *Block) HasExecutions() bool {
	return len(b.Executions) > 0
}
