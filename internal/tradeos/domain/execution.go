package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Execution 执行记录实体
// 由执行适配器在块级别产生；分摊后 OrderID 指向被分摊的订单。
type Execution struct {
	gorm.Model
	// 执行 ID（系统内唯一）
	ExecutionID string `gorm:"column:execution_id;type:varchar(40);uniqueIndex;not null" json:"execution_id"`
	// 被分摊订单 ID（分摊前为空）
	OrderID string `gorm:"column:order_id;type:varchar(32);index" json:"order_id,omitempty"`
	// 所属块 ID
	BlockID string `gorm:"column:block_id;type:varchar(32);index" json:"block_id,omitempty"`
	// 执行场所
	Venue string `gorm:"column:venue;type:varchar(20);not null" json:"venue"`
	// 场所回报的执行编号
	VenueExecID string `gorm:"column:venue_exec_id;type:varchar(40);not null" json:"venue_exec_id"`
	// 成交数量
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(20,8);not null" json:"quantity"`
	// 成交价格
	Price decimal.Decimal `gorm:"column:price;type:decimal(20,8);not null" json:"price"`
	// 场所收取的费用
	Fee decimal.Decimal `gorm:"column:fee;type:decimal(20,8);not null;default:0" json:"fee"`
	// 成交时间
	ExecutedAt time.Time `gorm:"column:executed_at;type:datetime;not null" json:"executed_at"`
}

// Notional 成交金额（数量 × 价格）
func (e *Execution) Notional() decimal.Decimal {
	return e.Quantity.Mul(e.Price)
}
