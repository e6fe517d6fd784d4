// Package domain 包含交易生命周期引擎的领域模型：订单、块、执行、
// 差错处理以及各外部协作方的网关接口。
package domain

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "NEW"
	OrderStatusHeld      OrderStatus = "HELD"
	OrderStatusRouted    OrderStatus = "ROUTED"
	OrderStatusPartial   OrderStatus = "PARTIAL"
	OrderStatusFilled    OrderStatus = "FILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Side 买卖方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// AssetClass 资产类别
type AssetClass string

const (
	AssetClassEquity     AssetClass = "EQUITY"
	AssetClassETF        AssetClass = "ETF"
	AssetClassOptions    AssetClass = "OPTIONS"
	AssetClassBond       AssetClass = "BOND"
	AssetClassMutualFund AssetClass = "MUTUAL_FUND"
	AssetClassCrypto     AssetClass = "CRYPTO"
)

// ValidAssetClass 校验资产类别取值
func ValidAssetClass(ac AssetClass) bool {
	switch ac {
	case AssetClassEquity, AssetClassETF, AssetClassOptions,
		AssetClassBond, AssetClassMutualFund, AssetClassCrypto:
		return true
	}
	return false
}

// PriceType 价格类型
type PriceType string

const (
	PriceTypeMarket PriceType = "MARKET"
	PriceTypeLimit  PriceType = "LIMIT"
)

// TimeInForce 订单有效期
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "DAY"
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
)

// PrimaryMarketModeIOI 一级市场意向单模式，非约束性，可绕过 IPO 冷静期限制。
const PrimaryMarketModeIOI = "IOI"

// OrderDetails 按资产类别携带的附加字段。
// 取代自由格式的 meta 字典：字段在订单接收时校验，与资产类别绑定。
type OrderDetails struct {
	// 期权订单要求的账户期权等级
	RequiredOptionsLevel int `json:"required_options_level,omitempty"`
	// 加密货币出入金钱包地址
	WalletAddress string `json:"wallet_address,omitempty"`
	// 一级市场模式（IOI 表示非约束性意向）
	PrimaryMarketMode string `json:"primary_market_mode,omitempty"`
	// 估算价格，用于费率 breakpoint 判断
	EstimatedPrice decimal.Decimal `json:"estimated_price,omitempty"`
	// 是否使用保证金
	UseMargin bool `json:"use_margin,omitempty"`
	// 加密货币执行模式：RFQ 或 DEX
	CryptoExecutionMode string `json:"crypto_execution_mode,omitempty"`
}

// Order 订单实体
// 由编排器仓储独占持有，仅通过已定义的状态迁移修改。
type Order struct {
	gorm.Model
	// 订单 ID
	OrderID string `gorm:"column:order_id;type:varchar(32);uniqueIndex;not null" json:"order_id"`
	// 客户 ID
	ClientID string `gorm:"column:client_id;type:varchar(32);index;not null" json:"client_id"`
	// 账户 ID
	AccountID string `gorm:"column:account_id;type:varchar(32);index;not null" json:"account_id"`
	// 交易员 ID（差错关闭时的原始请求方）
	TraderID string `gorm:"column:trader_id;type:varchar(32);index;not null" json:"trader_id"`
	// 买卖方向
	Side Side `gorm:"column:side;type:varchar(10);not null" json:"side"`
	// 标的 ID
	InstrumentID string `gorm:"column:instrument_id;type:varchar(20);index;not null" json:"instrument_id"`
	// 资产类别
	AssetClass AssetClass `gorm:"column:asset_class;type:varchar(20);index;not null" json:"asset_class"`
	// 数量
	Quantity decimal.Decimal `gorm:"column:quantity;type:decimal(20,8);not null" json:"quantity"`
	// 已成交数量
	FilledQuantity decimal.Decimal `gorm:"column:filled_quantity;type:decimal(20,8);not null;default:0" json:"filled_quantity"`
	// 价格类型
	PriceType PriceType `gorm:"column:price_type;type:varchar(10);not null" json:"price_type"`
	// 有效期
	TimeInForce TimeInForce `gorm:"column:time_in_force;type:varchar(10);not null" json:"time_in_force"`
	// 按资产类别携带的附加字段
	Details OrderDetails `gorm:"column:details;serializer:json" json:"details"`
	// 订单状态
	Status OrderStatus `gorm:"column:status;type:varchar(20);index;not null" json:"status"`
	// 拦截原因（有序；非空当且仅当状态为 HELD）
	HeldReasons []string `gorm:"column:held_reasons;serializer:json" json:"held_reasons,omitempty"`
	// 所属块 ID
	BlockID string `gorm:"column:block_id;type:varchar(32);index" json:"block_id,omitempty"`
	// 已分摊到本订单的执行记录（仅追加）
	Executions []*Execution `gorm:"foreignKey:OrderID;references:OrderID" json:"executions,omitempty"`
}

// NewOrder 创建订单，仅做构造，不做任何合规判断。
func NewOrder(orderID, clientID, accountID, traderID string, side Side, instrumentID string, assetClass AssetClass, quantity decimal.Decimal, priceType PriceType, tif TimeInForce, details OrderDetails) *Order {
	return &Order{
		OrderID:        orderID,
		ClientID:       clientID,
		AccountID:      accountID,
		TraderID:       traderID,
		Side:           side,
		InstrumentID:   instrumentID,
		AssetClass:     assetClass,
		Quantity:       quantity,
		FilledQuantity: decimal.Zero,
		PriceType:      priceType,
		TimeInForce:    tif,
		Details:        details,
		Status:         OrderStatusNew,
	}
}

// RemainingQuantity 获取剩余未成交数量
func (o *Order) RemainingQuantity() decimal.Decimal {
	return o.Quantity.Sub(o.FilledQuantity)
}

// IsFilled 是否已完全成交
func (o *Order) IsFilled() bool {
	return o.FilledQuantity.Equal(o.Quantity)
}

// CanBeCancelled 是否可以取消
// 已成交订单不可取消，其经济影响只能通过差错流程修正。
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusFilled, OrderStatusCancelled:
		return false
	}
	return true
}

// Hold 将订单置为 HELD 并记录全部拦截原因。
func (o *Order) Hold(reasons []string) {
	o.Status = OrderStatusHeld
	o.HeldReasons = reasons
}

// Release 将 HELD 订单释放回 NEW，清空拦截原因。
func (o *Order) Release() {
	o.Status = OrderStatusNew
	o.HeldReasons = nil
}

// Stage 将订单纳入块并标记为 ROUTED。
func (o *Order) Stage(blockID string) {
	o.BlockID = blockID
	o.Status = OrderStatusRouted
}

// ApplyFill 追加一笔已分摊的执行并推进成交状态。
// 不变量：累计成交数量不超过订单数量。
func (o *Order) ApplyFill(exec *Execution) {
	o.Executions = append(o.Executions, exec)
	o.FilledQuantity = o.FilledQuantity.Add(exec.Quantity)
	if o.IsFilled() {
		o.Status = OrderStatusFilled
	} else {
		o.Status = OrderStatusPartial
	}
}

// FindExecution 按执行 ID 查找已分摊到本订单的执行记录。
func (o *Order) FindExecution(executionID string) *Execution {
	for _, exec := range o.Executions {
		if exec.ExecutionID == executionID {
			return exec
		}
	}
	return nil
}
