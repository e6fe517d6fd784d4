package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountGates 账户准入标志
type AccountGates struct {
	KYCVerified         bool `json:"kyc_verified"`
	AMLCleared          bool `json:"aml_cleared"`
	SuitabilityApproved bool `json:"suitability_approved"`
	MarginEnabled       bool `json:"margin_enabled"`
	// 账户期权交易等级
	OptionsLevel int `json:"options_level"`
}

// ClientGateway 客户主数据网关
type ClientGateway interface {
	// 获取账户准入标志
	GetAccountGates(ctx context.Context, accountID string) (*AccountGates, error)
	// 校验钱包地址是否在账户白名单内
	VerifyWallet(ctx context.Context, accountID, address string) (bool, error)
}

// ComplianceSnapshot 账户+标的维度的合规快照
type ComplianceSnapshot struct {
	RestrictedSymbols []string `json:"restricted_symbols"`
	// 标的是否处于 IPO 冷静期
	IPOCoolingOff bool `json:"ipo_cooling_off"`
	MarketingHold bool `json:"marketing_hold"`
	AMLFlag       bool `json:"aml_flag"`
}

// RestrictionResult 受限标的检查结果
type RestrictionResult struct {
	Restricted bool   `json:"restricted"`
	Reason     string `json:"reason,omitempty"`
}

// OverrideRecord 最佳执行人工覆盖登记
type OverrideRecord struct {
	BlockID    string `json:"block_id"`
	Venue      string `json:"venue"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// ComplianceGateway 合规网关
type ComplianceGateway interface {
	GetSnapshot(ctx context.Context, accountID, instrumentID string) (*ComplianceSnapshot, error)
	// 检查标的是否受限；命中时网关侧会产生告警（独立于拦截结果的旁路信号）
	IsSymbolRestricted(ctx context.Context, symbol string) (*RestrictionResult, error)
	// 登记最佳执行覆盖决策
	RecordOverride(ctx context.Context, record OverrideRecord) error
}

// CustodySnapshot 托管账户快照
type CustodySnapshot struct {
	Cash      decimal.Decimal            `json:"cash"`
	Positions map[string]decimal.Decimal `json:"positions"`
}

// PositionUpdate 托管仓位与现金变动
type PositionUpdate struct {
	AccountID    string          `json:"account_id"`
	InstrumentID string          `json:"instrument_id"`
	// 仓位变动（买入为正，卖出为负）
	Quantity decimal.Decimal `json:"quantity"`
	// 现金变动（买入为负，卖出为正）
	CashDelta decimal.Decimal `json:"cash_delta"`
	// 本次变动的成交均价
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// CustodyGateway 托管网关
// 实现必须保证同一账户的更新原子生效。
type CustodyGateway interface {
	GetSnapshot(ctx context.Context, accountID, instrumentID string) (*CustodySnapshot, error)
	UpdatePosition(ctx context.Context, update PositionUpdate) error
}

// SurveillanceGateway 监察网关
type SurveillanceGateway interface {
	// 账户对标的是否存在内幕交易限制
	IsInsider(ctx context.Context, accountID, instrumentID string) (bool, error)
}

// RegDeskGateway 监管报送网关
type RegDeskGateway interface {
	LogConfirm(ctx context.Context, confirm *ConfirmRecord) error
}

// MutualFundRules 共同基金费率规则
type MutualFundRules struct {
	// 仅允许按公开发行价（POP）申购
	POPOnly bool `json:"pop_only"`
	// 是否适用费率折扣档（breakpoint）
	BreakpointEligible bool `json:"breakpoint_eligible"`
}

// FeeScheduleGateway 费率表网关
type FeeScheduleGateway interface {
	GetMutualFundRules(ctx context.Context, symbol string) (*MutualFundRules, error)
}

// VenueQuote 候选场所的报价与质量指标（外部输入）
type VenueQuote struct {
	Venue string `json:"venue"`
	// 可成交价格
	Price decimal.Decimal `json:"price"`
	// 可用流动性（数量）
	AvailableQty decimal.Decimal `json:"available_qty"`
	// 费用（每单位）
	Fees decimal.Decimal `json:"fees"`
	// 返佣（每单位）
	Rebate decimal.Decimal `json:"rebate"`
	// 回报延迟（毫秒）
	LatencyMs int64 `json:"latency_ms"`
	// 历史成交率 [0,1]
	FillRate float64 `json:"fill_rate"`
}

// ExecutionAdapter 按资产类别的执行适配器
// 在选定场所执行整块订单并返回块级执行记录；成员订单仅供
// 适配器读取执行参数（如加密货币的 RFQ/DEX 模式），不得被修改。
type ExecutionAdapter interface {
	AssetClass() AssetClass
	Execute(ctx context.Context, block *Block, orders []*Order, quote VenueQuote) ([]*Execution, error)
}
