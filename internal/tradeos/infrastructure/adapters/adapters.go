// Package adapters 提供按资产类别的执行适配器。
// 各适配器模拟对应市场的成交回报：输入选定场所的报价，
// 输出块级执行记录。
package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// newExecution 构造一笔块级执行记录。
func newExecution(block *domain.Block, venue string, qty, price, fee decimal.Decimal) *domain.Execution {
	return &domain.Execution{
		ExecutionID: fmt.Sprintf("EXE-%d", idgen.GenID()),
		BlockID:     block.BlockID,
		Venue:       venue,
		VenueExecID: fmt.Sprintf("%s-%d", venue, idgen.GenID()),
		Quantity:    qty,
		Price:       price,
		Fee:         fee,
		ExecutedAt:  time.Now(),
	}
}

// fillAgainstQuote 按场所可用流动性成交，不足部分留待后续轮次。
func fillAgainstQuote(block *domain.Block, quote domain.VenueQuote) []*domain.Execution {
	qty := block.TotalQty
	if quote.AvailableQty.LessThan(qty) {
		qty = quote.AvailableQty
	}
	if !qty.IsPositive() {
		return nil
	}
	fee := quote.Fees.Mul(qty)
	return []*domain.Execution{newExecution(block, quote.Venue, qty, quote.Price, fee)}
}

// EquityAdapter 股票执行适配器
type EquityAdapter struct{}

// NewEquityAdapter 创建股票适配器
func NewEquityAdapter() *EquityAdapter { return &EquityAdapter{} }

func (a *EquityAdapter) AssetClass() domain.AssetClass { return domain.AssetClassEquity }

// Execute 按场所流动性成交，流动性不足时产生部分成交。
func (a *EquityAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	return fillAgainstQuote(block, quote), nil
}

// ETFAdapter ETF 执行适配器
// 成交模型与股票一致，一级市场申赎不在本引擎范围内。
type ETFAdapter struct{}

// NewETFAdapter 创建 ETF 适配器
func NewETFAdapter() *ETFAdapter { return &ETFAdapter{} }

func (a *ETFAdapter) AssetClass() domain.AssetClass { return domain.AssetClassETF }

func (a *ETFAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	return fillAgainstQuote(block, quote), nil
}

// OptionsAdapter 期权执行适配器
// 费用按张收取，而非按名义金额。
type OptionsAdapter struct {
	perContractFee decimal.Decimal
}

// NewOptionsAdapter 创建期权适配器
func NewOptionsAdapter() *OptionsAdapter {
	return &OptionsAdapter{perContractFee: decimal.RequireFromString("0.65")}
}

func (a *OptionsAdapter) AssetClass() domain.AssetClass { return domain.AssetClassOptions }

func (a *OptionsAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	qty := block.TotalQty
	if quote.AvailableQty.LessThan(qty) {
		qty = quote.AvailableQty
	}
	if !qty.IsPositive() {
		return nil, nil
	}
	fee := a.perContractFee.Mul(qty)
	return []*domain.Execution{newExecution(block, quote.Venue, qty, quote.Price, fee)}, nil
}

// BondAdapter 债券执行适配器
// 场外交易商对整块报价，全部或零成交。
type BondAdapter struct{}

// NewBondAdapter 创建债券适配器
func NewBondAdapter() *BondAdapter { return &BondAdapter{} }

func (a *BondAdapter) AssetClass() domain.AssetClass { return domain.AssetClassBond }

func (a *BondAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	if quote.AvailableQty.LessThan(block.TotalQty) {
		return nil, domain.NewRoutingRejected("dealer %s cannot fill bond block %s in full", quote.Venue, block.BlockID)
	}
	fee := quote.Fees.Mul(block.TotalQty)
	return []*domain.Execution{newExecution(block, quote.Venue, block.TotalQty, quote.Price, fee)}, nil
}

// MutualFundAdapter 共同基金执行适配器
// 按公开发行价全额成交，销售费用已含在价格内。
type MutualFundAdapter struct{}

// NewMutualFundAdapter 创建共同基金适配器
func NewMutualFundAdapter() *MutualFundAdapter { return &MutualFundAdapter{} }

func (a *MutualFundAdapter) AssetClass() domain.AssetClass { return domain.AssetClassMutualFund }

func (a *MutualFundAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	return []*domain.Execution{newExecution(block, quote.Venue, block.TotalQty, quote.Price, decimal.Zero)}, nil
}
