package adapters

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/tradeos/internal/tradeos/domain"
)

// 加密货币执行模式
const (
	CryptoModeRFQ = "RFQ"
	CryptoModeDEX = "DEX"
)

// CryptoAdapter 加密货币执行适配器
// 按成员订单声明的执行模式分发：RFQ 向做市商询价整块成交，
// DEX 将块拆分为多段路由，每段承担递增的价格冲击。
type CryptoAdapter struct {
	// DEX 单段最大数量
	dexLegSize decimal.Decimal
	// DEX 每段相对前一段的价格冲击（比例）
	dexImpact decimal.Decimal
	// DEX 每段固定 gas 成本
	dexGasFee decimal.Decimal
}

// NewCryptoAdapter 创建加密货币适配器
func NewCryptoAdapter() *CryptoAdapter {
	return &CryptoAdapter{
		dexLegSize: decimal.RequireFromString("10"),
		dexImpact:  decimal.RequireFromString("0.0005"),
		dexGasFee:  decimal.RequireFromString("2.5"),
	}
}

func (a *CryptoAdapter) AssetClass() domain.AssetClass { return domain.AssetClassCrypto }

// Execute 按执行模式成交。
// 成员订单的 CryptoExecutionMode 必须一致；未声明时默认 RFQ。
func (a *CryptoAdapter) Execute(ctx context.Context, block *domain.Block, orders []*domain.Order, quote domain.VenueQuote) ([]*domain.Execution, error) {
	mode := ""
	for _, order := range orders {
		declared := order.Details.CryptoExecutionMode
		if declared == "" {
			continue
		}
		if mode != "" && declared != mode {
			return nil, domain.NewRoutingRejected("block %s mixes crypto execution modes", block.BlockID)
		}
		mode = declared
	}
	if mode == "" {
		mode = CryptoModeRFQ
	}

	switch mode {
	case CryptoModeRFQ:
		return a.executeRFQ(ctx, block, quote)
	case CryptoModeDEX:
		return a.executeDEX(ctx, block, quote)
	default:
		return nil, domain.NewRoutingRejected("unsupported crypto execution mode: %s", mode)
	}
}

// executeRFQ 做市商询价：整块按报价一次成交。
func (a *CryptoAdapter) executeRFQ(ctx context.Context, block *domain.Block, quote domain.VenueQuote) ([]*domain.Execution, error) {
	if quote.AvailableQty.LessThan(block.TotalQty) {
		return nil, domain.NewRoutingRejected("market maker %s quote covers %s of %s requested", quote.Venue, quote.AvailableQty, block.TotalQty)
	}
	fee := quote.Fees.Mul(block.TotalQty)
	logging.Debug(ctx, "Crypto RFQ fill", "block_id", block.BlockID, "venue", quote.Venue)
	return []*domain.Execution{newExecution(block, quote.Venue, block.TotalQty, quote.Price, fee)}, nil
}

// executeDEX 链上路由：按段拆分，买入时每段价格递增，卖出递减。
func (a *CryptoAdapter) executeDEX(ctx context.Context, block *domain.Block, quote domain.VenueQuote) ([]*domain.Execution, error) {
	remaining := block.TotalQty
	if quote.AvailableQty.LessThan(remaining) {
		remaining = quote.AvailableQty
	}

	var execs []*domain.Execution
	price := quote.Price
	for remaining.IsPositive() {
		legQty := a.dexLegSize
		if remaining.LessThan(legQty) {
			legQty = remaining
		}
		execs = append(execs, newExecution(block, quote.Venue, legQty, price, a.dexGasFee))
		remaining = remaining.Sub(legQty)

		impact := price.Mul(a.dexImpact)
		if block.Side == domain.SideBuy {
			price = price.Add(impact)
		} else {
			price = price.Sub(impact)
		}
	}
	logging.Debug(ctx, "Crypto DEX route", "block_id", block.BlockID, "venue", quote.Venue, "legs", len(execs))
	return execs, nil
}
