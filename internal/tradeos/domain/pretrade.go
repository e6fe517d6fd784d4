package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// GateResult 闸口评估结果
// Reasons 收集全部未通过原因，供持单诊断使用。
type GateResult struct {
	Passed  bool     `json:"passed"`
	Reasons []string `json:"reasons,omitempty"`
}

// PreTradeChecker 事前合规闸口引擎
// 所有闸口独立评估，不短路：被拦截的订单携带完整的原因清单。
// IPO 冷静期属于时效性校验，留到路由时点复核，不在此检查。
type PreTradeChecker struct {
	client       ClientGateway
	compliance   ComplianceGateway
	surveillance SurveillanceGateway
	fees         FeeScheduleGateway
	// 共同基金费率折扣档金额阈值
	breakpointThreshold decimal.Decimal
}

// NewPreTradeChecker 创建事前闸口引擎
func NewPreTradeChecker(client ClientGateway, compliance ComplianceGateway, surveillance SurveillanceGateway, fees FeeScheduleGateway, breakpointThreshold decimal.Decimal) *PreTradeChecker {
	return &PreTradeChecker{
		client:              client,
		compliance:          compliance,
		surveillance:        surveillance,
		fees:                fees,
		breakpointThreshold: breakpointThreshold,
	}
}

// Evaluate 运行全部闸口并收集未通过原因。
// 网关调用失败视为该项校验未通过（宁可误拦，不可漏放），
// 仅在上下文取消时返回错误。
func (c *PreTradeChecker) Evaluate(ctx context.Context, order *Order) (*GateResult, error) {
	var reasons []string

	appendReason := func(format string, args ...any) {
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	// 1. 客户准入标志
	gates, err := c.client.GetAccountGates(ctx, order.AccountID)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		appendReason("Account eligibility check unavailable: %v", err)
	default:
		if !gates.KYCVerified {
			appendReason("KYC verification incomplete for account %s", order.AccountID)
		}
		if !gates.AMLCleared {
			appendReason("AML clearance missing for account %s", order.AccountID)
		}
		if !gates.SuitabilityApproved {
			appendReason("Suitability approval missing for account %s", order.AccountID)
		}
		if order.Details.UseMargin && !gates.MarginEnabled {
			appendReason("Margin trading not enabled for account %s", order.AccountID)
		}
		// 2. 期权等级
		if order.AssetClass == AssetClassOptions && gates.OptionsLevel < order.Details.RequiredOptionsLevel {
			appendReason("Options level insufficient: account level %d, required %d", gates.OptionsLevel, order.Details.RequiredOptionsLevel)
		}
	}

	// 3. 加密货币钱包白名单
	if order.AssetClass == AssetClassCrypto {
		if order.Details.WalletAddress == "" {
			appendReason("Wallet address required for crypto orders")
		} else if ok, err := c.client.VerifyWallet(ctx, order.AccountID, order.Details.WalletAddress); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			appendReason("Wallet verification unavailable: %v", err)
		} else if !ok {
			appendReason("Wallet address %s is not whitelisted for account %s", order.Details.WalletAddress, order.AccountID)
		}
	}

	// 4. 受限标的（命中时网关侧独立产生告警）
	if restriction, err := c.compliance.IsSymbolRestricted(ctx, order.InstrumentID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		appendReason("Restricted symbol check unavailable: %v", err)
	} else if restriction.Restricted {
		appendReason("Symbol %s is restricted: %s", order.InstrumentID, restriction.Reason)
	}

	// 5. 营销冻结 / 反洗钱标记
	if snapshot, err := c.compliance.GetSnapshot(ctx, order.AccountID, order.InstrumentID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		appendReason("Compliance snapshot unavailable: %v", err)
	} else {
		if snapshot.MarketingHold {
			appendReason("Account %s is under a marketing hold", order.AccountID)
		}
		if snapshot.AMLFlag {
			appendReason("Account %s carries an AML flag", order.AccountID)
		}
	}

	// 6. 共同基金 POP/breakpoint 规则
	if order.AssetClass == AssetClassMutualFund {
		if rules, err := c.fees.GetMutualFundRules(ctx, order.InstrumentID); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			appendReason("Mutual fund rules unavailable: %v", err)
		} else {
			if rules.POPOnly && order.PriceType != PriceTypeMarket {
				appendReason("Fund %s is POP-only; limit orders are not permitted", order.InstrumentID)
			}
			estimated := order.Quantity.Mul(order.Details.EstimatedPrice)
			if !rules.BreakpointEligible && estimated.GreaterThanOrEqual(c.breakpointThreshold) {
				appendReason("Order notional %s reaches a breakpoint but fund %s is not breakpoint eligible", estimated.String(), order.InstrumentID)
			}
		}
	}

	// 7. 内幕交易筛查
	if insider, err := c.surveillance.IsInsider(ctx, order.AccountID, order.InstrumentID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		appendReason("Insider screening unavailable: %v", err)
	} else if insider {
		appendReason("Account %s is restricted from trading %s by insider surveillance", order.AccountID, order.InstrumentID)
	}

	return &GateResult{Passed: len(reasons) == 0, Reasons: reasons}, nil
}
