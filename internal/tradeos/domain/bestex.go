package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// 最佳执行评分权重，固定不可配置。
const (
	weightPrice     = 0.35
	weightLiquidity = 0.20
	weightCost      = 0.20
	weightSpeed     = 0.10
	weightFillRate  = 0.15
)

// VenueOverride 人工指定执行场所
type VenueOverride struct {
	Venue      string `json:"venue"`
	ApproverID string `json:"approver_id"`
	Reason     string `json:"reason,omitempty"`
}

// BestExecutionEngine 最佳执行引擎
// 对候选场所计算复合评分并选出最高者；评分与选择完全确定，
// 并列时按场所标识升序取先。
type BestExecutionEngine struct{}

// NewBestExecutionEngine 创建最佳执行引擎
func NewBestExecutionEngine() *BestExecutionEngine {
	return &BestExecutionEngine{}
}

// SelectVenue 为块选择执行场所。
// 提供 override 时 ApproverID 必填，选择被强制为指定场所并标记 overridden；
// 评分明细无论是否覆盖都会记录。
func (e *BestExecutionEngine) SelectVenue(block *Block, quotes []VenueQuote, override *VenueOverride) (*BestExRecord, error) {
	if len(quotes) == 0 {
		return nil, NewValidation("no candidate venues supplied for block %s", block.BlockID)
	}

	scores := e.scoreVenues(block.Side, quotes)

	if override != nil {
		if override.ApproverID == "" {
			return nil, NewApprovalRequired("venue override for block %s requires an approver", block.BlockID)
		}
		if _, ok := scores[override.Venue]; !ok {
			return nil, NewValidation("override venue %s is not among the candidates for block %s", override.Venue, block.BlockID)
		}
		return &BestExRecord{
			Venue:      override.Venue,
			Scores:     scores,
			Overridden: true,
			ApproverID: override.ApproverID,
			Reason:     override.Reason,
		}, nil
	}

	// 确定性选择：按场所标识升序遍历，严格更高的评分才替换。
	venues := make([]string, 0, len(scores))
	for venue := range scores {
		venues = append(venues, venue)
	}
	sort.Strings(venues)

	chosen := venues[0]
	for _, venue := range venues[1:] {
		if scores[venue].Composite > scores[chosen].Composite {
			chosen = venue
		}
	}

	return &BestExRecord{Venue: chosen, Scores: scores}, nil
}

// scoreVenues 计算每个场所的归一化评分明细。
// 各维度线性归一化到 [0,1]，1 为最优；维度取值全部相同时记 1（中性）。
func (e *BestExecutionEngine) scoreVenues(side Side, quotes []VenueQuote) map[string]VenueScore {
	minPrice, maxPrice := quotes[0].Price, quotes[0].Price
	minLiq, maxLiq := quotes[0].AvailableQty, quotes[0].AvailableQty
	minCost := quotes[0].Fees.Sub(quotes[0].Rebate)
	maxCost := minCost
	minLat, maxLat := quotes[0].LatencyMs, quotes[0].LatencyMs

	for _, q := range quotes[1:] {
		if q.Price.LessThan(minPrice) {
			minPrice = q.Price
		}
		if q.Price.GreaterThan(maxPrice) {
			maxPrice = q.Price
		}
		if q.AvailableQty.LessThan(minLiq) {
			minLiq = q.AvailableQty
		}
		if q.AvailableQty.GreaterThan(maxLiq) {
			maxLiq = q.AvailableQty
		}
		cost := q.Fees.Sub(q.Rebate)
		if cost.LessThan(minCost) {
			minCost = cost
		}
		if cost.GreaterThan(maxCost) {
			maxCost = cost
		}
		if q.LatencyMs < minLat {
			minLat = q.LatencyMs
		}
		if q.LatencyMs > maxLat {
			maxLat = q.LatencyMs
		}
	}

	scores := make(map[string]VenueScore, len(quotes))
	for _, q := range quotes {
		// 价格分按方向取优：买单低价优，卖单高价优。
		var priceScore float64
		if side == SideBuy {
			priceScore = favorability(maxPrice.Sub(q.Price), maxPrice.Sub(minPrice))
		} else {
			priceScore = favorability(q.Price.Sub(minPrice), maxPrice.Sub(minPrice))
		}

		score := VenueScore{
			Price:     priceScore,
			Liquidity: favorability(q.AvailableQty.Sub(minLiq), maxLiq.Sub(minLiq)),
			Cost:      favorability(maxCost.Sub(q.Fees.Sub(q.Rebate)), maxCost.Sub(minCost)),
			Speed:     favorabilityInt(maxLat-q.LatencyMs, maxLat-minLat),
			FillRate:  q.FillRate,
		}
		score.Composite = weightPrice*score.Price +
			weightLiquidity*score.Liquidity +
			weightCost*score.Cost +
			weightSpeed*score.Speed +
			weightFillRate*score.FillRate
		scores[q.Venue] = score
	}
	return scores
}

func favorability(distanceFromWorst, span decimal.Decimal) float64 {
	if span.IsZero() {
		return 1
	}
	f, _ := distanceFromWorst.Div(span).Float64()
	return f
}

func favorabilityInt(distanceFromWorst, span int64) float64 {
	if span == 0 {
		return 1
	}
	return float64(distanceFromWorst) / float64(span)
}
