package valuation

import (
	"math"
	"sort"
)

// Action labels mapped from score bands.
const (
	ActionStrongBuy = "strong buy"
	ActionBuy       = "buy"
	ActionHold      = "hold"
	ActionSell      = "sell/avoid"
)

// Confidence labels derived from how much the factors agree in sign.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Largest magnitude any single factor can contribute.
const maxFactorWeight = 20.0

// DefaultTopFactors is how many contributing factors the scorer explains by
// default.
const DefaultTopFactors = 5

// Factor is one contributor to the composite score, with its signed weight.
type Factor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ScoreInputs are the raw signals feeding the composite score. Nil fields
// are simply left out of the factor list rather than scored as zero.
type ScoreInputs struct {
	PERatio       *float64 `json:"pe_ratio"`
	PBRatio       *float64 `json:"pb_ratio"`
	ROE           *float64 `json:"roe"`
	ProfitGrowth  *float64 `json:"profit_growth"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	DCFUpside     *float64 `json:"dcf_upside"`
}

// AIScoreResult is the versioned document persisted in a valuation snapshot.
type AIScoreResult struct {
	Version    int      `json:"version"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Confidence string   `json:"confidence"`
	TopFactors []Factor `json:"top_factors"`
}

// ComputeScore folds the available factors into a 0-100 score around a
// neutral baseline of 50, an action label, a confidence label and the topN
// factors ranked by absolute contribution. Deterministic for identical
// inputs.
func ComputeScore(in ScoreInputs, topN int) AIScoreResult {
	factors := collectFactors(in)

	var sum float64
	for _, f := range factors {
		sum += f.Weight
	}

	score := math.Min(100, math.Max(0, 50+sum))

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Weight) > math.Abs(factors[j].Weight)
	})
	if topN > 0 && len(factors) > topN {
		factors = factors[:topN]
	}

	return AIScoreResult{
		Version:    aiScoreResultVersion,
		Score:      score,
		Action:     actionFor(score),
		Confidence: confidenceFor(factors),
		TopFactors: factors,
	}
}

func collectFactors(in ScoreInputs) []Factor {
	var factors []Factor

	if in.PERatio != nil {
		factors = append(factors, Factor{Name: "pe_level", Weight: peWeight(*in.PERatio)})
	}
	if in.PBRatio != nil {
		factors = append(factors, Factor{Name: "pb_level", Weight: pbWeight(*in.PBRatio)})
	}
	if in.ROE != nil {
		factors = append(factors, Factor{Name: "roe", Weight: roeWeight(*in.ROE)})
	}
	if in.ProfitGrowth != nil {
		factors = append(factors, Factor{Name: "profit_growth", Weight: growthWeight(*in.ProfitGrowth, 12)})
	}
	if in.RevenueGrowth != nil {
		factors = append(factors, Factor{Name: "revenue_growth", Weight: growthWeight(*in.RevenueGrowth, 8)})
	}
	if in.DCFUpside != nil {
		factors = append(factors, Factor{Name: "dcf_upside", Weight: upsideWeight(*in.DCFUpside)})
	}

	return factors
}

func peWeight(pe float64) float64 {
	switch {
	case pe < 10:
		return 15
	case pe < 15:
		return 8
	case pe < 25:
		return -3
	default:
		return -15
	}
}

func pbWeight(pb float64) float64 {
	switch {
	case pb < 1:
		return 12
	case pb < 2:
		return 6
	case pb < 4:
		return -2
	default:
		return -12
	}
}

func roeWeight(roe float64) float64 {
	switch {
	case roe >= 0.15:
		return 12
	case roe >= 0.08:
		return 5
	case roe >= 0:
		return -2
	default:
		return -12
	}
}

// growthWeight scores a growth rate, scaled so profit growth carries more
// weight than revenue growth.
func growthWeight(rate, scale float64) float64 {
	switch {
	case rate >= 0.15:
		return scale
	case rate >= 0.05:
		return scale / 2
	case rate >= 0:
		return -1
	default:
		return -scale
	}
}

// upsideWeight scales DCF upside linearly, saturating at the factor cap so a
// wildly optimistic projection cannot dominate the score.
func upsideWeight(upside float64) float64 {
	return math.Min(maxFactorWeight, math.Max(-maxFactorWeight, upside*50))
}

func actionFor(score float64) string {
	switch {
	case score >= 80:
		return ActionStrongBuy
	case score >= 60:
		return ActionBuy
	case score >= 40:
		return ActionHold
	default:
		return ActionSell
	}
}

// confidenceFor labels the sign agreement among factors: the larger the
// majority pointing the same way, the higher the confidence.
func confidenceFor(factors []Factor) string {
	if len(factors) == 0 {
		return ConfidenceLow
	}

	var positive, negative int
	for _, f := range factors {
		if f.Weight >= 0 {
			positive++
		} else {
			negative++
		}
	}

	agreement := float64(positive) / float64(len(factors))
	if negative > positive {
		agreement = float64(negative) / float64(len(factors))
	}

	switch {
	case agreement >= 0.75:
		return ConfidenceHigh
	case agreement >= 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
