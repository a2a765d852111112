// Package valuation holds the pure computation behind the valuation
// endpoints: PE/PB ratio analysis, DCF projection and the composite score.
// Nothing in here touches the database or the network.
package valuation

// InsufficientData is returned for any analysis axis whose inputs are
// missing. Missing means the pipeline never reported the metric; it is never
// coerced to zero.
const InsufficientData = "insufficient data"

// RatioAnalysis classifies PE and PB ratios into qualitative buckets.
type RatioAnalysis struct {
	PEAnalysis        string `json:"pe_analysis"`
	PBAnalysis        string `json:"pb_analysis"`
	OverallAssessment string `json:"overall_assessment"`
}

// AnalyzeRatios buckets the ratios with fixed breakpoints. Boundaries are
// exclusive: a PE of exactly 10 falls into the "fair" bucket, 15 into
// "elevated", 25 into "overvalued risk"; PB behaves the same at 1, 2 and 4.
func AnalyzeRatios(peRatio, pbRatio *float64) RatioAnalysis {
	analysis := RatioAnalysis{
		PEAnalysis:        InsufficientData,
		PBAnalysis:        InsufficientData,
		OverallAssessment: InsufficientData,
	}

	if peRatio != nil {
		analysis.PEAnalysis = classifyPE(*peRatio)
	}
	if pbRatio != nil {
		analysis.PBAnalysis = classifyPB(*pbRatio)
	}
	if peRatio != nil && pbRatio != nil {
		analysis.OverallAssessment = assessOverall(*peRatio, *pbRatio)
	}

	return analysis
}

func classifyPE(pe float64) string {
	switch {
	case pe < 10:
		return "undervalued"
	case pe < 15:
		return "fair"
	case pe < 25:
		return "elevated, monitor growth"
	default:
		return "overvalued risk"
	}
}

func classifyPB(pb float64) string {
	switch {
	case pb < 1:
		return "severely undervalued"
	case pb < 2:
		return "fair"
	case pb < 4:
		return "monitor asset quality"
	default:
		return "overvalued risk"
	}
}

func assessOverall(pe, pb float64) string {
	score := 0

	switch {
	case pe < 15:
		score += 3
	case pe < 25:
		score += 2
	default:
		score += 1
	}

	switch {
	case pb < 2:
		score += 3
	case pb < 4:
		score += 2
	default:
		score += 1
	}

	switch {
	case score >= 5:
		return "reasonable, worth attention"
	case score >= 3:
		return "elevated, caution"
	default:
		return "high risk"
	}
}
