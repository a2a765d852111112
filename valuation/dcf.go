package valuation

import (
	"errors"
	"math"
)

// ErrInvalidAssumptions is returned whenever the Gordon-growth terminal value
// would diverge. Callers surface it as a validation error instead of ever
// responding with Infinity or NaN.
var ErrInvalidAssumptions = errors.New("invalid assumptions: discount rate must exceed terminal growth rate")

const (
	// Fraction of earnings assumed to convert into free cash flow.
	fcfConversionRatio = 0.85
	// Spread applied around the point estimate for the low/high bounds.
	valueRangeSpread = 0.15

	minProjectionYears = 1
	maxProjectionYears = 30
)

// Offsets used for the sensitivity grid, in absolute rate terms.
var (
	discountRateOffsets   = []float64{-0.02, -0.01, 0, 0.01, 0.02}
	terminalGrowthOffsets = []float64{-0.01, -0.005, 0, 0.005, 0.01}
)

// DCFAssumptions are the inputs to a projection run.
type DCFAssumptions struct {
	CurrentEPS         float64 `json:"current_eps"`
	GrowthRate         float64 `json:"growth_rate"`
	DiscountRate       float64 `json:"discount_rate"`
	TerminalGrowthRate float64 `json:"terminal_growth_rate"`
	Years              int     `json:"years"`
	CurrentPrice       float64 `json:"current_price"`
}

// ProjectionRow is one year of the explicit projection horizon. Rows are
// computed on demand and never persisted on their own.
type ProjectionRow struct {
	Year         int     `json:"year"`
	ProjectedEPS float64 `json:"projected_eps"`
	FreeCashFlow float64 `json:"free_cash_flow"`
	PresentValue float64 `json:"present_value"`
}

// SensitivityCell is one entry of the discount-rate x terminal-growth grid.
// Value is nil where the perturbed assumptions diverge.
type SensitivityCell struct {
	DiscountRate       float64  `json:"discount_rate"`
	TerminalGrowthRate float64  `json:"terminal_growth_rate"`
	Value              *float64 `json:"value"`
}

// DCFResult is the versioned document persisted in a valuation snapshot.
type DCFResult struct {
	Version       int               `json:"version"`
	Assumptions   DCFAssumptions    `json:"assumptions"`
	Projections   []ProjectionRow   `json:"projections"`
	PVOfCashFlows float64           `json:"pv_of_cash_flows"`
	TerminalValue float64           `json:"terminal_value"`
	PVOfTerminal  float64           `json:"pv_of_terminal"`
	ValuePerShare float64           `json:"value_per_share"`
	LowEstimate   float64           `json:"low_estimate"`
	HighEstimate  float64           `json:"high_estimate"`
	Upside        *float64          `json:"upside"`
	Sensitivity   []SensitivityCell `json:"sensitivity"`
}

// ProjectDCF runs a per-share two-stage DCF: EPS compounds at the growth
// rate, converts to free cash flow at a fixed ratio, each year discounts back
// to present value, and cash flows beyond the horizon collapse into a
// Gordon-growth terminal value. The result is deterministic for identical
// inputs.
func ProjectDCF(a DCFAssumptions) (*DCFResult, error) {
	if a.CurrentEPS <= 0 {
		return nil, errors.New("current eps must be positive")
	}
	if a.Years < minProjectionYears || a.Years > maxProjectionYears {
		return nil, errors.New("projection years must be between 1 and 30")
	}
	if a.DiscountRate <= a.TerminalGrowthRate {
		return nil, ErrInvalidAssumptions
	}

	rows := make([]ProjectionRow, 0, a.Years)
	var pvOfCashFlows float64

	for year := 1; year <= a.Years; year++ {
		eps := a.CurrentEPS * math.Pow(1+a.GrowthRate, float64(year))
		fcf := eps * fcfConversionRatio
		pv := fcf / math.Pow(1+a.DiscountRate, float64(year))

		rows = append(rows, ProjectionRow{
			Year:         year,
			ProjectedEPS: eps,
			FreeCashFlow: fcf,
			PresentValue: pv,
		})
		pvOfCashFlows += pv
	}

	finalFCF := rows[len(rows)-1].FreeCashFlow
	terminalValue := finalFCF * (1 + a.TerminalGrowthRate) / (a.DiscountRate - a.TerminalGrowthRate)
	pvOfTerminal := terminalValue / math.Pow(1+a.DiscountRate, float64(a.Years))

	valuePerShare := pvOfCashFlows + pvOfTerminal

	result := &DCFResult{
		Version:       dcfResultVersion,
		Assumptions:   a,
		Projections:   rows,
		PVOfCashFlows: pvOfCashFlows,
		TerminalValue: terminalValue,
		PVOfTerminal:  pvOfTerminal,
		ValuePerShare: valuePerShare,
		LowEstimate:   valuePerShare * (1 - valueRangeSpread),
		HighEstimate:  valuePerShare * (1 + valueRangeSpread),
		Sensitivity:   sensitivityGrid(a),
	}

	if a.CurrentPrice > 0 {
		upside := (valuePerShare - a.CurrentPrice) / a.CurrentPrice
		result.Upside = &upside
	}

	return result, nil
}

// sensitivityGrid recomputes the per-share value over perturbed assumption
// pairs. Cells whose perturbed discount rate no longer exceeds the perturbed
// terminal growth rate carry a nil value.
func sensitivityGrid(a DCFAssumptions) []SensitivityCell {
	grid := make([]SensitivityCell, 0, len(discountRateOffsets)*len(terminalGrowthOffsets))

	for _, dr := range discountRateOffsets {
		for _, tg := range terminalGrowthOffsets {
			perturbed := a
			perturbed.DiscountRate = a.DiscountRate + dr
			perturbed.TerminalGrowthRate = a.TerminalGrowthRate + tg

			cell := SensitivityCell{
				DiscountRate:       perturbed.DiscountRate,
				TerminalGrowthRate: perturbed.TerminalGrowthRate,
			}

			if perturbed.DiscountRate > perturbed.TerminalGrowthRate {
				value := pointValue(perturbed)
				cell.Value = &value
			}

			grid = append(grid, cell)
		}
	}

	return grid
}

// pointValue computes just the per-share value. Assumptions must already
// satisfy discount > terminal growth.
func pointValue(a DCFAssumptions) float64 {
	var pvOfCashFlows float64
	var fcf float64

	for year := 1; year <= a.Years; year++ {
		eps := a.CurrentEPS * math.Pow(1+a.GrowthRate, float64(year))
		fcf = eps * fcfConversionRatio
		pvOfCashFlows += fcf / math.Pow(1+a.DiscountRate, float64(year))
	}

	terminalValue := fcf * (1 + a.TerminalGrowthRate) / (a.DiscountRate - a.TerminalGrowthRate)
	return pvOfCashFlows + terminalValue/math.Pow(1+a.DiscountRate, float64(a.Years))
}
