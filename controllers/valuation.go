package controllers

import (
	"time"

	"finboard/api"
	"finboard/models"
	"finboard/valuation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fair multiples backing the implied prices stored on every snapshot. They
// match the "fair" buckets of the ratio analysis.
const (
	fairPEMultiple = 15.0
	fairPBMultiple = 2.0
)

// Default DCF assumptions applied when the caller omits them.
const (
	defaultGrowthRate     = 0.05
	defaultDiscountRate   = 0.10
	defaultTerminalGrowth = 0.03
	defaultYears          = 5
)

const historyLimit = 30

type ValuationController struct {
	DB     *gorm.DB
	Logger *zap.SugaredLogger
}

// GetValuation returns the current price, pivoted financials, PE/PB analysis
// and the latest stored snapshot for a ticker.
func (v ValuationController) GetValuation(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	bar, financials, ok := v.marketContext(c, ticker)
	if !ok {
		return
	}

	peRatio, pbRatio := impliedRatios(bar.Close, financials)

	snapshot, err := models.LatestSnapshotAnyMethod(v.DB, ticker)
	if err != nil {
		v.Logger.Errorf("Error loading latest snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"ticker":          ticker,
		"current_price":   bar.Close,
		"as_of":           bar.TradeDate,
		"financials":      financials,
		"pe_ratio":        peRatio,
		"pb_ratio":        pbRatio,
		"analysis":        valuation.AnalyzeRatios(peRatio, pbRatio),
		"latest_snapshot": snapshot,
	})
}

// GetHistory returns up to 30 snapshots, newest first.
func (v ValuationController) GetHistory(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	snapshots, err := models.RecentSnapshots(v.DB, ticker, historyLimit)
	if err != nil {
		v.Logger.Errorf("Error loading snapshot history for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"ticker":    ticker,
		"snapshots": snapshots,
	})
}

// GetDCF returns the latest persisted DCF computation.
func (v ValuationController) GetDCF(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	snapshot, err := models.LatestSnapshot(v.DB, ticker, models.MethodDCF)
	if err != nil {
		v.Logger.Errorf("Error loading dcf snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}
	if snapshot == nil {
		api.NotFound(c, "no dcf computation exists for this ticker")
		return
	}

	result, err := valuation.DecodeDCFResult(snapshot.RawResult)
	if err != nil {
		v.Logger.Errorf("Error decoding dcf result for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"snapshot": snapshot,
		"result":   result,
	})
}

type dcfParams struct {
	CurrentEPS         *float64 `json:"current_eps"`
	GrowthRate         *float64 `json:"growth_rate"`
	DiscountRate       *float64 `json:"discount_rate"`
	TerminalGrowthRate *float64 `json:"terminal_growth_rate"`
	Years              *int     `json:"years"`
}

// CalculateDCF runs a projection with the supplied assumptions and persists
// the result as a new snapshot.
func (v ValuationController) CalculateDCF(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	var params dcfParams
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			api.BadRequest(c, "malformed assumption parameters")
			return
		}
	}

	bar, financials, ok := v.marketContext(c, ticker)
	if !ok {
		return
	}

	eps := financials.EPS
	if params.CurrentEPS != nil {
		eps = params.CurrentEPS
	}
	if eps == nil {
		api.BadRequest(c, "no eps on record; supply current_eps to run a projection")
		return
	}

	assumptions := valuation.DCFAssumptions{
		CurrentEPS:         *eps,
		GrowthRate:         defaultGrowthRate,
		DiscountRate:       defaultDiscountRate,
		TerminalGrowthRate: defaultTerminalGrowth,
		Years:              defaultYears,
		CurrentPrice:       bar.Close,
	}
	if params.GrowthRate != nil {
		assumptions.GrowthRate = *params.GrowthRate
	}
	if params.DiscountRate != nil {
		assumptions.DiscountRate = *params.DiscountRate
	}
	if params.TerminalGrowthRate != nil {
		assumptions.TerminalGrowthRate = *params.TerminalGrowthRate
	}
	if params.Years != nil {
		assumptions.Years = *params.Years
	}

	result, err := valuation.ProjectDCF(assumptions)
	if err != nil {
		// Divergent or otherwise unusable assumptions are the caller's to
		// fix; nothing here is an internal failure.
		api.BadRequest(c, err.Error())
		return
	}

	snapshot, err := v.persistSnapshot(ticker, models.MethodDCF, financials, result)
	if err != nil {
		v.Logger.Errorf("Error persisting dcf snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"snapshot": snapshot,
		"result":   result,
	})
}

// GetAIScore returns the latest persisted composite score.
func (v ValuationController) GetAIScore(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	snapshot, err := models.LatestSnapshot(v.DB, ticker, models.MethodAIScore)
	if err != nil {
		v.Logger.Errorf("Error loading ai-score snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}
	if snapshot == nil {
		api.NotFound(c, "no ai score exists for this ticker")
		return
	}

	result, err := valuation.DecodeAIScoreResult(snapshot.RawResult)
	if err != nil {
		v.Logger.Errorf("Error decoding ai-score result for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"snapshot": snapshot,
		"result":   result,
	})
}

type aiScoreParams struct {
	ProfitGrowth  *float64 `json:"profit_growth"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	TopFactors    *int     `json:"top_factors"`
}

// CalculateAIScore recomputes the composite score from stored financials,
// the latest DCF run and optional growth overrides, then persists it.
func (v ValuationController) CalculateAIScore(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	var params aiScoreParams
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&params); err != nil {
			api.BadRequest(c, "malformed score parameters")
			return
		}
	}

	bar, financials, ok := v.marketContext(c, ticker)
	if !ok {
		return
	}

	peRatio, pbRatio := impliedRatios(bar.Close, financials)

	inputs := valuation.ScoreInputs{
		PERatio:       peRatio,
		PBRatio:       pbRatio,
		ROE:           financials.ROE,
		ProfitGrowth:  params.ProfitGrowth,
		RevenueGrowth: params.RevenueGrowth,
	}

	dcfSnapshot, err := models.LatestSnapshot(v.DB, ticker, models.MethodDCF)
	if err != nil {
		v.Logger.Errorf("Error loading dcf snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}
	if dcfSnapshot != nil {
		if dcfResult, err := valuation.DecodeDCFResult(dcfSnapshot.RawResult); err == nil {
			inputs.DCFUpside = dcfResult.Upside
		}
	}

	topN := valuation.DefaultTopFactors
	if params.TopFactors != nil && *params.TopFactors > 0 {
		topN = *params.TopFactors
	}

	result := valuation.ComputeScore(inputs, topN)

	snapshot, err := v.persistSnapshot(ticker, models.MethodAIScore, financials, &result)
	if err != nil {
		v.Logger.Errorf("Error persisting ai-score snapshot for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"snapshot": snapshot,
		"result":   result,
	})
}

// marketContext loads the pieces every valuation needs. A ticker without any
// price bar is a 404; missing financial metrics degrade to nil fields.
func (v ValuationController) marketContext(c *gin.Context, ticker string) (*models.PriceBar, *models.FinancialSnapshot, bool) {
	bar, err := models.LatestBar(v.DB, ticker)
	if err != nil {
		v.Logger.Errorf("Error loading latest bar for %v: %v", ticker, err)
		api.Internal(c)
		return nil, nil, false
	}
	if bar == nil {
		api.NotFound(c, "no price data exists for this ticker")
		return nil, nil, false
	}

	financials, err := models.GetFinancialSnapshot(v.DB, ticker)
	if err != nil {
		v.Logger.Errorf("Error loading financials for %v: %v", ticker, err)
		api.Internal(c)
		return nil, nil, false
	}

	return bar, financials, true
}

func (v ValuationController) persistSnapshot(ticker, method string, financials *models.FinancialSnapshot, result any) (*models.ValuationSnapshot, error) {
	raw, err := valuation.EncodeResult(result)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ValuationSnapshot{
		Ticker:    ticker,
		AsOfDate:  time.Now().UTC().Truncate(24 * time.Hour),
		Method:    method,
		RawResult: raw,
	}

	if financials.EPS != nil {
		implied := *financials.EPS * fairPEMultiple
		snapshot.PEImpliedPrice = &implied
	}
	if financials.BPS != nil {
		implied := *financials.BPS * fairPBMultiple
		snapshot.PBImpliedPrice = &implied
	}

	if err := models.SaveSnapshot(v.DB, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// impliedRatios derives PE and PB from the latest close. A missing or
// non-positive denominator leaves the ratio nil instead of forcing zero.
func impliedRatios(price float64, financials *models.FinancialSnapshot) (peRatio, pbRatio *float64) {
	if financials.EPS != nil && *financials.EPS > 0 {
		pe := price / *financials.EPS
		peRatio = &pe
	}
	if financials.BPS != nil && *financials.BPS > 0 {
		pb := price / *financials.BPS
		pbRatio = &pb
	}

	return peRatio, pbRatio
}

func tickerParam(c *gin.Context) (string, bool) {
	ticker := c.Param("ticker")
	if ticker == "" || len(ticker) > 20 {
		api.BadRequest(c, "ticker is not valid")
		return "", false
	}

	return ticker, true
}
