package controllers

import (
	"errors"
	"strconv"

	"finboard/api"
	"finboard/indicators"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Enough history for MACD plus some slack.
const indicatorLookback = 200

const defaultRSIPeriod = 14

type IndicatorsController struct {
	DB     *gorm.DB
	Logger *zap.SugaredLogger
}

// GetIndicators computes SMA/EMA/RSI/MACD over stored closes. Indicators the
// series is too short for come back null instead of failing the response.
func (i IndicatorsController) GetIndicators(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}

	rsiPeriod := defaultRSIPeriod
	if raw := c.Query("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			api.BadRequest(c, "period must be a positive integer")
			return
		}
		rsiPeriod = parsed
	}

	closes, err := models.RecentCloses(i.DB, ticker, indicatorLookback)
	if err != nil {
		i.Logger.Errorf("Error loading closes for %v: %v", ticker, err)
		api.Internal(c)
		return
	}
	if len(closes) == 0 {
		api.NotFound(c, "no price data exists for this ticker")
		return
	}

	response := gin.H{
		"ticker":      ticker,
		"data_points": len(closes),
		"sma_20":      optionalIndicator(closes, 20, indicators.SMA),
		"sma_50":      optionalIndicator(closes, 50, indicators.SMA),
		"ema_20":      optionalIndicator(closes, 20, indicators.EMA),
		"rsi":         optionalIndicator(closes, rsiPeriod, indicators.RSI),
	}

	macd, signal, histogram, err := indicators.MACD(closes)
	if err == nil {
		response["macd"] = gin.H{
			"macd":      macd,
			"signal":    signal,
			"histogram": histogram,
		}
	} else if errors.Is(err, indicators.ErrNotEnoughData) {
		response["macd"] = nil
	} else {
		i.Logger.Errorf("Error computing macd for %v: %v", ticker, err)
		api.Internal(c)
		return
	}

	api.OK(c, response)
}

func optionalIndicator(closes []float64, period int, fn func([]float64, int) (float64, error)) *float64 {
	value, err := fn(closes, period)
	if err != nil {
		return nil
	}

	return &value
}
