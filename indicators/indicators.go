// Package indicators computes technical indicators over closing-price
// series. Series are expected in ascending date order.
package indicators

import "errors"

// ErrNotEnoughData is returned when a series is too short for the requested
// indicator.
var ErrNotEnoughData = errors.New("not enough data points")

// SMA returns the simple moving average of the last period closes.
func SMA(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period {
		return 0, ErrNotEnoughData
	}

	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}

	return sum / float64(period), nil
}

// EMA returns the exponential moving average of the series, seeded with the
// SMA of the first period values.
func EMA(closes []float64, period int) (float64, error) {
	series, err := emaSeries(closes, period)
	if err != nil {
		return 0, err
	}

	return series[len(series)-1], nil
}

// RSI returns the Wilder relative strength index over the given period.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 || len(closes) < period+1 {
		return 0, ErrNotEnoughData
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, nil
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// MACD returns the 12/26 MACD line, its 9-period signal line and the
// histogram.
func MACD(closes []float64) (macd, signal, histogram float64, err error) {
	const fast, slow, signalPeriod = 12, 26, 9

	if len(closes) < slow+signalPeriod {
		return 0, 0, 0, ErrNotEnoughData
	}

	fastSeries, err := emaSeries(closes, fast)
	if err != nil {
		return 0, 0, 0, err
	}
	slowSeries, err := emaSeries(closes, slow)
	if err != nil {
		return 0, 0, 0, err
	}

	// Both series align on the tail of the input; diff from where the slow
	// series starts.
	offset := len(fastSeries) - len(slowSeries)
	macdSeries := make([]float64, len(slowSeries))
	for i := range slowSeries {
		macdSeries[i] = fastSeries[i+offset] - slowSeries[i]
	}

	signalSeries, err := emaSeries(macdSeries, signalPeriod)
	if err != nil {
		return 0, 0, 0, err
	}

	macd = macdSeries[len(macdSeries)-1]
	signal = signalSeries[len(signalSeries)-1]
	return macd, signal, macd - signal, nil
}

// emaSeries returns EMA values starting at index period-1 of the input.
func emaSeries(values []float64, period int) ([]float64, error) {
	if period <= 0 || len(values) < period {
		return nil, ErrNotEnoughData
	}

	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	multiplier := 2.0 / float64(period+1)
	series := make([]float64, 0, len(values)-period+1)
	series = append(series, seed)

	ema := seed
	for _, v := range values[period:] {
		ema = (v-ema)*multiplier + ema
		series = append(series, ema)
	}

	return series, nil
}
