package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScoreClampedHigh(t *testing.T) {
	result := ComputeScore(ScoreInputs{
		PERatio:       floatPtr(8),
		PBRatio:       floatPtr(0.5),
		ROE:           floatPtr(0.25),
		ProfitGrowth:  floatPtr(0.30),
		RevenueGrowth: floatPtr(0.20),
		DCFUpside:     floatPtr(1.5),
	}, DefaultTopFactors)

	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, ActionStrongBuy, result.Action)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
}

func TestComputeScoreClampedLow(t *testing.T) {
	result := ComputeScore(ScoreInputs{
		PERatio:       floatPtr(40),
		PBRatio:       floatPtr(6),
		ROE:           floatPtr(-0.10),
		ProfitGrowth:  floatPtr(-0.25),
		RevenueGrowth: floatPtr(-0.25),
		DCFUpside:     floatPtr(-0.8),
	}, DefaultTopFactors)

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, ActionSell, result.Action)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
}

func TestComputeScoreAlwaysInRange(t *testing.T) {
	values := []float64{-100, -1, 0, 0.05, 0.5, 1, 10, 50, 1000}
	for _, pe := range values {
		for _, upside := range values {
			result := ComputeScore(ScoreInputs{
				PERatio:   floatPtr(pe),
				DCFUpside: floatPtr(upside),
			}, DefaultTopFactors)
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 100.0)
		}
	}
}

func TestComputeScoreTopFactors(t *testing.T) {
	inputs := ScoreInputs{
		PERatio:       floatPtr(8),
		PBRatio:       floatPtr(3),
		ROE:           floatPtr(0.12),
		ProfitGrowth:  floatPtr(0.10),
		RevenueGrowth: floatPtr(0.02),
		DCFUpside:     floatPtr(0.3),
	}

	result := ComputeScore(inputs, 3)
	require.Len(t, result.TopFactors, 3)

	for i := 1; i < len(result.TopFactors); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(result.TopFactors[i-1].Weight),
			math.Abs(result.TopFactors[i].Weight),
			"factors must sort by descending absolute weight")
	}

	// asking for more factors than exist returns them all
	result = ComputeScore(inputs, 50)
	assert.Len(t, result.TopFactors, 6)
}

func TestComputeScoreSkipsMissingInputs(t *testing.T) {
	result := ComputeScore(ScoreInputs{PERatio: floatPtr(12)}, DefaultTopFactors)
	require.Len(t, result.TopFactors, 1)
	assert.Equal(t, "pe_level", result.TopFactors[0].Name)
}

func TestComputeScoreNoInputs(t *testing.T) {
	result := ComputeScore(ScoreInputs{}, DefaultTopFactors)
	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, ActionHold, result.Action)
	assert.Equal(t, ConfidenceLow, result.Confidence)
	assert.Empty(t, result.TopFactors)
}

func TestComputeScoreDeterministic(t *testing.T) {
	inputs := ScoreInputs{
		PERatio:   floatPtr(18),
		PBRatio:   floatPtr(2.5),
		ROE:       floatPtr(0.09),
		DCFUpside: floatPtr(-0.1),
	}

	first := ComputeScore(inputs, DefaultTopFactors)
	second := ComputeScore(inputs, DefaultTopFactors)
	assert.Equal(t, first, second)
}

func TestUpsideWeightSaturates(t *testing.T) {
	assert.Equal(t, maxFactorWeight, upsideWeight(10))
	assert.Equal(t, -maxFactorWeight, upsideWeight(-10))
	assert.InDelta(t, 5.0, upsideWeight(0.1), 1e-9)
}
