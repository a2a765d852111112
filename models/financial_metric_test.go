package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFinancialSnapshotPivot(t *testing.T) {
	db := newTestDB(t)

	rows := []FinancialMetric{
		{Ticker: "TEST", MetricName: "eps", MetricValue: 50, ReportPeriod: "2023Q1"},
		{Ticker: "TEST", MetricName: "bps", MetricValue: 1250, ReportPeriod: "2023Q1"},
		{Ticker: "TEST", MetricName: "roe", MetricValue: 0.18, ReportPeriod: "2023Q1"},
		{Ticker: "OTHER", MetricName: "eps", MetricValue: 3, ReportPeriod: "2023Q1"},
	}
	require.NoError(t, db.Create(&rows).Error)

	snapshot, err := GetFinancialSnapshot(db, "TEST")
	require.NoError(t, err)

	require.NotNil(t, snapshot.EPS)
	assert.Equal(t, 50.0, *snapshot.EPS)
	require.NotNil(t, snapshot.BPS)
	assert.Equal(t, 1250.0, *snapshot.BPS)
	require.NotNil(t, snapshot.ROE)
	assert.Equal(t, 0.18, *snapshot.ROE)

	// metrics the pipeline never reported stay nil
	assert.Nil(t, snapshot.Revenue)
	assert.Nil(t, snapshot.NetProfit)
	assert.False(t, snapshot.Empty())
}

func TestGetFinancialSnapshotUnknownTicker(t *testing.T) {
	db := newTestDB(t)

	snapshot, err := GetFinancialSnapshot(db, "NOPE")
	require.NoError(t, err)
	assert.True(t, snapshot.Empty())
}

func TestGetFinancialSnapshotTakesMaxPerMetric(t *testing.T) {
	db := newTestDB(t)

	rows := []FinancialMetric{
		{Ticker: "TEST", MetricName: "eps", MetricValue: 42, ReportPeriod: "2022Q4"},
		{Ticker: "TEST", MetricName: "eps", MetricValue: 50, ReportPeriod: "2023Q1"},
	}
	require.NoError(t, db.Create(&rows).Error)

	snapshot, err := GetFinancialSnapshot(db, "TEST")
	require.NoError(t, err)
	require.NotNil(t, snapshot.EPS)
	assert.Equal(t, 50.0, *snapshot.EPS)
}
