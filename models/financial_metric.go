package models

import (
	"gorm.io/gorm"
)

// FinancialMetric is one named fact reported for a ticker. The table is
// append-only; an external pipeline writes rows, we only read them.
type FinancialMetric struct {
	Generic

	Ticker       string  `gorm:"index:idx_metric_ticker_name;not null" json:"ticker"`
	MetricName   string  `gorm:"index:idx_metric_ticker_name;not null" json:"metric_name"`
	MetricValue  float64 `gorm:"not null" json:"metric_value"`
	ReportPeriod string  `json:"report_period"`
}

// FinancialSnapshot is the named metrics pivoted into one flat record.
// Fields are pointers: a nil field means the pipeline never reported that
// metric, which is different from reporting zero.
type FinancialSnapshot struct {
	Ticker    string   `json:"ticker"`
	EPS       *float64 `gorm:"column:eps" json:"eps"`
	BPS       *float64 `gorm:"column:bps" json:"bps"`
	ROE       *float64 `gorm:"column:roe" json:"roe"`
	Revenue   *float64 `gorm:"column:revenue" json:"revenue"`
	NetProfit *float64 `gorm:"column:net_profit" json:"net_profit"`
}

// Empty reports whether no metric at all is known for the ticker.
func (s FinancialSnapshot) Empty() bool {
	return s.EPS == nil && s.BPS == nil && s.ROE == nil && s.Revenue == nil && s.NetProfit == nil
}

// GetFinancialSnapshot pivots the fact table into a flat snapshot, taking the
// max value per metric name.
func GetFinancialSnapshot(db *gorm.DB, ticker string) (*FinancialSnapshot, error) {
	snapshot := FinancialSnapshot{Ticker: ticker}

	err := db.Raw(`
		SELECT
			MAX(CASE WHEN metric_name = 'eps' THEN metric_value END) AS eps,
			MAX(CASE WHEN metric_name = 'bps' THEN metric_value END) AS bps,
			MAX(CASE WHEN metric_name = 'roe' THEN metric_value END) AS roe,
			MAX(CASE WHEN metric_name = 'revenue' THEN metric_value END) AS revenue,
			MAX(CASE WHEN metric_name = 'net_profit' THEN metric_value END) AS net_profit
		FROM financial_metrics
		WHERE ticker = ? AND deleted_at IS NULL`, ticker).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}
