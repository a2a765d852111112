package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// PriceBar is one daily OHLCV bar. Append-only; the latest close stands in
// for "current price" everywhere valuations need one.
type PriceBar struct {
	Generic

	Ticker    string    `gorm:"uniqueIndex:idx_bar_ticker_date;not null" json:"ticker"`
	TradeDate time.Time `gorm:"uniqueIndex:idx_bar_ticker_date;not null" json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// LatestBar returns nil without an error when no bars exist for the ticker.
func LatestBar(db *gorm.DB, ticker string) (*PriceBar, error) {
	var bar PriceBar
	err := db.Where("ticker = ?", ticker).Order("trade_date DESC").First(&bar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &bar, nil
}

// RecentCloses returns up to n closing prices in ascending date order, the
// order indicator math expects.
func RecentCloses(db *gorm.DB, ticker string, n int) ([]float64, error) {
	var bars []PriceBar
	err := db.Where("ticker = ?", ticker).Order("trade_date DESC").Limit(n).Find(&bars).Error
	if err != nil {
		return nil, err
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[len(bars)-1-i] = bar.Close
	}

	return closes, nil
}
