package models

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Valuation methods stored in ValuationSnapshot.Method.
const (
	MethodDCF     = "dcf"
	MethodAIScore = "ai_score"
)

// ValuationSnapshot is one persisted valuation run. A (ticker, as_of_date,
// method) combination holds exactly one row; recomputing on the same day
// replaces it. RawResult carries the versioned, method-specific result
// document produced by the valuation package.
type ValuationSnapshot struct {
	Generic

	Ticker         string          `gorm:"uniqueIndex:idx_snapshot_key;not null" json:"ticker"`
	AsOfDate       time.Time       `gorm:"uniqueIndex:idx_snapshot_key;not null" json:"as_of_date"`
	Method         string          `gorm:"uniqueIndex:idx_snapshot_key;not null" json:"method"`
	PEImpliedPrice *float64        `json:"pe_implied_price"`
	PBImpliedPrice *float64        `json:"pb_implied_price"`
	RawResult      json.RawMessage `gorm:"type:jsonb" json:"raw_result"`
}

// SaveSnapshot upserts on the (ticker, as_of_date, method) key.
func SaveSnapshot(db *gorm.DB, snapshot *ValuationSnapshot) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticker"}, {Name: "as_of_date"}, {Name: "method"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pe_implied_price", "pb_implied_price", "raw_result", "updated_at",
		}),
	}).Create(snapshot).Error
}

// LatestSnapshot returns the most recent snapshot for the method, or nil
// without an error when none exists.
func LatestSnapshot(db *gorm.DB, ticker, method string) (*ValuationSnapshot, error) {
	var snapshot ValuationSnapshot
	err := db.Where("ticker = ? AND method = ?", ticker, method).
		Order("as_of_date DESC").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &snapshot, nil
}

// LatestSnapshotAnyMethod returns the most recent snapshot regardless of
// method, or nil without an error when none exists.
func LatestSnapshotAnyMethod(db *gorm.DB, ticker string) (*ValuationSnapshot, error) {
	var snapshot ValuationSnapshot
	err := db.Where("ticker = ?", ticker).
		Order("as_of_date DESC").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &snapshot, nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func RecentSnapshots(db *gorm.DB, ticker string, limit int) ([]ValuationSnapshot, error) {
	var snapshots []ValuationSnapshot
	err := db.Where("ticker = ?", ticker).
		Order("as_of_date DESC").Limit(limit).Find(&snapshots).Error
	if err != nil {
		return nil, err
	}

	return snapshots, nil
}
