package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeedItem is one entry of an imported feed. GUID is always populated: the
// source's stable identifier when it provides one, otherwise a key derived
// from the item content. The (feed_id, guid) uniqueness constraint is what
// makes repeated imports idempotent, including two concurrent imports of the
// same URL racing on the upsert.
type FeedItem struct {
	Generic

	FeedID      uint       `gorm:"uniqueIndex:idx_item_feed_guid;not null" json:"feed_id"`
	GUID        string     `gorm:"uniqueIndex:idx_item_feed_guid;not null" json:"guid"`
	Link        string     `json:"link"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"published_at"`
}

// UpsertItems inserts the items, updating mutable fields in place for rows
// that already exist under the same (feed_id, guid).
func UpsertItems(db *gorm.DB, items []FeedItem) error {
	if len(items) == 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "feed_id"}, {Name: "guid"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"link", "title", "content", "published_at", "updated_at",
		}),
	}).Create(&items).Error
}

// ItemsByFeed returns up to limit items, newest published first.
func ItemsByFeed(db *gorm.DB, feedID uint, limit int) ([]FeedItem, error) {
	var items []FeedItem
	err := db.Where("feed_id = ?", feedID).
		Order("published_at DESC").Limit(limit).Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}

// CountItems returns the number of items stored for a feed.
func CountItems(db *gorm.DB, feedID uint) (int64, error) {
	var count int64
	err := db.Model(&FeedItem{}).Where("feed_id = ?", feedID).Count(&count).Error
	return count, err
}
