package models

import (
	"errors"

	"gorm.io/gorm"
)

// Feed is one imported source. A user owns at most one feed per source URL;
// re-importing refreshes the title and upserts items instead of creating a
// second feed.
type Feed struct {
	Generic

	UserID    uint   `gorm:"uniqueIndex:idx_feed_owner_url;not null" json:"user_id"`
	SourceURL string `gorm:"uniqueIndex:idx_feed_owner_url;not null" json:"source_url"`
	Title     string `json:"title"`
}

// FindOrCreateFeed returns the existing feed for (userID, sourceURL),
// refreshing its title, or creates a new one.
func FindOrCreateFeed(db *gorm.DB, userID uint, sourceURL, title string) (*Feed, error) {
	var feed Feed
	err := db.First(&feed, "user_id = ? AND source_url = ?", userID, sourceURL).Error
	if err == nil {
		if title != "" && title != feed.Title {
			feed.Title = title
			if err := db.Save(&feed).Error; err != nil {
				return nil, err
			}
		}
		return &feed, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	feed = Feed{UserID: userID, SourceURL: sourceURL, Title: title}
	if err := db.Create(&feed).Error; err != nil {
		// lost a race against a concurrent import of the same URL; the
		// winner's row is the one to use
		if IsDuplicateKey(err) {
			var existing Feed
			if err := db.First(&existing, "user_id = ? AND source_url = ?", userID, sourceURL).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}

	return &feed, nil
}

// FeedsByUser lists the caller's feeds, newest first.
func FeedsByUser(db *gorm.DB, userID uint) ([]Feed, error) {
	var feeds []Feed
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&feeds).Error
	if err != nil {
		return nil, err
	}

	return feeds, nil
}

// GetFeed returns nil without an error when the feed does not exist.
func GetFeed(db *gorm.DB, id uint) (*Feed, error) {
	var feed Feed
	err := db.First(&feed, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &feed, nil
}
