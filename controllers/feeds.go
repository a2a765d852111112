package controllers

import (
	"errors"
	"net/url"
	"strconv"

	"finboard/api"
	"finboard/fetcher"
	"finboard/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const itemsPageLimit = 100

type FeedsController struct {
	DB      *gorm.DB
	Logger  *zap.SugaredLogger
	Fetcher *fetcher.FeedFetcher
}

type importParams struct {
	URL       string                 `json:"url" binding:"required"`
	Selectors *fetcher.PageSelectors `json:"selectors"`
}

// Import fetches a feed URL (or a webpage with selector hints), then creates
// or refreshes the caller's feed and upserts its items in one transaction, so
// a failed import never leaves a feed behind without items.
func (f FeedsController) Import(c *gin.Context) {
	var payload importParams
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.BadRequest(c, "url is required")
		return
	}

	parsed, err := url.ParseRequestURI(payload.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		api.BadRequest(c, "url must be a valid http or https address")
		return
	}

	var title string
	var items []fetcher.Item
	if payload.Selectors != nil {
		title, items, err = f.Fetcher.FetchPage(c.Request.Context(), payload.URL, *payload.Selectors)
	} else {
		title, items, err = f.Fetcher.FetchFeed(c.Request.Context(), payload.URL)
	}
	if err != nil {
		if errors.Is(err, fetcher.ErrFetchFailed) || errors.Is(err, fetcher.ErrParseFailed) {
			f.Logger.Warnf("Import of %v failed: %v", payload.URL, err)
			api.UpstreamError(c, err.Error())
			return
		}
		f.Logger.Errorf("Import of %v failed: %v", payload.URL, err)
		api.Internal(c)
		return
	}

	if title == "" {
		title = parsed.Host
	}

	userID := CurrentUserID(c)

	var feed *models.Feed
	err = f.DB.Transaction(func(tx *gorm.DB) error {
		feed, err = models.FindOrCreateFeed(tx, userID, payload.URL, title)
		if err != nil {
			return err
		}

		// collapse in-batch duplicates: one ON CONFLICT statement cannot
		// touch the same (feed_id, guid) row twice
		seen := make(map[string]bool, len(items))
		rows := make([]models.FeedItem, 0, len(items))
		for _, item := range items {
			key := item.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			rows = append(rows, models.FeedItem{
				FeedID:      feed.ID,
				GUID:        key,
				Link:        item.Link,
				Title:       item.Title,
				Content:     item.Content,
				PublishedAt: item.PublishedAt,
			})
		}

		return models.UpsertItems(tx, rows)
	})
	if err != nil {
		f.Logger.Errorf("Error storing feed %v: %v", payload.URL, err)
		api.Internal(c)
		return
	}

	count, err := models.CountItems(f.DB, feed.ID)
	if err != nil {
		f.Logger.Errorf("Error counting items for feed %d: %v", feed.ID, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"feed":       feed,
		"item_count": count,
		"imported":   len(items),
	})
}

// ListFeeds returns the caller's feeds, newest first.
func (f FeedsController) ListFeeds(c *gin.Context) {
	feeds, err := models.FeedsByUser(f.DB, CurrentUserID(c))
	if err != nil {
		f.Logger.Errorf("Error listing feeds: %v", err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{"feeds": feeds})
}

// GetItems returns a feed's items, newest published first.
func (f FeedsController) GetItems(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		api.BadRequest(c, "feed id is not valid")
		return
	}

	feed, err := models.GetFeed(f.DB, uint(id))
	if err != nil {
		f.Logger.Errorf("Error loading feed %d: %v", id, err)
		api.Internal(c)
		return
	}
	if feed == nil {
		api.NotFound(c, "feed does not exist")
		return
	}

	items, err := models.ItemsByFeed(f.DB, feed.ID, itemsPageLimit)
	if err != nil {
		f.Logger.Errorf("Error loading items for feed %d: %v", id, err)
		api.Internal(c)
		return
	}

	api.OK(c, gin.H{
		"feed":  feed,
		"items": items,
	})
}
