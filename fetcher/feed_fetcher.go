// Package fetcher pulls remote feeds and webpages and normalizes them into
// feed items ready for storage.
package fetcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jaytaylor/html2text"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

var (
	// ErrFetchFailed covers network failures and non-2xx upstream responses.
	ErrFetchFailed = errors.New("failed to fetch source")
	// ErrParseFailed covers malformed feed or page markup.
	ErrParseFailed = errors.New("failed to parse source")
)

const (
	fetchTimeout = 20 * time.Second
	maxBodySize  = 10 << 20
)

// Item is one normalized feed entry before storage.
type Item struct {
	GUID        string
	Link        string
	Title       string
	Content     string
	PublishedAt *time.Time
}

// DedupKey is the stable identifier items are upserted under. The source's
// GUID wins when present; otherwise the key is derived from link and title so
// re-importing a GUID-less source stays idempotent.
func (i Item) DedupKey() string {
	if i.GUID != "" {
		return i.GUID
	}

	sum := sha256.Sum256([]byte(i.Link + "\n" + i.Title))
	return hex.EncodeToString(sum[:])
}

// FeedFetcher fetches and parses RSS/Atom feeds and selector-hinted
// webpages.
type FeedFetcher struct {
	client *retryablehttp.Client
	logger *zap.SugaredLogger
}

func NewFeedFetcher(logger *zap.SugaredLogger) *FeedFetcher {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 2
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = fetchTimeout

	return &FeedFetcher{
		client: client,
		logger: logger,
	}
}

// FetchFeed downloads an RSS/Atom feed and parses it into items.
func (f *FeedFetcher) FetchFeed(ctx context.Context, url string) (string, []Item, error) {
	body, err := f.get(ctx, url)
	if err != nil {
		return "", nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		content := entry.Content
		if content == "" {
			content = entry.Description
		}

		items = append(items, Item{
			GUID:        entry.GUID,
			Link:        entry.Link,
			Title:       entry.Title,
			Content:     flattenContent(content),
			PublishedAt: entry.PublishedParsed,
		})
	}

	return feed.Title, items, nil
}

// flattenContent strips markup from feed content; many sources ship their
// descriptions as HTML fragments. Plain text passes through untouched.
func flattenContent(content string) string {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content)
	}

	text, err := html2text.FromString(content, html2text.Options{TextOnly: true})
	if err != nil {
		return strings.TrimSpace(content)
	}

	return text
}

// get downloads a URL, mapping every failure mode onto ErrFetchFailed.
func (f *FeedFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	return body, nil
}
