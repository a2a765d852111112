package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageSelectors are the CSS-selector hints for turning an arbitrary webpage
// into a synthetic feed. Item is required; the rest are resolved relative to
// each item node and may be empty.
type PageSelectors struct {
	Item    string `json:"item" binding:"required"`
	Title   string `json:"title"`
	Link    string `json:"link"`
	Content string `json:"content"`
	Time    string `json:"time"`
}

// Layouts tried when parsing scraped timestamps.
var timeLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FetchPage downloads a webpage and extracts items via selector hints.
// Extracted content is flattened to plain text. Items without a title and
// link are skipped.
func (f *FeedFetcher) FetchPage(ctx context.Context, pageURL string, selectors PageSelectors) (string, []Item, error) {
	body, err := f.get(ctx, pageURL)
	if err != nil {
		return "", nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())

	var items []Item
	doc.Find(selectors.Item).Each(func(_ int, node *goquery.Selection) {
		item := extractItem(node, selectors, base)
		if item.Title == "" && item.Link == "" {
			return
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return "", nil, fmt.Errorf("%w: no items matched selector %q", ErrParseFailed, selectors.Item)
	}

	return pageTitle, items, nil
}

func extractItem(node *goquery.Selection, selectors PageSelectors, base *url.URL) Item {
	item := Item{}

	titleNode := node
	if selectors.Title != "" {
		titleNode = node.Find(selectors.Title).First()
	}
	item.Title = strings.TrimSpace(titleNode.Text())

	linkNode := node.Find("a").First()
	if selectors.Link != "" {
		linkNode = node.Find(selectors.Link).First()
	}
	if href, ok := linkNode.Attr("href"); ok {
		item.Link = resolveLink(base, href)
	}

	contentNode := node
	if selectors.Content != "" {
		contentNode = node.Find(selectors.Content).First()
	}
	// take the rendered text of the node: inline markup must flatten without
	// altering the sentence around it
	item.Content = collapseWhitespace(contentNode.Text())

	if selectors.Time != "" {
		raw := strings.TrimSpace(node.Find(selectors.Time).First().Text())
		if ts := parseTime(raw); ts != nil {
			item.PublishedAt = ts
		}
	}

	return item
}

// collapseWhitespace squeezes runs of whitespace, including the newlines and
// indentation markup leaves behind, into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}

	return base.ResolveReference(ref).String()
}

func parseTime(raw string) *time.Time {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return &ts
		}
	}

	return nil
}
