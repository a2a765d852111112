package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"finboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rssPayload(secondTitle string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Market Briefs</title>
    <item><guid>g1</guid><title>First</title><link>https://example.com/1</link></item>
    <item><guid>g2</guid><title>%s</title><link>https://example.com/2</link></item>
    <item><guid>g3</guid><title>Third</title><link>https://example.com/3</link></item>
  </channel>
</rss>`, secondTitle)
}

// guid-less feed: dedup must fall back to the derived key
const guidlessRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>No Guids Here</title>
    <item><title>Alpha</title><link>https://example.com/a</link></item>
    <item><title>Beta</title><link>https://example.com/b</link></item>
    <item><title>Gamma</title><link>https://example.com/c</link></item>
  </channel>
</rss>`

func TestImportFeedIsIdempotent(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	var secondTitle atomic.Value
	secondTitle.Store("Second")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssPayload(secondTitle.Load().(string))))
	}))
	defer server.Close()

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decodeBody(t, resp)
	assert.EqualValues(t, 3, body["item_count"])

	feedInfo := body["feed"].(map[string]any)
	feedID := uint(feedInfo["id"].(float64))
	assert.Equal(t, "Market Briefs", feedInfo["title"])

	// re-import with g2's title changed: same count, row updated in place
	secondTitle.Store("Second, revised")
	resp = doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 3, decodeBody(t, resp)["item_count"])

	var g2 models.FeedItem
	require.NoError(t, db.First(&g2, "feed_id = ? AND guid = ?", feedID, "g2").Error)
	assert.Equal(t, "Second, revised", g2.Title)

	var g1 models.FeedItem
	require.NoError(t, db.First(&g1, "feed_id = ? AND guid = ?", feedID, "g1").Error)
	assert.Equal(t, "First", g1.Title)
}

func TestImportGuidlessFeedIsIdempotent(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(guidlessRSS))
	}))
	defer server.Close()

	for i := 0; i < 2; i++ {
		resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.EqualValues(t, 3, decodeBody(t, resp)["item_count"],
			"derived keys must keep guid-less imports idempotent")
	}
}

func TestImportRequiresAuth(t *testing.T) {
	_, engine := setupServer(t)

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": "https://example.com/rss"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestImportValidation(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": "ftp://example.com"}, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestImportUpstreamFailure(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
	require.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "upstream_error", decodeBody(t, resp)["error"])

	// a failed import must not leave a feed behind without items
	var count int64
	require.NoError(t, db.Model(&models.Feed{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestImportParseFailure(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("definitely not xml"))
	}))
	defer server.Close()

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestListFeedsAndItems(t *testing.T) {
	db, engine := setupServer(t)
	_, token := seedUser(t, db, "importer@example.com")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssPayload("Second")))
	}))
	defer server.Close()

	resp := doJSON(t, engine, http.MethodPost, "/feeds/import", map[string]any{"url": server.URL}, token)
	require.Equal(t, http.StatusOK, resp.Code)
	feedID := uint(decodeBody(t, resp)["feed"].(map[string]any)["id"].(float64))

	resp = doJSON(t, engine, http.MethodGet, "/feeds", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeBody(t, resp)["feeds"].([]any), 1)

	resp = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/feeds/%d/items", feedID), nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeBody(t, resp)["items"].([]any), 3)
}

func TestGetItemsUnknownFeed(t *testing.T) {
	_, engine := setupServer(t)

	resp := doJSON(t, engine, http.MethodGet, "/feeds/999/items", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = doJSON(t, engine, http.MethodGet, "/feeds/abc/items", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
