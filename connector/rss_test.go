package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>First post</title>
      <link>https://example.com/first</link>
      <guid>first-guid</guid>
      <description>First summary</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
      <author>jane@example.com (Jane)</author>
    </item>
    <item>
      <title>Second post</title>
      <link>https://example.com/second</link>
      <description>Second summary</description>
    </item>
    <item>
      <title>No link</title>
      <description>Orphan entry</description>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, testFeed)
	}))
	t.Cleanup(server.Close)
	return server
}

func rssConfig(t *testing.T, cfg RSSConfig) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	return raw
}

func TestRSSFetch(t *testing.T) {
	server := serveFeed(t)
	conn := NewRSSConnector(nil)

	candidates, err := conn.Fetch(context.Background(), rssConfig(t, RSSConfig{FeedURL: server.URL}))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// The entry without a link is skipped.
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(candidates))
	}

	first := candidates[0]
	if first.Title != "First post" || first.URL != "https://example.com/first" {
		t.Errorf("first candidate = %+v", first)
	}
	if first.Content != "First summary" {
		t.Errorf("content = %q, want feed description", first.Content)
	}
	if first.PublishedAt.IsZero() {
		t.Error("published date not parsed")
	}
	if first.Metadata["feed_title"] != "Test Feed" {
		t.Errorf("feed_title metadata = %q", first.Metadata["feed_title"])
	}
	if first.Metadata["guid"] != "first-guid" {
		t.Errorf("guid metadata = %q", first.Metadata["guid"])
	}

	if !candidates[1].PublishedAt.IsZero() {
		t.Errorf("undated entry got PublishedAt %v, want zero", candidates[1].PublishedAt)
	}
}

func TestRSSFetchMaxItems(t *testing.T) {
	server := serveFeed(t)
	conn := NewRSSConnector(nil)

	candidates, err := conn.Fetch(context.Background(), rssConfig(t, RSSConfig{FeedURL: server.URL, MaxItems: 1}))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("got %d candidates, want 1 with max_items=1", len(candidates))
	}
}

func TestRSSFetchBadConfig(t *testing.T) {
	conn := NewRSSConnector(nil)

	if _, err := conn.Fetch(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Error("Fetch succeeded without feed_url")
	}
	if _, err := conn.Fetch(context.Background(), json.RawMessage(`not json`)); err == nil {
		t.Error("Fetch succeeded with malformed config")
	}
}

func TestRSSFetchUnreachableFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	conn := NewRSSConnector(nil)
	if _, err := conn.Fetch(context.Background(), rssConfig(t, RSSConfig{FeedURL: server.URL})); err == nil {
		t.Error("Fetch succeeded against a broken feed")
	}
}
