package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"curator/types"
)

// RSSConfig is the source configuration for RSS/Atom feeds.
type RSSConfig struct {
	FeedURL string `json:"feed_url"`
	// MaxItems caps how many feed entries are considered per scan.
	// Zero means all.
	MaxItems int `json:"max_items,omitempty"`
	// ExtractContent fetches and extracts the full article body for
	// each entry instead of relying on the feed summary.
	ExtractContent bool `json:"extract_content,omitempty"`
}

// RSSConnector fetches candidates from an RSS/Atom feed.
type RSSConnector struct {
	parser    *gofeed.Parser
	extractor *Extractor
}

// NewRSSConnector creates an RSS connector. extractor may be nil to
// disable full-content extraction regardless of config.
func NewRSSConnector(extractor *Extractor) *RSSConnector {
	return &RSSConnector{
		parser:    gofeed.NewParser(),
		extractor: extractor,
	}
}

func (c *RSSConnector) Type() string { return "rss" }

// Fetch retrieves and parses the feed, returning one candidate per entry.
func (c *RSSConnector) Fetch(ctx context.Context, config json.RawMessage) ([]types.Candidate, error) {
	var cfg RSSConfig
	if err := json.Unmarshal(config, &cfg); err != nil {
		return nil, fmt.Errorf("parse rss config: %w", err)
	}
	if cfg.FeedURL == "" {
		return nil, fmt.Errorf("rss config missing feed_url")
	}

	feed, err := c.parser.ParseURLWithContext(cfg.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	count := len(feed.Items)
	if cfg.MaxItems > 0 && cfg.MaxItems < count {
		count = cfg.MaxItems
	}

	candidates := make([]types.Candidate, 0, count)
	for i := 0; i < count; i++ {
		item := feed.Items[i]
		if item.Link == "" {
			continue
		}

		var publishedAt time.Time
		if item.PublishedParsed != nil {
			publishedAt = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			publishedAt = *item.UpdatedParsed
		}

		content := item.Description
		if content == "" {
			content = item.Content
		}

		metadata := map[string]string{"feed_title": feed.Title}
		if item.Author != nil && item.Author.Name != "" {
			metadata["author"] = item.Author.Name
		}
		if item.GUID != "" {
			metadata["guid"] = item.GUID
		}

		candidates = append(candidates, types.Candidate{
			Title:       item.Title,
			URL:         item.Link,
			Content:     content,
			PublishedAt: publishedAt,
			Metadata:    metadata,
		})
	}

	if cfg.ExtractContent && c.extractor != nil {
		c.extractor.ExtractAll(candidates)
	}

	return candidates, nil
}
