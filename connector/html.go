package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"curator/config"
	"curator/types"
)

// HTMLConfig is the source configuration for scraped index pages.
// ItemSelector locates one entry; LinkSelector and TitleSelector are
// resolved relative to it.
type HTMLConfig struct {
	PageURL       string `json:"page_url"`
	ItemSelector  string `json:"item_selector"`
	LinkSelector  string `json:"link_selector"`
	TitleSelector string `json:"title_selector"`
	// Pages follows ?page=N pagination up to this many pages. Zero or
	// one means just the configured page.
	Pages int `json:"pages,omitempty"`
	// ExtractContent fetches and extracts the full body of each
	// linked article.
	ExtractContent bool `json:"extract_content,omitempty"`
}

// HTMLConnector scrapes candidate listings from an HTML index page
// using configured CSS selectors.
type HTMLConnector struct {
	client    *http.Client
	extractor *Extractor
}

// NewHTMLConnector wires an HTTP client; extractor may be nil.
func NewHTMLConnector(client *http.Client, extractor *Extractor) *HTMLConnector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTMLConnector{client: client, extractor: extractor}
}

func (c *HTMLConnector) Type() string { return "html" }

// Fetch scrapes the configured page(s) and returns title/url candidates.
func (c *HTMLConnector) Fetch(ctx context.Context, rawConfig json.RawMessage) ([]types.Candidate, error) {
	var cfg HTMLConfig
	if err := json.Unmarshal(rawConfig, &cfg); err != nil {
		return nil, fmt.Errorf("parse html config: %w", err)
	}
	if cfg.PageURL == "" || cfg.ItemSelector == "" {
		return nil, fmt.Errorf("html config missing page_url or item_selector")
	}

	base, err := url.Parse(cfg.PageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page_url: %w", err)
	}

	pages := cfg.Pages
	if pages < 1 {
		pages = 1
	}

	candidates := make([]types.Candidate, 0)
	seen := map[string]struct{}{}

	for page := 1; page <= pages; page++ {
		pageURL := cfg.PageURL
		if page > 1 {
			pageURL = withPageParam(cfg.PageURL, page)
			// Pace paginated sub-requests to stay under upstream rate limits.
			time.Sleep(config.ConnectorPageDelay)
		}

		doc, err := c.fetchDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		doc.Find(cfg.ItemSelector).Each(func(i int, sel *goquery.Selection) {
			link := sel
			if cfg.LinkSelector != "" {
				link = sel.Find(cfg.LinkSelector)
			}
			href, ok := link.Attr("href")
			if !ok || href == "" {
				return
			}

			resolved := resolveURL(base, href)
			if _, dup := seen[resolved]; dup {
				return
			}
			seen[resolved] = struct{}{}

			title := link.Text()
			if cfg.TitleSelector != "" {
				title = sel.Find(cfg.TitleSelector).Text()
			}

			candidates = append(candidates, types.Candidate{
				Title:    trimText(title),
				URL:      resolved,
				Metadata: map[string]string{"page_url": pageURL},
			})
		})
	}

	if cfg.ExtractContent && c.extractor != nil {
		c.extractor.ExtractAll(candidates)
	}

	return candidates, nil
}

func (c *HTMLConnector) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "curator/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func withPageParam(pageURL string, page int) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String()
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// trimText collapses runs of whitespace that CSS-selected nodes tend
// to carry from the surrounding markup.
func trimText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
