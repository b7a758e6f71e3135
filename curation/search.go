package curation

import (
	"context"
	"fmt"
	"log"
	"strings"

	"curator/ai"
	"curator/config"
	"curator/types"
)

// SearchResult is one semantic search hit, resolved against the item
// store when the item still exists.
type SearchResult struct {
	ItemID string      `json:"item_id"`
	Score  float32     `json:"score"`
	Item   *types.Item `json:"item,omitempty"`
}

// Answer is the response to a grounded question about an item.
type Answer struct {
	Answer       string       `json:"answer"`
	Citations    []string     `json:"citations"`
	RelatedItems []types.Item `json:"related_items,omitempty"`
}

// Search embeds the query and returns the topK nearest items.
func (c *Curator) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if c.embedder == nil || c.index == nil {
		return nil, fmt.Errorf("vector search is not configured")
	}
	if topK <= 0 {
		topK = 10
	}

	vectors, err := c.embedder.EmbedTexts([]string{query}, ai.InputQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedding service returned no vector for query")
	}

	matches, err := c.index.Query(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		result := SearchResult{ItemID: match.ID, Score: match.Score}
		item, err := c.items.GetItem(ctx, match.ID)
		if err != nil {
			log.Printf("Failed to resolve item %s from search hit: %v", match.ID, err)
		} else {
			result.Item = item
		}
		results = append(results, result)
	}
	return results, nil
}

const answerInstructions = `You answer questions about curated articles. Ground your answer strictly in the provided article summaries and tags. If the material does not answer the question, say so.`

// AnswerQuestion answers a question about one item, optionally pulling
// related items in as extra context. Only the primary item's URL is
// cited; related items inform the answer but are not independently
// cited.
func (c *Curator) AnswerQuestion(ctx context.Context, itemID, question string, includeRelated bool) (*Answer, error) {
	item, err := c.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load item %s: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s not found", itemID)
	}

	var related []types.Item
	if includeRelated && c.embedder != nil && c.index != nil {
		related = c.findRelated(ctx, item)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Article: %s (%s)\n", item.Title, item.URL)
	fmt.Fprintf(&b, "Summary: %s\n", item.Summary)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(item.Tags, ", "))
	for _, rel := range related {
		fmt.Fprintf(&b, "\nRelated article: %s\nSummary: %s\nTags: %s\n",
			rel.Title, rel.Summary, strings.Join(rel.Tags, ", "))
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", question)

	response, err := c.chat.Generate(ctx, answerInstructions, b.String())
	if err != nil {
		return nil, fmt.Errorf("answer question about item %s: %w", itemID, err)
	}

	return &Answer{
		Answer:       response,
		Citations:    []string{item.URL},
		RelatedItems: related,
	}, nil
}

// findRelated searches for items similar to the given one; failures
// degrade to answering without related context.
func (c *Curator) findRelated(ctx context.Context, item *types.Item) []types.Item {
	query := item.Title
	if item.Summary != "" {
		query = item.Title + "\n" + item.Summary
	}

	// Fetch one extra so the item itself can be filtered out.
	results, err := c.Search(ctx, query, config.MaxRelatedItems+1)
	if err != nil {
		log.Printf("Related-item search for %s failed: %v", item.ID, err)
		return nil
	}

	related := make([]types.Item, 0, config.MaxRelatedItems)
	for _, result := range results {
		if result.ItemID == item.ID || result.Item == nil {
			continue
		}
		related = append(related, *result.Item)
		if len(related) == config.MaxRelatedItems {
			break
		}
	}
	return related
}
