// Package curation turns raw candidates into persisted, searchable,
// tagged items, and answers questions grounded on stored items.
package curation

import (
	"context"
	"fmt"
	"log"
	"time"

	"curator/ai"
	"curator/config"
	"curator/store"
	"curator/types"
	"curator/vector"
)

// Curator runs the enrichment stage. It is stateless aside from the
// external stores it writes to, so concurrent curations are safe; the
// item upsert contract keeps concurrent re-curation of one URL
// consistent.
type Curator struct {
	chat     ai.ChatClient
	embedder ai.EmbeddingsProvider
	index    vector.Index
	items    store.ItemStore
	badges   store.BadgeStore
}

// NewCurator wires the curator's collaborators. embedder and index may
// be nil together to disable vector indexing.
func NewCurator(chat ai.ChatClient, embedder ai.EmbeddingsProvider, index vector.Index,
	items store.ItemStore, badges store.BadgeStore) *Curator {
	return &Curator{
		chat:     chat,
		embedder: embedder,
		index:    index,
		items:    items,
		badges:   badges,
	}
}

// Curate processes one curation request end to end: AI analysis,
// document embedding, vector upsert, badge normalization, item upsert,
// badge link replacement. Any failure other than malformed AI output
// aborts the curation; the caller's delivery layer owns retry.
func (c *Curator) Curate(ctx context.Context, req *types.CurationRequest) (*types.Item, error) {
	started := time.Now()
	log.Printf("Curating item %s (source %d): %s", req.ItemID, req.SourceID, req.URL)

	// Embedding is independent of the analysis call; run it alongside.
	type embedResult struct {
		vector []float32
		err    error
	}
	embedCh := make(chan embedResult, 1)
	go func() {
		vec, err := c.embedDocument(req.Content)
		embedCh <- embedResult{vector: vec, err: err}
	}()

	analysis, err := c.analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	embedded := <-embedCh
	if embedded.err != nil {
		return nil, fmt.Errorf("embed item %s: %w", req.ItemID, embedded.err)
	}

	embeddingRef := ""
	if embedded.vector != nil {
		if err := c.index.Upsert(req.ItemID, embedded.vector, map[string]interface{}{
			"title":  req.Title,
			"url":    req.URL,
			"source": req.Source,
		}); err != nil {
			return nil, fmt.Errorf("index item %s: %w", req.ItemID, err)
		}
		embeddingRef = req.ItemID
	}

	badges, err := c.badges.EnsureBadges(ctx, analysis.Tags)
	if err != nil {
		return nil, fmt.Errorf("normalize tags for item %s: %w", req.ItemID, err)
	}

	item := &types.Item{
		ID:                req.ItemID,
		SourceID:          req.SourceID,
		Title:             req.Title,
		URL:               req.URL,
		Summary:           analysis.Summary,
		Tags:              analysis.Tags,
		Reason:            analysis.Reason,
		Score:             analysis.Score,
		FollowUpQuestions: analysis.FollowUpQuestions,
		EmbeddingRef:      embeddingRef,
		Metadata:          req.Metadata,
	}
	if err := c.items.UpsertItem(ctx, item); err != nil {
		return nil, fmt.Errorf("upsert item %s (source %d, url %s): %w", req.ItemID, req.SourceID, req.URL, err)
	}

	badgeIDs := make([]int64, len(badges))
	for i, badge := range badges {
		badgeIDs[i] = badge.ID
	}
	if err := c.badges.ReplaceItemBadges(ctx, req.ItemID, badgeIDs); err != nil {
		return nil, fmt.Errorf("link badges for item %s: %w", req.ItemID, err)
	}

	log.Printf("Curated item %s in %s (score=%.2f, tags=%d)",
		req.ItemID, time.Since(started).Round(time.Millisecond), item.Score, len(item.Tags))
	return item, nil
}

// analyze calls the inference service and parses its near-JSON
// response. A transport error propagates; a parse failure does not.
func (c *Curator) analyze(ctx context.Context, req *types.CurationRequest) (Analysis, error) {
	started := time.Now()
	prompt := buildAnalysisPrompt(req.Title, req.URL, req.Content)

	response, err := c.chat.Generate(ctx, analysisInstructions, prompt)
	if err != nil {
		return Analysis{}, fmt.Errorf("analyze item %s: %w", req.ItemID, err)
	}

	analysis := parseAnalysis(response)
	if analysis.Reason == config.FallbackReason && analysis.Score == config.FallbackScore && analysis.Summary == "" {
		log.Printf("Analysis response for item %s had no parseable JSON; using fallback", req.ItemID)
	}
	log.Printf("Analyzed item %s in %s", req.ItemID, time.Since(started).Round(time.Millisecond))
	return analysis, nil
}

// embedDocument chunks the content, embeds every chunk in one call,
// and averages the vectors. Empty content yields no vector, which is
// not an error: the item is still stored, just not searchable.
func (c *Curator) embedDocument(content string) ([]float32, error) {
	if c.embedder == nil || c.index == nil {
		return nil, nil
	}
	chunks := chunkWords(content, config.EmbedChunkWords)
	if len(chunks) == 0 {
		return nil, nil
	}

	vectors, err := c.embedder.EmbedTexts(chunks, ai.InputDocument)
	if err != nil {
		return nil, err
	}
	return averageVectors(vectors), nil
}
