package connector

import (
	"fmt"
	"log"
	"sync"

	readability "github.com/go-shiori/go-readability"

	"curator/config"
	"curator/types"
)

// Extractor fetches and extracts full article content for candidates
// using a bounded worker pool. Extraction failures are recorded on the
// candidate and do not drop it; the feed summary remains as content.
type Extractor struct {
	workers int
}

// NewExtractor creates an extractor with the default pool size.
func NewExtractor() *Extractor {
	return &Extractor{workers: config.ExtractWorkerCount}
}

// ExtractAll runs content extraction for every candidate in place.
func (e *Extractor) ExtractAll(candidates []types.Candidate) {
	var wg sync.WaitGroup
	indexChan := make(chan int, len(candidates))

	for w := 0; w < e.workers; w++ {
		go func(workerID int) {
			for i := range indexChan {
				if err := extractContent(&candidates[i]); err != nil {
					if candidates[i].Metadata == nil {
						candidates[i].Metadata = map[string]string{}
					}
					candidates[i].Metadata["extraction_error"] = err.Error()
					log.Printf("[Worker %d] Failed to extract %s: %v", workerID, candidates[i].URL, err)
				}
				wg.Done()
			}
		}(w)
	}

	for i := range candidates {
		wg.Add(1)
		indexChan <- i
	}

	wg.Wait()
	close(indexChan)
}

func extractContent(candidate *types.Candidate) error {
	if candidate.URL == "" {
		return fmt.Errorf("candidate URL is empty")
	}

	article, err := readability.FromURL(candidate.URL, config.ExtractTimeout)
	if err != nil {
		return fmt.Errorf("readability extraction failed: %w", err)
	}

	if article.TextContent != "" {
		candidate.Content = article.TextContent
	}
	if candidate.Metadata == nil {
		candidate.Metadata = map[string]string{}
	}
	if article.Excerpt != "" {
		candidate.Metadata["excerpt"] = article.Excerpt
	}
	if article.Byline != "" && candidate.Metadata["author"] == "" {
		candidate.Metadata["author"] = article.Byline
	}

	return nil
}
