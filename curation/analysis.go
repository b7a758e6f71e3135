package curation

import (
	"encoding/json"
	"fmt"
	"strings"

	"curator/config"
)

// Analysis is the structured result requested from the inference
// service for one candidate.
type Analysis struct {
	Summary           string   `json:"summary"`
	Tags              []string `json:"tags"`
	Reason            string   `json:"reason"`
	Score             float64  `json:"score"`
	FollowUpQuestions []string `json:"follow_up_questions"`
}

const analysisInstructions = `You are a content curator. Analyze the article and respond with a single JSON object, no prose around it, shaped as:
{"summary": "...", "tags": ["..."], "reason": "...", "score": 0.0, "follow_up_questions": ["..."]}
summary: 2-3 sentences. tags: up to 5 short topical tags. reason: one sentence on why the article matters. score: relevance from 0 to 1. follow_up_questions: up to 3 questions a reader might ask next.`

// buildAnalysisPrompt assembles the user message for the analysis
// call. Content is truncated to respect inference input limits.
func buildAnalysisPrompt(title, url, content string) string {
	if len(content) > config.MaxPromptContentChars {
		content = content[:config.MaxPromptContentChars]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", title)
	fmt.Fprintf(&b, "URL: %s\n\n", url)
	fmt.Fprintf(&b, "Content:\n%s\n", content)
	return b.String()
}

// parseAnalysis extracts the first well-formed JSON object from the
// model's response text. The service returns near-JSON at best, so
// parsing is defensive: any failure yields the conservative fallback
// instead of an error, because curation must never hard-fail on
// malformed model output alone.
func parseAnalysis(response string) Analysis {
	raw, ok := extractJSONObject(response)
	if !ok {
		return fallbackAnalysis()
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return fallbackAnalysis()
	}

	if analysis.Score < 0 {
		analysis.Score = 0
	}
	if analysis.Score > 1 {
		analysis.Score = 1
	}
	if len(analysis.Tags) > config.MaxTags {
		analysis.Tags = analysis.Tags[:config.MaxTags]
	}
	if analysis.Tags == nil {
		analysis.Tags = []string{}
	}
	if analysis.Reason == "" {
		analysis.Reason = config.FallbackReason
	}
	return analysis
}

func fallbackAnalysis() Analysis {
	return Analysis{
		Summary: "",
		Tags:    []string{},
		Reason:  config.FallbackReason,
		Score:   config.FallbackScore,
	}
}

// extractJSONObject returns the first balanced, valid JSON object in
// text. Braces inside string literals are ignored.
func extractJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}
	return "", false
}

// matchingBrace returns the index of the brace closing the object
// opened at start, or -1 when the object never closes.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
