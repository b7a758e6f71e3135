package config

import "time"

// Scan scheduling constants
const (
	// DefaultScanInterval is the fixed period between scheduled scan cycles
	DefaultScanInterval = 6 * time.Hour

	// ConnectorPageDelay is the pause between paginated connector
	// sub-requests to avoid upstream rate limiting
	ConnectorPageDelay = 100 * time.Millisecond
)

// Curation constants
const (
	// MaxPromptContentChars bounds how much candidate content goes
	// into the analysis prompt
	MaxPromptContentChars = 5000

	// MaxTags is the maximum number of tags requested from the model
	MaxTags = 5

	// FallbackScore is assigned when the model response cannot be parsed
	FallbackScore = 0.3

	// FallbackReason marks items whose analysis fell back to defaults
	FallbackReason = "requires review"

	// EmbedChunkWords is the word count per embedding chunk
	EmbedChunkWords = 200

	// MaxRelatedItems caps related-item context for question answering
	MaxRelatedItems = 3
)

// Connector constants
const (
	// ExtractWorkerCount sizes the content extraction worker pool
	ExtractWorkerCount = 5

	// ExtractTimeout bounds a single readability extraction
	ExtractTimeout = 30 * time.Second
)

// Kafka topic and group defaults
const (
	DefaultScanTopic     = "curator.scan"
	DefaultCurationTopic = "curator.curate"
	DefaultConsumerGroup = "curator"
	DefaultEventsChannel = "curator.events"
)
