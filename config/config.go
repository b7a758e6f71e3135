package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all process configuration, resolved from environment
// variables with reasonable defaults. Load .env first via godotenv.
type Config struct {
	Port string

	// Kafka
	KafkaBrokers  []string
	ScanTopic     string
	CurationTopic string
	ConsumerGroup string

	// Redis (dedup sets + progress event pub/sub)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	EventsChannel string

	// SQLite item/source/badge store
	DatabasePath string

	// Chroma vector index
	ChromaHost       string
	ChromaPort       int
	ChromaCollection string

	// Cohere
	CohereAPIKey   string
	ChatModel      string
	EmbeddingModel string

	// Scheduler
	ScanInterval time.Duration

	// Optional S3 candidate archive
	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	// Source seed file (JSON array of sources)
	SourcesFile string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Port:             getEnv("PORT", "8080"),
		KafkaBrokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		ScanTopic:        getEnv("SCAN_TOPIC", DefaultScanTopic),
		CurationTopic:    getEnv("CURATION_TOPIC", DefaultCurationTopic),
		ConsumerGroup:    getEnv("CONSUMER_GROUP", DefaultConsumerGroup),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    os.Getenv("REDIS_PASS"),
		RedisDB:          getEnvInt("REDIS_DB", 0),
		EventsChannel:    getEnv("EVENTS_CHANNEL", DefaultEventsChannel),
		DatabasePath:     getEnv("DATABASE_PATH", "curator.db"),
		ChromaHost:       getEnv("CHROMA_HOST", "localhost"),
		ChromaPort:       getEnvInt("CHROMA_PORT", 8000),
		ChromaCollection: getEnv("CHROMA_COLLECTION", "curator_items"),
		CohereAPIKey:     os.Getenv("COHERE_API_KEY"),
		ChatModel:        getEnv("CHAT_MODEL", "command-r-08-2024"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "embed-english-v3.0"),
		ScanInterval:     getEnvDuration("SCAN_INTERVAL", DefaultScanInterval),
		S3Bucket:         strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:         strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:        strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:         normalizePrefix(os.Getenv("S3_PREFIX")),
		S3UsePathStyle:   strings.EqualFold(os.Getenv("S3_USE_PATH_STYLE"), "true"),
		SourcesFile:      getEnv("SOURCES_FILE", "sources.json"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	return strings.Trim(prefix, "/") + "/"
}
