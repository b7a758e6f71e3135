package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"curator/ai"
	"curator/api"
	"curator/common"
	"curator/config"
	"curator/connector"
	"curator/curation"
	"curator/deduplication"
	"curator/kafka"
	"curator/router"
	"curator/scanner"
	"curator/scheduler"
	"curator/store"
	"curator/types"
	"curator/vector"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	cfg := config.FromEnv()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Item / source / badge store
	db, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open item store: %v", err)
	}
	defer db.Close()

	if err := seedSources(ctx, db, cfg.SourcesFile); err != nil {
		log.Fatalf("Failed to seed sources: %v", err)
	}

	// Dedup sets + progress events share one Redis connection
	seenStore, err := deduplication.NewRedisSeenStore(deduplication.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Fatalf("Failed to connect dedup store: %v", err)
	}
	defer seenStore.Close()

	// AI inference + embeddings
	chat, err := ai.NewCohereChat(cfg.CohereAPIKey, cfg.ChatModel)
	if err != nil {
		log.Fatalf("Failed to initialize inference client: %v", err)
	}

	embedder := ai.NewDefaultEmbeddingsProvider(cfg.EmbeddingModel)
	var index vector.Index
	if embedder != nil {
		chroma, err := vector.NewChroma(vector.ChromaConfig{
			Host:           cfg.ChromaHost,
			Port:           cfg.ChromaPort,
			CollectionName: cfg.ChromaCollection,
		})
		if err != nil {
			log.Printf("Warning: vector index unavailable, search disabled: %v", err)
			embedder = nil
		} else {
			index = chroma
			log.Printf("Vector index ready (embeddings: %s)", embedder.ModelName())
		}
	} else {
		log.Printf("No embeddings provider configured; semantic search disabled")
	}

	curator := curation.NewCurator(chat, embedder, index, db, db)

	// Kafka producers for the two pipeline stages
	scanProducer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.ScanTopic})
	if err != nil {
		log.Fatalf("Failed to create scan producer: %v", err)
	}
	defer scanProducer.Close()

	curationProducer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, Topic: cfg.CurationTopic})
	if err != nil {
		log.Fatalf("Failed to create curation producer: %v", err)
	}
	defer curationProducer.Close()

	// Optional raw-candidate archive
	var archiver scanner.Archiver
	if cfg.S3Bucket != "" {
		s3Client, err := common.NewS3(ctx, common.S3Config{
			Region:       cfg.S3Region,
			Profile:      cfg.S3Profile,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			log.Printf("Warning: failed to init S3 client: %v (archival disabled)", err)
		} else {
			archiver = common.NewCandidateArchive(s3Client, cfg.S3Bucket, cfg.S3Prefix)
			log.Printf("Archiving candidates to s3://%s/%s", cfg.S3Bucket, cfg.S3Prefix)
		}
	}

	// Scan workers, one per source type
	extractor := connector.NewExtractor()
	dispatcher := kafka.NewCurationDispatcher(curationProducer)
	workers := router.New(
		scanner.NewWorker(connector.NewRSSConnector(extractor), seenStore, dispatcher, archiver, db),
		scanner.NewWorker(connector.NewHTMLConnector(nil, extractor), seenStore, dispatcher, archiver, db),
	)

	scanConsumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.ScanTopic,
		GroupID: cfg.ConsumerGroup + ".scan",
		Handler: workers,
	})
	if err != nil {
		log.Fatalf("Failed to create scan consumer: %v", err)
	}
	if err := scanConsumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start scan consumer: %v", err)
	}
	defer scanConsumer.Close()

	curationConsumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.CurationTopic,
		GroupID: cfg.ConsumerGroup + ".curate",
		Handler: curation.NewConsumerHandler(curator),
	})
	if err != nil {
		log.Fatalf("Failed to create curation consumer: %v", err)
	}
	if err := curationConsumer.Start(ctx); err != nil {
		log.Fatalf("Failed to start curation consumer: %v", err)
	}
	defer curationConsumer.Close()

	// Scheduler with progress events on Redis pub/sub
	events := scheduler.NewRedisEventPublisher(seenStore.Client(), cfg.EventsChannel)
	sched := scheduler.New(db, scanProducer, events, cfg.ScanInterval)
	go sched.Run(ctx)
	log.Printf("Scheduler running (interval: %s)", cfg.ScanInterval)

	// Control surface
	engine := api.NewRouter(api.Deps{
		Scheduler: sched,
		Curator:   curator,
		Items:     db,
		Badges:    db,
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: engine}
	go func() {
		log.Printf("Starting API server on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	cancel()
	_ = server.Shutdown(context.Background())
}

// seedSources creates any source from the seed file that does not
// exist yet (matched by name). Missing file is not an error; sources
// may be managed out of band.
func seedSources(ctx context.Context, sources store.SourceStore, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No sources file at %s; skipping seed", path)
			return nil
		}
		return err
	}

	var seeds []types.Source
	if err := json.Unmarshal(data, &seeds); err != nil {
		return err
	}

	for i := range seeds {
		if err := sources.EnsureSource(ctx, &seeds[i]); err != nil {
			return err
		}
		log.Printf("Source ready: %s (id=%d, type=%s, enabled=%t)",
			seeds[i].Name, seeds[i].ID, seeds[i].Type, seeds[i].Enabled)
	}
	return nil
}
