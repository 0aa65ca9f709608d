package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"wine-sommelier-be/internal/config"
	"wine-sommelier-be/internal/controller"
	"wine-sommelier-be/internal/migration"
	"wine-sommelier-be/internal/pkg/logger"
	"wine-sommelier-be/internal/repository/unitofwork"
	"wine-sommelier-be/internal/service"
	"wine-sommelier-be/pkg/embedding"
	"wine-sommelier-be/pkg/llm/factory"
	pkgNats "wine-sommelier-be/pkg/nats"
	"wine-sommelier-be/pkg/rag/classifier"
	"wine-sommelier-be/pkg/rag/retriever"
)

type Container struct {
	// Controllers
	SommelierController controller.ISommelierController
	MemoryController    controller.IMemoryController
	AdminController     controller.IAdminController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared infrastructure main.go needs for shutdown
	Logger  logger.ILogger
	NatsPub *pkgNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	if err := migration.Run(db, sysLogger); err != nil {
		log.Fatalf("[FATAL] Database migration failed: %v", err)
	}

	// Text assets: prompts, keyword dictionaries, canned responses.
	// Watch() hot-swaps them on file change without a restart.
	assetStore, err := config.NewAssetStore(cfg.Assets.Dir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load assets: %v", err)
	}
	go assetStore.Watch()

	// 2. Event bus (in-process ingestion pipeline)
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize embedding provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure: NATS and Redis are optional, the service degrades
	// without them.
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}

	// 5. Services
	memoryService := service.NewMemoryService(
		uowFactory,
		rdb,
		natsPub,
		sysLogger,
		time.Duration(cfg.Retrieval.ContextCacheTTLSeconds)*time.Second,
	)

	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	ingestService := service.NewIngestService(
		uowFactory,
		publisherService,
		embeddingProvider,
		assetStore,
		sysLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.IngestTopic,
		ingestService,
		natsPub,
		sysLogger,
	)

	queryClassifier := classifier.NewClassifier(llmProvider, assetStore, sysLogger)
	itemRetriever := retriever.NewRetriever(
		unitofwork.NewUnitOfWork(db).KnowledgeRepository(),
		embeddingProvider,
		assetStore,
		sysLogger,
	)

	sommelierService := service.NewSommelierService(
		queryClassifier,
		itemRetriever,
		memoryService,
		llmProvider,
		assetStore,
		natsPub,
		sysLogger,
		cfg.Retrieval.MaxResults,
	)

	// 6. Controllers
	return &Container{
		SommelierController: controller.NewSommelierController(sommelierService, sysLogger),
		MemoryController:    controller.NewMemoryController(memoryService),
		AdminController:     controller.NewAdminController(memoryService, ingestService, uowFactory, cfg.Ai.LLMModel),

		ConsumerService: consumerService,
		Logger:          sysLogger,
		NatsPub:         natsPub,
	}
}
