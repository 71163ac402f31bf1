package bootstrap

import (
	"context"
	"log"

	"ai-meetingassist-be/internal/config"
	"ai-meetingassist-be/internal/controller"
	"ai-meetingassist-be/internal/handler"
	"ai-meetingassist-be/internal/metrics"
	"ai-meetingassist-be/internal/pkg/logger"
	"ai-meetingassist-be/internal/repository/implementation"
	"ai-meetingassist-be/internal/repository/memory"
	"ai-meetingassist-be/internal/service"
	"ai-meetingassist-be/internal/websocket"
	"ai-meetingassist-be/pkg/answering"
	"ai-meetingassist-be/pkg/answering/arbiter"
	"ai-meetingassist-be/pkg/answering/orchestrator"
	"ai-meetingassist-be/pkg/answering/tiers"
	"ai-meetingassist-be/pkg/embedding"
	"ai-meetingassist-be/pkg/llm/factory"
	"ai-meetingassist-be/pkg/searchcache"
	"ai-meetingassist-be/pkg/transcript"
	"ai-meetingassist-be/pkg/vectorstore"
	qdrantstore "ai-meetingassist-be/pkg/vectorstore/qdrant"

	pktNats "ai-meetingassist-be/pkg/nats"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TranscriptController controller.ITranscriptController
	QuestionController   controller.IQuestionController
	SessionController    controller.ISessionController

	// Background Services (Exposed for main.go to run)
	QuestionConsumer *service.QuestionConsumerService

	// WebSockets
	StreamHandler *handler.StreamHandler
	WebSocketHub  *websocket.Hub

	// Metrics registry for the /metrics endpoint
	MetricsRegistry *prometheus.Registry
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	metricsRegistry := prometheus.NewRegistry()
	if err := metrics.Register(metricsRegistry); err != nil {
		log.Printf("[WARN] Failed to register metrics: %v", err)
	}

	// 2. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GoogleGeminiKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GoogleGeminiKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var documentIndex vectorstore.VectorStore
	documentIndex, err = qdrantstore.New(qdrantstore.Config{
		URL:            cfg.Search.QdrantURL,
		CollectionName: cfg.Search.QdrantCollection,
		APIKey:         cfg.Search.QdrantAPIKey,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Qdrant client: %v", err)
	}

	// 3. Infrastructure
	// The detection pipeline rides on NATS end to end, so an unreachable
	// broker is a configuration error, not a degraded mode.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("[FATAL] Failed to connect to NATS Subscriber: %v", err)
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
	}

	wsLogger := logger.NewIsolatedLogger("logs/stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Discovery Pipeline
	policy := answering.Policy{
		DocumentTimeout:    cfg.Answering.DocumentTimeout,
		MeetingTimeout:     cfg.Answering.MeetingTimeout,
		MonitorTimeout:     cfg.Answering.MonitorTimeout,
		GeneratedTimeout:   cfg.Answering.GeneratedTimeout,
		DocumentThreshold:  cfg.Answering.DocumentThreshold,
		MeetingThreshold:   cfg.Answering.MeetingThreshold,
		MonitorThreshold:   cfg.Answering.MonitorThreshold,
		GeneratedThreshold: cfg.Answering.GeneratedThreshold,
	}

	searchCache := searchcache.New(cfg.Answering.CacheMaxEntries, cfg.Answering.CacheTTL, cfg.Answering.SemanticThreshold)
	searchCache.StartJanitor(context.Background(), cfg.Answering.CacheTTL)

	feed := transcript.NewFeed()
	questionRepo := implementation.NewQuestionRepository(db)
	transcriptRepo := implementation.NewTranscriptEmbeddingRepository(db)
	questionRegistry := memory.NewQuestionRegistry(0)

	documentTier := tiers.NewDocumentTier(searchCache, embeddingProvider, documentIndex, cfg.Search.TopK, sysLogger)
	meetingTier := tiers.NewMeetingTier(searchCache, embeddingProvider, transcriptRepo, cfg.Search.TopK, sysLogger)
	monitorTier := tiers.NewMonitorTier(feed, cfg.Answering.MonitorThreshold, sysLogger)
	generatedTier := tiers.NewGeneratedTier(llmProvider, searchCache, embeddingProvider, cfg.Answering.GeneratedThreshold, sysLogger)

	notifier := service.NewNotifierService(wsHub, natsPub, sysLogger)
	arb := arbiter.New(policy, questionRepo, notifier, sysLogger)
	orch := orchestrator.New(policy, arb, questionRegistry, documentTier, meetingTier, monitorTier, generatedTier, sysLogger)

	// 5. Services
	sessionService := service.NewSessionService(orch, searchCache, transcriptRepo, sysLogger)
	transcriptService := service.NewTranscriptService(feed, embeddingProvider, transcriptRepo, natsPub, sessionService, sysLogger)
	questionService := service.NewQuestionService(natsPub, questionRegistry, questionRepo, sysLogger)

	questionConsumer := service.NewQuestionConsumerService(natsSub, orch, sysLogger)
	go questionConsumer.Start()

	streamHandler := handler.NewStreamHandler(wsHub, wsLogger)

	return &Container{
		TranscriptController: controller.NewTranscriptController(transcriptService),
		QuestionController:   controller.NewQuestionController(questionService),
		SessionController:    controller.NewSessionController(sessionService),

		QuestionConsumer: questionConsumer,

		StreamHandler: streamHandler,
		WebSocketHub:  wsHub,

		MetricsRegistry: metricsRegistry,
	}
}
