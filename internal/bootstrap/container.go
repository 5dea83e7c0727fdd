package bootstrap

import (
	"context"
	"log"
	"time"

	"hof-chatbot-be/internal/config"
	"hof-chatbot-be/internal/controller"
	"hof-chatbot-be/internal/pkg/logger"
	"hof-chatbot-be/internal/repository/implementation"
	"hof-chatbot-be/internal/service"
	"hof-chatbot-be/pkg/embedding"
	"hof-chatbot-be/pkg/llm/factory"
	"hof-chatbot-be/pkg/rag/access"
	"hof-chatbot-be/pkg/rag/ambiguity"
	"hof-chatbot-be/pkg/rag/clarify"
	"hof-chatbot-be/pkg/rag/conversation"
	"hof-chatbot-be/pkg/rag/intent"
	"hof-chatbot-be/pkg/rag/rerank"
	"hof-chatbot-be/pkg/rag/response"
	ragrouter "hof-chatbot-be/pkg/rag/router"
	"hof-chatbot-be/pkg/rag/search"
	"hof-chatbot-be/pkg/vectorstore/pgvector"

	pktNats "hof-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController
	RuleController controller.IRuleController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	Sweeper         *conversation.Sweeper

	// Infrastructure handles closed on shutdown
	NatsPublisher *pktNats.Publisher
	Logger        logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(
			cfg.Keys.OpenAI,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Conversation store: in-memory by default, Redis when sessions must
	// survive restarts or be shared across replicas.
	var convStore conversation.Store
	if cfg.Chat.SessionStore == "redis" {
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
		convStore = conversation.NewRedisStore(rdb, "")
		log.Println("[INFO] Using Conversation Store: REDIS")
	} else {
		convStore = conversation.NewMemoryStore()
		log.Println("[INFO] Using Conversation Store: MEMORY")
	}

	// 3. Retrieval Pipeline
	var incidents access.IncidentPublisher
	if natsPub != nil {
		incidents = pktNats.NewIncidentNotifier(natsPub, sysLogger)
	}
	ownerValidator := access.NewValidator(sysLogger, incidents)

	var reranker rerank.Reranker
	if cfg.Keys.Jina != "" {
		reranker = rerank.NewJinaReranker(cfg.Keys.Jina)
		log.Println("[INFO] Reranking enabled (Jina)")
	}

	searchConfig := search.DefaultConfig()
	searchConfig.BroadTopK = cfg.Chat.BroadTopK
	searchConfig.TopK = cfg.Chat.TopK
	searchConfig.RerankTopN = cfg.Chat.RerankTopN

	vectorIndex := pgvector.NewStore(db)
	searcher := search.NewOrchestrator(
		vectorIndex,
		embeddingProvider,
		ownerValidator,
		reranker,
		sysLogger,
		searchConfig,
	)

	// 3.5 Conversation and Routing
	conversations := conversation.NewManager(convStore, sysLogger, time.Now)
	sweeper := conversation.NewSweeper(convStore, sysLogger, conversation.SweepInterval, time.Now)

	ruleRepo := implementation.NewAmbiguityRuleRepository(db)
	detector := ambiguity.NewDetector(ruleRepo, sysLogger)

	resolver := intent.NewResolver(llmProvider, sysLogger)
	clarifyBuilder := clarify.NewBuilder(nil)
	router := ragrouter.NewRouter(resolver, clarifyBuilder, conversations, sysLogger)
	generator := response.NewGenerator(llmProvider, sysLogger)

	// 4. Services
	chatService := service.NewChatService(
		router,
		searcher,
		detector,
		generator,
		conversations,
		pubSub,
		cfg.Chat.TurnTopic,
		sysLogger,
	)

	ruleService := service.NewRuleService(ruleRepo, detector, sysLogger)

	chatLogRepo := implementation.NewChatLogRepository(db)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Chat.TurnTopic,
		chatLogRepo,
		sysLogger,
	)

	// Incident monitor (Worker)
	if natsSub != nil {
		incidentService := service.NewIncidentService(natsSub, sysLogger)
		go func() {
			if err := incidentService.Start(); err != nil {
				log.Printf("[WARN] Incident monitor failed to start: %v", err)
			}
		}()
	}

	// 5. Controllers
	return &Container{
		ChatController: controller.NewChatController(chatService),
		RuleController: controller.NewRuleController(ruleService),

		ConsumerService: consumerService,
		Sweeper:         sweeper,
		NatsPublisher:   natsPub,
		Logger:          sysLogger,
	}
}
