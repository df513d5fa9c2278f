package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/yourusername/trivia-engine/internal/config"
	"github.com/yourusername/trivia-engine/internal/domain/repository"
	"github.com/yourusername/trivia-engine/internal/event"
	"github.com/yourusername/trivia-engine/internal/handler"
	"github.com/yourusername/trivia-engine/internal/middleware"
	memoryRepo "github.com/yourusername/trivia-engine/internal/repository/memory"
	pgRepo "github.com/yourusername/trivia-engine/internal/repository/postgres"
	redisRepo "github.com/yourusername/trivia-engine/internal/repository/redis"
	"github.com/yourusername/trivia-engine/internal/service"
	"github.com/yourusername/trivia-engine/internal/source/opentdb"
	ws "github.com/yourusername/trivia-engine/internal/websocket"
	"github.com/yourusername/trivia-engine/pkg/auth"
	"github.com/yourusername/trivia-engine/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Корневой контекст для фоновых горутин
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	var redisClient goredis.UniversalClient
	if cfg.Redis.Enabled() {
		redisClient, err = database.NewUniversalRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		log.Println("Successfully connected to Redis")
	}

	// Репозитории
	bankRepo := pgRepo.NewQuestionBankRepo(db)
	resultRepo := pgRepo.NewResultRepo(db)

	var store repository.SessionStore
	switch cfg.Quiz.SessionStore {
	case "redis":
		cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
		if err != nil {
			log.Printf("Failed to initialize CacheRepo: %v", err)
			os.Exit(1)
		}
		store = redisRepo.NewSessionStore(cacheRepo)
	default:
		memStore := memoryRepo.NewSessionStore()
		go runSessionCleanup(ctx, memStore, time.Minute)
		store = memStore
	}

	openTDB := opentdb.NewClient(opentdb.Config{
		BaseURL: cfg.OpenTDB.BaseURL,
		Timeout: cfg.OpenTDB.Timeout(),
	})
	var source repository.QuestionSource = openTDB
	if cfg.Quiz.Source == "bank" {
		source = bankRepo
	}
	log.Printf("Источник вопросов: %s, хранилище сессий: %s", cfg.Quiz.Source, cfg.Quiz.SessionStore)

	var publisher event.Publisher = event.LogPublisher{}
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := event.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			log.Printf("Failed to connect to AMQP broker: %v", err)
			os.Exit(1)
		}
		publisher = amqpPublisher
	}
	defer publisher.Close()

	tickets, err := auth.NewTicketService(cfg.Ticket.Secret, cfg.Ticket.Expiry())
	if err != nil {
		log.Printf("Failed to initialize TicketService: %v", err)
		os.Exit(1)
	}

	// Сервисы
	quizService := service.NewQuizService(source, store, resultRepo, tickets, publisher, service.QuizConfig{
		DefaultQuestionCount: cfg.Quiz.DefaultQuestionCount,
		MaxQuestionCount:     cfg.Quiz.MaxQuestionCount,
		PassThreshold:        cfg.Quiz.PassThreshold,
		SessionTTL:           cfg.Quiz.SessionTTL(),
	})
	resultService := service.NewResultService(resultRepo)
	bankService := service.NewBankService(bankRepo, openTDB)

	routes := handler.Routes{
		Quiz:    handler.NewQuizHandler(quizService),
		Results: handler.NewResultHandler(resultService),
		Bank:    handler.NewBankHandler(bankService),
		WS:      handler.NewWSHandler(quizService, ws.NewUpgrader(cfg.Server.AllowedOrigins)),
		Auth:    middleware.NewAuthMiddleware(tickets, cfg.Server.AdminKey),
	}
	if redisClient != nil && cfg.RateLimit.CreatePerMinute > 0 {
		limiter := middleware.NewRateLimiter(middleware.NewRedisCounter(redisClient))
		routes.CreateLimit = limiter.LimitByIP(middleware.SessionCreateRateLimitConfig(cfg.RateLimit.CreatePerMinute))
	}

	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	handler.RegisterRoutes(router, routes)

	// Тайм-ауты защищают от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := database.GetSQLDB(db); err == nil {
		sqlDB.Close()
	}
	log.Println("Server exited properly")
}

// corsConfig разрешает заголовки тикета и админ-ключа
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.TicketHeader, middleware.AdminKeyHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}

// runSessionCleanup периодически удаляет просроченные сессии из памяти
func runSessionCleanup(ctx context.Context, store *memoryRepo.SessionStore, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := store.Cleanup(); removed > 0 {
				log.Printf("[SessionCleanup] Удалено просроченных сессий: %d", removed)
			}
		case <-ctx.Done():
			log.Println("[SessionCleanup] Остановлено")
			return
		}
	}
}
