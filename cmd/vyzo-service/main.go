package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/api"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/config"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/database"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/email"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/services"
	"github.com/benamorasma70-coder/vyzo-saas-sub000/internal/workflows"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const statsInterval = 10 * time.Minute

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Vyzo Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.RunMigrations(db, logger); err != nil {
			logger.Fatalf("Error running migrations: %v", err)
		}
	}

	// Conectar a Redis; sin Redis no hay caché ni idempotencia de conversiones
	var cache services.Cache
	redis, err := database.ConnectRedis(cfg)
	if err != nil {
		logger.Warnf("Error connecting to Redis: %v", err)
		redis = nil
	} else {
		defer redis.Close()
		cache = redis
	}

	// Inicializar almacenamiento de PDF
	var objects services.ObjectStore
	if cfg.StorageEnabled() {
		store, err := database.NewArtifactStore(context.Background(), &cfg.Storage, logger)
		if err != nil {
			logger.Warnf("Error initializing document storage: %v", err)
		} else {
			if err := store.HealthCheck(context.Background()); err != nil {
				logger.Warnf("Document storage health check failed: %v", err)
			} else {
				logger.Info("Document storage connection healthy")
			}
			objects = store
		}
	} else {
		logger.Warn("Storage credentials not provided, PDF generation will not be available")
	}

	// Inicializar servicio de Resend
	var resendService *email.ResendService
	if cfg.Email.ResendAPIKey != "" {
		resendService = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Server.BaseURL, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email service will not be available")
	}

	// Inicializar cliente de Inngest
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	}

	// Con Inngest los emails salen como evento con reintentos; sin Inngest se envían en el request
	var notifier services.DocumentNotifier
	var sender workflows.DocumentSender
	if resendService != nil {
		sender = resendService
		notifier = resendService
		if inngestClient != nil {
			notifier = workflows.NewEventNotifier(inngestClient)
		}
	}

	// Inicializar repositorios
	userRepo := database.NewUserRepository(db, logger)
	apiKeyRepo := database.NewAPIKeyRepository(db, logger)
	customerRepo := database.NewCustomerRepository(db, logger)
	productRepo := database.NewProductRepository(db, logger)
	documentRepo := database.NewDocumentRepository(db, logger)
	artifactRepo := database.NewArtifactRepository(db, logger)
	subscriptionRepo := database.NewSubscriptionRepository(db, logger)

	// Inicializar servicios
	documentService := services.NewDocumentService(documentRepo, customerRepo, productRepo, cache, notifier, cfg.Documents, logger)
	artifactService := services.NewArtifactService(documentRepo, customerRepo, artifactRepo, objects, services.NewDocumentGenerator(logger), logger)
	customerService := services.NewCustomerService(customerRepo, logger)
	productService := services.NewProductService(productRepo, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, cache, cfg.Subscription, logger)
	userService := services.NewUserService(userRepo, apiKeyRepo, cfg.Auth.AdminEmails, logger)

	if inngestClient != nil {
		if err := inngestClient.RegisterWorkflows(cfg.Inngest.SweepCron, documentService, sender); err != nil {
			logger.Warnf("Error registering workflows: %v", err)
		}
	} else {
		logger.Warn("Inngest not available, overdue and expired statuses will only be shown, not persisted")
	}

	// Inicializar API
	apiHandler := api.NewAPI(
		documentService,
		artifactService,
		customerService,
		productService,
		subscriptionService,
		userService,
		logger,
	)

	// Configurar router
	router := setupRouter(apiHandler, inngestClient, db, redis, cfg)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go logStats(statsCtx, db, redis, logger)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, inngestClient *workflows.InngestClient, db *database.DB, redis *database.Redis, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Middleware de CORS para desarrollo
	if cfg.IsDevelopment() {
		router.Use(func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-API-Key, Idempotency-Key")

			if c.Request.Method == "OPTIONS" {
				c.AbortWithStatus(204)
				return
			}

			c.Next()
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "disabled"}

		if err := db.HealthCheck(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.HealthCheck(c.Request.Context()); err != nil {
				checks["redis"] = err.Error()
			}
		}

		c.JSON(status, gin.H{
			"status":    http.StatusText(status),
			"checks":    checks,
			"timestamp": time.Now().UTC(),
			"service":   "vyzo-service",
			"version":   "1.0.0",
		})
	})

	// Endpoint de funciones de Inngest
	if inngestClient != nil {
		router.Any("/api/inngest", gin.WrapH(inngestClient.Handler()))
	}

	apiHandler.RegisterRoutes(router)

	return router
}

// logStats registra periódicamente las estadísticas de los pools
func logStats(ctx context.Context, db *database.DB, redis *database.Redis, logger *logrus.Logger) {
	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.LogStats(logger)
			if redis != nil {
				redis.LogStats(logger)
			}
		}
	}
}
