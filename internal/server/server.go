// Package server
//
// @title Ache Seu Orgânico API
// @version 1.0
// @description Marketplace API connecting organic producers and consumers
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/organico-dev/organico/internal/auth"
	"github.com/organico-dev/organico/internal/config"
	"github.com/organico-dev/organico/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	validator   *validator.Validate
	asynqClient *asynq.Client
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	// Initialize database with production settings
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	// Initialize JWT authentication
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	auth.InitializeJWT(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	// Initialize validator
	validate := validator.New()

	// Register custom validators
	validate.RegisterValidation("cep", func(fl validator.FieldLevel) bool {
		// Brazilian postal code: 12345-678 or 12345678
		value := fl.Field().String()
		if value == "" {
			return true
		}
		digits := 0
		for i, char := range value {
			switch {
			case char >= '0' && char <= '9':
				digits++
			case char == '-' && i == 5:
				// Separator in the canonical position
			default:
				return false
			}
		}
		return digits == 8
	})

	// Initialize Asynq client for enqueueing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	// Create server
	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		validator:   validate,
		asynqClient: asynqClient,
		version:     version,
	}

	// Seed the product catalog categories if a seed file is configured
	if err := server.seedCategories(cfg.CategorySeedFile); err != nil {
		return nil, err
	}

	// Setup router
	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300  // 5 minutes
		busyTimeout     = 5000 // 5 seconds
		cacheSize       = 10000
	)

	// Open database connection
	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: logger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			logger.Config{
				LogLevel:                  logger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Get underlying sql.DB to configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool settings
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply SQLite pragmas directly. WAL mode must be set first for
	// concurrent reads while the worker writes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		fmt.Sprintf("PRAGMA cache_size=-%d", cacheSize),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	// Set Gin mode based on environment
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS middleware
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	api := s.router.Group("/api")

	// JWT authentication (no auth required)
	api.POST("/token/", s.obtainTokenPair)
	api.POST("/token/refresh/", s.refreshToken)

	// Registration (no auth required)
	api.POST("/users/register/", s.register)

	// Current user profile
	me := api.Group("/users/me")
	me.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		me.GET("/", s.getCurrentUser)
		me.PATCH("/", s.updateCurrentUser)
	}

	// Locations: reads are public, writes require a producer profile.
	// Fixed paths must be registered before the :id parameter route.
	locations := api.Group("/locations")
	{
		locations.GET("/", OptionalAuthMiddleware(s.db, s.logger), s.listLocations)
		locations.GET("/map_data/", s.getMapData)
		locations.GET("/my_locations/", JWTAuthMiddleware(s.db, s.logger), s.getMyLocations)
		locations.GET("/:id/", OptionalAuthMiddleware(s.db, s.logger), s.getLocation)
		locations.POST("/", JWTAuthMiddleware(s.db, s.logger), s.createLocation)
		locations.PATCH("/:id/", JWTAuthMiddleware(s.db, s.logger), s.updateLocation)
		locations.DELETE("/:id/", JWTAuthMiddleware(s.db, s.logger), s.deleteLocation)
	}

	// Favorites (consumer feature, all authenticated)
	favorites := api.Group("/favorites")
	favorites.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		favorites.GET("/", s.listFavorites)
		favorites.POST("/", s.createFavorite)
		favorites.POST("/toggle/", s.toggleFavorite)
		favorites.GET("/check/", s.checkFavorite)
		favorites.DELETE("/:id/", s.deleteFavorite)
	}

	// Product catalog: reads are public, writes producer-only
	products := api.Group("/products")
	{
		products.GET("/", s.listProducts)
		products.GET("/categories/", s.listCategories)
		products.GET("/categories/:id/", s.getCategory)
		products.GET("/:id/", s.getProduct)

		writes := products.Group("")
		writes.Use(JWTAuthMiddleware(s.db, s.logger), ProducerOnlyMiddleware(s.logger))
		{
			writes.POST("/", s.createProduct)
			writes.PUT("/:id/", s.updateProduct)
			writes.DELETE("/:id/", s.deleteProduct)
			writes.POST("/categories/", s.createCategory)
			writes.PUT("/categories/:id/", s.updateCategory)
			writes.DELETE("/categories/:id/", s.deleteCategory)
		}
	}

	// Producer profile
	producers := api.Group("/producers")
	producers.Use(JWTAuthMiddleware(s.db, s.logger), ProducerOnlyMiddleware(s.logger))
	{
		producers.GET("/me/", s.getProducerProfile)
		producers.PATCH("/me/", s.updateProducerProfile)
	}

	// Messaging (stub endpoints, schema-backed)
	messages := api.Group("/messages")
	messages.Use(JWTAuthMiddleware(s.db, s.logger))
	{
		messages.GET("/conversations/", s.listConversations)
		messages.GET("/conversations/:id/messages/", s.listMessages)
		messages.POST("/conversations/:id/messages/", s.sendMessage)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "organico-api",
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Handler returns the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	port := ":8080"

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create HTTP server with production timeouts
	srv := &http.Server{
		Addr:              port,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	// Start server in goroutine
	go func() {
		s.logger.Info().Str("port", port).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Close Asynq client
	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	return nil
}
