// Package server exposes the RPC procedures over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	_ "dogpark/docs" // swagger docs
	"dogpark/internal/cache"
	"dogpark/internal/config"
	"dogpark/internal/database"
	"dogpark/internal/featureflags"
	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/session"
	"dogpark/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	handle         *database.Handle
	redis          *redis.Client
	cache          *cache.Cache
	sessions       *session.Manager
	store          storage.Store
	featureFlags   *featureflags.Manager
	promMiddleware *fiberprometheus.FiberPrometheus
	app            *fiber.App
	procedures     map[string]*procedure

	svcMu sync.Mutex
	svc   *services
}

// NewServer creates a server whose database connection is established on
// first use.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}
	redisClient := cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, database.NewHandle(cfg), redisClient, store), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, handle *database.Handle, redisClient *redis.Client, store storage.Store) *Server {
	s := &Server{
		config:         cfg,
		handle:         handle,
		redis:          redisClient,
		cache:          cache.New(redisClient),
		sessions:       session.NewManager(cfg, redisClient),
		store:          store,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		promMiddleware: middleware.InitMetrics("dogpark-api"),
	}
	s.procedures = s.registerProcedures()
	return s
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	maxUpload := s.config.ImageMaxUploadSizeMB
	if maxUpload <= 0 {
		maxUpload = 10
	}
	app := fiber.New(fiber.Config{
		AppName: "Dogpark API",
		// Base64 inflates uploads by a third; allow a full set of post images.
		BodyLimit:    (maxUpload*models.MaxImagesPerPost*4/3 + 1) << 20,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, &models.AppError{
			Code:    codeForStatus(fe.Code),
			Message: fe.Message,
		})
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				models.NewRateLimitedError("Too many requests, please try again later."))
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	s.mountMedia(app)

	rpc := api.Group("/rpc")
	for _, p := range s.procedures {
		handlers := append([]fiber.Handler{}, p.middleware...)
		handlers = append(handlers, s.rpcHandler(p))
		rpc.Post("/"+p.name, handlers...)
		if p.kind == query {
			rpc.Get("/"+p.name, handlers...)
		}
	}
	rpc.All("/*", s.unknownProcedure)
}

// mountMedia serves blobs written by the configured store.
func (s *Server) mountMedia(app *fiber.App) {
	prefix := s.config.StoragePublicURL
	if !strings.HasPrefix(prefix, "/") {
		return
	}
	prefix = strings.TrimRight(prefix, "/")
	switch st := s.store.(type) {
	case *storage.LocalStore:
		app.Static(prefix, st.Dir(), fiber.Static{Browse: false, MaxAge: 3600})
	case *storage.MemoryStore:
		app.Get(prefix+"/*", func(c *fiber.Ctx) error {
			data, contentType, ok := st.Get(c.Params("*"))
			if !ok {
				return fiber.ErrNotFound
			}
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send(data)
		})
	}
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and redis health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if db, err := s.handle.Get(ctx); err != nil {
		dbStatus = "unavailable"
	} else if sqlDB, err := db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "disabled"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	log.Printf("Server starting on port %s...", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if err := s.handle.Close(); err != nil {
		log.Printf("error closing database: %v", err)
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
