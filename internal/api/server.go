package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dropsync/internal/api/handlers"
	"dropsync/internal/api/middleware"
	"dropsync/internal/config"
	"dropsync/internal/database"
	"dropsync/internal/logger"
	"dropsync/internal/syncer"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, controller *syncer.Controller) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	runHandler := handlers.NewRunHandler(db.DB, logger)
	syncHandler := handlers.NewSyncHandler(controller, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Sync operations
		sync := v1.Group("/sync")
		{
			sync.POST("/:operation", syncHandler.Trigger)
		}

		// Run history
		runs := v1.Group("/runs")
		{
			runs.GET("", runHandler.List)
			runs.GET("/:id", runHandler.Get)
		}

		// Per-product diagnostics
		products := v1.Group("/products")
		{
			products.GET("/:id/availability", syncHandler.Availability)
			products.GET("/:id/probes", runHandler.Probes)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
