package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"maatram_portal_backend/internal/auth"
	"maatram_portal_backend/internal/broadcast"
	"maatram_portal_backend/internal/common"
	"maatram_portal_backend/internal/config"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/filestorage"
	"maatram_portal_backend/internal/jobs"
	"maatram_portal_backend/internal/middleware"
	"maatram_portal_backend/internal/notification"
	platformElasticsearch "maatram_portal_backend/internal/platform/elasticsearch"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"
	"maatram_portal_backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups every feature handler the server mounts.
type Handlers struct {
	Auth         *auth.Handler
	Session      *session.Handler
	Profile      *profile.Handler
	Event        *event.Handler
	Registration *registration.Handler
	Broadcast    *broadcast.Handler
	Notification *notification.Handler
}

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	AppLogger  *zap.Logger
	EventIndex *platformElasticsearch.EventIndex
	SyncJob    *jobs.EventIndexSyncJob
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	verifier middleware.SessionVerifier,
	profiles middleware.ProfileLoader,
	storage filestorage.Storage,
	eventIndex *platformElasticsearch.EventIndex,
	syncJob *jobs.EventIndexSyncJob,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := NewRouter(cfg, logger, handlers, verifier, profiles, storage)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Session streams stay open, so writes are not bounded here.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		AppLogger:  logger,
		EventIndex: eventIndex,
		SyncJob:    syncJob,
	}, nil
}

// NewRouter builds the gin engine with global middleware and every route
// under /api/v1.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	verifier middleware.SessionVerifier,
	profiles middleware.ProfileLoader,
	storage filestorage.Storage,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.AuthorizationHeader, common.PageSessionHeader, middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Role middleware. Superadmin passes every role gate.
	mwLogger := logger.Named("AuthMiddleware")
	authMW := middleware.AuthMiddleware(verifier, mwLogger)
	optionalAuthMW := middleware.OptionalAuth(verifier, mwLogger)
	studentMW := middleware.RequireRole(profiles, mwLogger, profile.RoleStudent, profile.RoleSuperadmin)
	organizerMW := middleware.RequireRole(profiles, mwLogger, profile.RoleOrganizer, profile.RoleSuperadmin)
	anyProfileMW := middleware.RequireRole(profiles, mwLogger, profile.RoleStudent, profile.RoleOrganizer, profile.RoleAnchor, profile.RoleSuperadmin)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Maatram portal API is healthy!"})
	})

	if local, ok := storage.(*filestorage.LocalStorage); ok && strings.HasPrefix(cfg.FilePublicBaseURL, "/") {
		router.Static(cfg.FilePublicBaseURL, local.Root())
	}

	v1 := router.Group("/api/v1")
	handlers.Auth.RegisterRoutes(v1, authMW)
	handlers.Session.RegisterRoutes(v1, optionalAuthMW)
	handlers.Profile.RegisterRoutes(v1, authMW)
	handlers.Event.RegisterRoutes(v1, authMW, organizerMW)
	handlers.Registration.RegisterRoutes(v1, authMW, studentMW, organizerMW)
	handlers.Broadcast.RegisterRoutes(v1, authMW, organizerMW)
	handlers.Notification.RegisterRoutes(v1, authMW, anyProfileMW)

	return router
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.SyncJob != nil {
		if err := s.SyncJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start event index sync job", zap.Error(err))
		}
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.SyncJob != nil {
		s.SyncJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
