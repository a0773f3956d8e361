// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/contact-sync/internal/importer"
	"github.com/contact-sync/internal/logging"
	"github.com/contact-sync/internal/service"
)

// Service interfaces for dependency injection and testing

// ImportServiceInterface defines the interface for import operations
type ImportServiceInterface interface {
	Status(ctx context.Context) (*importer.Status, error)
	Run(ctx context.Context, mode importer.Mode, startTime time.Time) (*importer.Result, error)
}

// AudienceServiceInterface defines the interface for audience operations
type AudienceServiceInterface interface {
	Create(ctx context.Context, name string) (*service.AudienceResult, error)
}

// BroadcastServiceInterface defines the interface for broadcast operations
type BroadcastServiceInterface interface {
	Send(ctx context.Context, req service.BroadcastRequest) (*service.BroadcastResult, error)
}

// StatsServiceInterface defines the interface for statistics operations
type StatsServiceInterface interface {
	Get(ctx context.Context) (*service.Stats, error)
	Invalidate(ctx context.Context)
}

// WebhookServiceInterface defines the interface for provider webhook handling
type WebhookServiceInterface interface {
	HandleEvent(ctx context.Context, event service.WebhookEvent) error
}

// Server represents the HTTP API server.
type Server struct {
	router           *mux.Router
	httpServer       *http.Server
	importService    ImportServiceInterface
	audienceService  AudienceServiceInterface
	broadcastService BroadcastServiceInterface
	statsService     StatsServiceInterface
	webhookService   WebhookServiceInterface
	config           *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	Auth            AuthConfig
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	importService ImportServiceInterface,
	audienceService AudienceServiceInterface,
	broadcastService BroadcastServiceInterface,
	statsService StatsServiceInterface,
	webhookService WebhookServiceInterface,
) *Server {
	s := &Server{
		router:           mux.NewRouter(),
		importService:    importService,
		audienceService:  audienceService,
		broadcastService: broadcastService,
		statsService:     statsService,
		webhookService:   webhookService,
		config:           config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	// Set up middleware (order matters!)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)

	s.setupRoutes()

	// Import runs block until the upstream sync finishes, so the write
	// timeout must outlast a full import.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check and provider webhooks skip authentication
	s.router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/webhooks/email", s.handleEmailWebhook).Methods("POST")

	// Operator endpoints require a valid bearer token
	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(s.config.Auth))

	protected.HandleFunc("/import", s.handleImportStatus).Methods("GET")
	protected.HandleFunc("/import", s.handleRunImport).Methods("POST")
	protected.HandleFunc("/audiences", s.handleCreateAudience).Methods("POST")
	protected.HandleFunc("/broadcasts", s.handleSendBroadcast).Methods("POST")
	protected.HandleFunc("/stats", s.handleGetStats).Methods("GET")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "contact-sync",
	})
}

// Router exposes the underlying router (used in tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}
