// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"

	"socialpulse/internal/adapter/events"
	"socialpulse/internal/config"
	"socialpulse/internal/server/handlers"
)

// Service is what the HTTP API needs from the pulse service
type Service interface {
	handlers.PulseService
	handlers.ProfileService
}

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server. natsConn may be nil, in which case
// the pulse event stream is unavailable.
func NewServer(
	cfg config.ServerConfig,
	service Service,
	natsConn *nats.Conn,
	eventsTopic string,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	pulseHandler := handlers.NewPulseHandler(service)
	profileHandler := handlers.NewProfileHandler(service)

	var subscriber handlers.Subscriber
	if natsConn != nil {
		subscriber = natsConn
	}

	requestTimeout := cfg.WriteTimeout
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		// WebSocket stream of pulse events, outside the request timeout
		r.Get("/ws/pulse", handlers.PulseWebSocketHandler(subscriber, events.Subjects(eventsTopic), service))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			// Pulse API
			r.Route("/pulse", func(r chi.Router) {
				r.Get("/", pulseHandler.GetPulse)
				r.Post("/refresh", pulseHandler.RefreshPulse)
				r.Get("/trends", pulseHandler.GetTrends)
				r.Get("/volume", pulseHandler.GetVolume)
			})

			// Profile API
			r.Get("/profile", profileHandler.GetProfile)
			r.Put("/profile", profileHandler.UpdateProfile)
			r.Get("/accounts", profileHandler.GetAccounts)
			r.Put("/accounts", profileHandler.UpdateAccounts)
		})
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     router,
		ReadTimeout: cfg.ReadTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the server's router
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
