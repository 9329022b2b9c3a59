// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"socialpulse/internal/adapter/events"
	"socialpulse/internal/adapter/storage"
	"socialpulse/internal/bootstrap"
	"socialpulse/internal/config"
	"socialpulse/internal/domain/profile"
	"socialpulse/internal/server"
	"socialpulse/internal/service/pulse"
)

func main() {
	// Load .env when present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env: %v", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize profile storage
	var store profile.Store
	switch cfg.Profile.Source {
	case config.ProfileSourcePostgres:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		profileStore := storage.NewProfileStore(db, cfg.Profile.ID)
		if err := profileStore.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to create profile schema: %v", err)
		}
		store = profileStore
	default:
		store = bootstrap.NewFileStore(cfg.Profile)
	}

	// Initialize event publishing
	var (
		natsConn  *nats.Conn
		publisher pulse.Publisher
	)
	if cfg.NATS.Enabled {
		natsConn, err = initNATS(cfg.NATS)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer natsConn.Close()

		publisher = events.NewPublisher(natsConn, cfg.Pulse.EventsTopic)
	}

	// Initialize the content provider
	provider, err := bootstrap.NewProvider(cfg.Upstream)
	if err != nil {
		log.Fatalf("Failed to initialize content provider: %v", err)
	}

	// Initialize the pulse service
	pulseService := bootstrap.NewService(cfg.Pulse, provider, store, publisher)
	if err := pulseService.Load(ctx); err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}

	// Poll in the background so event stream clients get fresh pulses
	var scheduler *pulse.Scheduler
	if cfg.Pulse.PollInterval > 0 {
		scheduler = pulse.NewScheduler(pulseService, cfg.Pulse.PollInterval)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("Failed to start pulse scheduler: %v", err)
		}
	}

	// Initialize HTTP server
	httpServer := server.NewServer(cfg.Server, pulseService, natsConn, cfg.Pulse.EventsTopic)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Printf("Pulse scheduler shutdown error: %v", err)
		}
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			log.Printf("NATS drain error: %v", err)
		}
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("socialpulse"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
