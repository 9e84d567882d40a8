// Command main is the entry point for the Dogpark backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dogpark/internal/config"
	"dogpark/internal/observability"
	"dogpark/internal/server"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// @title Dogpark API
// @version 1.0
// @description RPC API for the dog owners' social feed: posts, comments, likes, tags and profiles.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name dogpark_session

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "dogpark-api",
		ServiceVersion: version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	flushErrors, err := observability.InitErrorReporting(cfg.SentryDSN, cfg.Env, version)
	if err != nil {
		log.Fatalf("Failed to initialize error reporting: %v", err)
	}
	defer flushErrors()

	// The database connects lazily on the first request that needs it.
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	if err := serve(srv, stop, shutdownTracing); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serve runs srv until a signal arrives on stop, then shuts it down and
// flushes the tracer. It returns only after both have finished.
func serve(srv lifecycle, stop <-chan os.Signal, shutdownTracing func(context.Context) error) error {
	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-stop

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		return err
	}
	<-idle
	return nil
}
