// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chideraz/country-currency-api/api"
	"github.com/chideraz/country-currency-api/config"
	"github.com/chideraz/country-currency-api/internal/logger"
	"github.com/chideraz/country-currency-api/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting Country & Currency Insights server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Initialize Country Store Connection
	db, err := storage.Connect(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize country store: %v", err)
	}
	defer func() {
		customLog.Println("Draining country store connection pool...")
		if err := db.Close(); err != nil {
			customLog.Printf("Error closing country store: %v", err)
		}
	}()

	// 3. Setup Router (passing dependencies)
	router := api.SetupRouter(db, cfg)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	// 4. Start Server
	go func() {
		customLog.Printf("Server listening on port %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			customLog.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 5. Wait for a termination signal, then drain in-flight requests
	// before the deferred pool close runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	customLog.Println("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		customLog.Printf("Error during server shutdown: %v", err)
	}
}
