package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ewanbell/choretab/internal/database"
	"github.com/ewanbell/choretab/internal/ledger"
	"github.com/ewanbell/choretab/internal/logging"
	"github.com/ewanbell/choretab/internal/server"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	godotenv.Load()

	logger := logging.Setup(os.Getenv("CHORETAB_LOG_LEVEL"))

	port := os.Getenv("CHORETAB_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CHORETAB_DB_PATH")
	if dbPath == "" {
		dbPath = "choretab.db"
	}

	avatarDir := os.Getenv("CHORETAB_AVATAR_DIR")
	if avatarDir == "" {
		avatarDir = "avatars"
	}

	policy, err := ledger.ParsePolicy(os.Getenv("CHORETAB_LEVEL_POLICY"))
	if err != nil {
		logger.Error("invalid level policy", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, policy, avatarDir, logger)

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					logger.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Choretab running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
