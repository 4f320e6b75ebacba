package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mpetrenko/carshare/internal/backup"
	"github.com/mpetrenko/carshare/internal/database"
	"github.com/mpetrenko/carshare/internal/logging"
	"github.com/mpetrenko/carshare/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CARSHARE_LOG_LEVEL"), os.Getenv("CARSHARE_LOG_FORMAT"))

	port := os.Getenv("CARSHARE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CARSHARE_DB_PATH")
	if dbPath == "" {
		dbPath = "carshare.db"
	}

	botToken := os.Getenv("CARSHARE_BOT_TOKEN")
	if botToken == "" {
		logger.Error("CARSHARE_BOT_TOKEN is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, botToken, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backupMgr := backup.NewManager(backupConfig(dbPath), db, logger.With("component", "backup"))
	backupMgr.Start(ctx)
	defer backupMgr.Stop()

	// Hourly sweep of stale rate-limiter entries.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
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
		logger.Info("carshare listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func backupConfig(dbPath string) backup.Config {
	interval, _ := strconv.Atoi(os.Getenv("CARSHARE_BACKUP_INTERVAL_HOURS"))
	retention, _ := strconv.Atoi(os.Getenv("CARSHARE_BACKUP_RETENTION_DAYS"))

	return backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("CARSHARE_S3_ENDPOINT"),
			Bucket:    os.Getenv("CARSHARE_S3_BUCKET"),
			Region:    os.Getenv("CARSHARE_S3_REGION"),
			AccessKey: os.Getenv("CARSHARE_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("CARSHARE_S3_SECRET_KEY"),
		},
		DBPath:        dbPath,
		Passphrase:    os.Getenv("CARSHARE_BACKUP_PASSPHRASE"),
		Interval:      time.Duration(interval) * time.Hour,
		RetentionDays: retention,
	}
}
