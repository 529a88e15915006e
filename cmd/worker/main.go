/**
 * @description
 * Worker Service Entry Point.
 * Responsible for background tasks:
 * 1. Scheduled anomaly scans across all configured destinations.
 * 2. Pushing Telegram alerts when a scan surfaces high-value streaks.
 *
 * @dependencies
 * - internal/config
 * - internal/db
 * - internal/scraper
 * - internal/services
 * - internal/telegram
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/db"
	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
	"github.com/alexbesp18/aa-streak-optimizer/internal/scraper"
	"github.com/alexbesp18/aa-streak-optimizer/internal/services"
	"github.com/alexbesp18/aa-streak-optimizer/internal/telegram"
)

func main() {
	logger.Info("🔥 Starting Streak Optimizer Worker...")

	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Connect DBs
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Postgres connection failed: %v", err)
	}

	if err := db.Migrate(pgDB); err != nil {
		logger.Fatal("Migrations failed: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Redis connection failed: %v", err)
	}

	// 3. Initialize Services
	source := scraper.New(cfg)
	historyService := services.NewHistoryService(pgDB, cfg.Analysis)
	scanService := services.NewScanService(pgDB, redisClient, source, historyService, cfg)

	var alerts *telegram.Client
	if cfg.Telegram.Enabled {
		alerts, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, 3, time.Second)
		if err != nil {
			logger.Fatal("Telegram client failed: %v", err)
		}
		logger.Info("Telegram alerts enabled")
	}

	// 4. Context with Cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 5. Scan Loop
	go func() {
		ticker := time.NewTicker(cfg.Worker.ScanInterval)
		defer ticker.Stop()

		// Initial pass on startup
		scanAllDestinations(ctx, cfg, scanService, alerts)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scanAllDestinations(ctx, cfg, scanService, alerts)
			}
		}
	}()

	// 6. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()

	time.Sleep(1 * time.Second) // Let an in-flight scan settle
	logger.Info("Worker exited.")
}

// scanAllDestinations runs an anomaly scan for every configured destination
// and pushes alerts for whatever the detector surfaces.
func scanAllDestinations(ctx context.Context, cfg *config.Config, scans *services.ScanService, alerts *telegram.Client) {
	checkIn := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	logger.Info("🔄 Scanning %d destinations (check-in %s)...", len(cfg.Destinations), checkIn)

	for _, dest := range cfg.Destinations {
		if ctx.Err() != nil {
			return
		}

		job, err := scans.StartScan(ctx, dest, checkIn, models.ScanModeAnomaly)
		if err != nil {
			logger.Error("Failed to start scan for %s: %v", dest.Name, err)
			notifyError(alerts, err)
			continue
		}

		scans.RunScan(ctx, job, dest)

		resp, err := scans.GetScan(ctx, job.ID.String())
		if err != nil {
			logger.Error("Failed to load scan results for %s: %v", dest.Name, err)
			notifyError(alerts, err)
			continue
		}
		if resp.Status == models.JobStatusFailed {
			logger.Error("Scan for %s failed: %s", dest.Name, resp.Error)
			continue
		}

		if resp.Results == nil || len(resp.Results.Anomalies) == 0 {
			logger.Info("No anomalies for %s", dest.Name)
			continue
		}

		logger.Info("✅ %d anomalies for %s", len(resp.Results.Anomalies), dest.Name)
		if alerts != nil {
			if err := alerts.SendAnomalies(dest.Name, resp.Results.Anomalies); err != nil {
				logger.Error("Failed to send Telegram alert for %s: %v", dest.Name, err)
			}
		}
	}
}

func notifyError(alerts *telegram.Client, err error) {
	if alerts == nil {
		return
	}
	if sendErr := alerts.SendError(err); sendErr != nil {
		logger.Error("Failed to send Telegram error notification: %v", sendErr)
	}
}
