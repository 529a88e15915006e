/**
 * @description
 * API Route definitions.
 * Sets up the router groups and assigns handlers.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2
 * - backend internal/api/handlers
 * - backend internal/services
 * - backend internal/scraper
 */

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/alexbesp18/aa-streak-optimizer/internal/api/handlers"
	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/scraper"
	"github.com/alexbesp18/aa-streak-optimizer/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {
	// 1. Initialize Services
	source := scraper.New(cfg)
	historyService := services.NewHistoryService(db, cfg.Analysis)
	scanService := services.NewScanService(db, rdb, source, historyService, cfg)
	hub := services.NewJobStreamHub(rdb, services.JobProgressChannel)

	// 2. Initialize Handlers
	scanHandler := handlers.NewScanHandler(scanService, hub, cfg)
	historyHandler := handlers.NewHistoryHandler(historyService)

	// 3. Define Routes
	api := app.Group("/api")
	v1 := api.Group("/v1")

	v1.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	scans := v1.Group("/scans")
	scans.Post("/", scanHandler.StartScan)
	scans.Get("/:id", scanHandler.GetScan)
	scans.Get("/:id/stream", scanHandler.StreamProgress)

	v1.Get("/history", historyHandler.GetAverages)
}
