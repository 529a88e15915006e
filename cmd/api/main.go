/**
 * @description
 * Main entry point for the Streak Optimizer API.
 * Initializes the Fiber web server, loads configuration, and sets up routes.
 *
 * @dependencies
 * - github.com/gofiber/fiber/v2: Web framework
 * - github.com/alexbesp18/aa-streak-optimizer/internal/config: Config loader
 * - github.com/alexbesp18/aa-streak-optimizer/internal/db: Database connections
 *
 * @notes
 * - Connects to Postgres and Redis on startup and runs schema migrations.
 * - Sets up basic middleware (CORS, Logger, Recover).
 */

package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/alexbesp18/aa-streak-optimizer/internal/api"
	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/db"
	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	// 2. Initialize Database Connections
	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres: %v", err)
	}

	if err := db.Migrate(pgDB); err != nil {
		logger.Fatal("Failed to run migrations: %v", err)
	}

	redisClient, err := db.ConnectRedis(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis: %v", err)
	}

	// 3. Initialize Fiber App
	app := fiber.New(fiber.Config{
		AppName:       "AAdvantage Streak Optimizer",
		CaseSensitive: true,
	})

	// 4. Global Middleware
	app.Use(recover.New())     // Panic recovery
	app.Use(fiberlogger.New()) // Request logging
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	// 5. Routes
	api.SetupRoutes(app, pgDB, redisClient, cfg)

	// 6. Start Server
	logger.Info("🚀 Starting Streak Optimizer API on port %s", cfg.Server.Port)
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
