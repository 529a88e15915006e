/**
 * @description
 * Configuration loader for the streak optimizer backend.
 * Reads environment variables (with .env support), applies defaults, and
 * loads the destination catalog from an optional YAML file.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - gopkg.in/yaml.v3: For the destinations catalog file
 *
 * @notes
 * - Fails fast if DATABASE_URL is missing.
 * - Analysis policy constants (window, threshold, duration ranges) are
 *   overridable here but default to the documented production policy.
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexbesp18/aa-streak-optimizer/internal/analysis"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	DB           DBConfig
	Redis        RedisConfig
	Scraper      ScraperConfig
	Analysis     analysis.Params
	Worker       WorkerConfig
	Telegram     TelegramConfig
	Destinations []Destination
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development" or "production"
}

// DBConfig holds PostgreSQL settings
type DBConfig struct {
	URL string
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	URL string
}

// ScraperConfig holds data-acquisition settings
type ScraperConfig struct {
	Mode          string // "mock" or "live"
	SearchURL     string // award-search page, live mode only
	NightsPerScan int    // calendar days fetched per scan
	RateLimitMs   int    // minimum delay between page loads
	MaxRetries    int    // per-night retry budget
}

// WorkerConfig holds background scan scheduling settings
type WorkerConfig struct {
	ScanInterval time.Duration
}

// TelegramConfig holds anomaly alert settings
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// Destination is one scannable market
type Destination struct {
	Name    string `yaml:"name"`
	State   string `yaml:"state"`
	PlaceID string `yaml:"place_id"`
}

// destinationsFile is the YAML shape of the destinations catalog
type destinationsFile struct {
	Destinations []Destination `yaml:"destinations"`
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (prod might inject env vars directly)
	_ = godotenv.Load()

	params := analysis.DefaultParams()
	params.WindowDays = getEnvAsInt("HISTORY_WINDOW_DAYS", params.WindowDays)
	params.Threshold = getEnvAsFloat("ANOMALY_THRESHOLD", params.Threshold)

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Scraper: ScraperConfig{
			Mode:          getEnv("SCRAPER_MODE", "mock"),
			SearchURL:     getEnv("SCRAPER_SEARCH_URL", "https://www.aadvantagehotels.com/search"),
			NightsPerScan: getEnvAsInt("SCRAPER_NIGHTS_PER_SCAN", 10),
			RateLimitMs:   getEnvAsInt("SCRAPER_RATE_LIMIT_MS", 1500),
			MaxRetries:    getEnvAsInt("SCRAPER_MAX_RETRIES", 3),
		},
		Analysis: params,
		Worker: WorkerConfig{
			ScanInterval: time.Duration(getEnvAsInt("WORKER_SCAN_INTERVAL_MINUTES", 360)) * time.Minute,
		},
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			Enabled:  getEnvAsBool("TELEGRAM_ENABLED", false),
		},
	}

	destinations, err := loadDestinations(getEnv("DESTINATIONS_FILE", ""))
	if err != nil {
		return nil, err
	}
	cfg.Destinations = destinations

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DestinationByName looks up a configured destination. Matching is by exact
// city name, the same identity the scraped rate rows carry.
func (c *Config) DestinationByName(name string) (Destination, bool) {
	for _, d := range c.Destinations {
		if d.Name == name {
			return d, true
		}
	}
	return Destination{}, false
}

// defaultDestinations is the compiled-in catalog used when no YAML file is
// configured. Place IDs follow the Agoda identifier scheme.
func defaultDestinations() []Destination {
	return []Destination{
		{Name: "Austin", State: "TX", PlaceID: "AGODA_CITY|4542"},
		{Name: "Dallas", State: "TX", PlaceID: "AGODA_CITY|8683"},
		{Name: "Houston", State: "TX", PlaceID: "AGODA_CITY|1178"},
		{Name: "Las Vegas", State: "NV", PlaceID: "AGODA_CITY|17072"},
		{Name: "New York", State: "NY", PlaceID: "AGODA_CITY|318"},
		{Name: "Boston", State: "MA", PlaceID: "AGODA_CITY|9254"},
		{Name: "San Francisco", State: "CA", PlaceID: "AGODA_CITY|13801"},
		{Name: "Los Angeles", State: "CA", PlaceID: "AGODA_CITY|12772"},
	}
}

// loadDestinations reads the YAML catalog, falling back to the compiled-in
// defaults when no file is configured.
func loadDestinations(path string) ([]Destination, error) {
	if path == "" {
		return defaultDestinations(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read destinations file %s: %w", path, err)
	}

	var file destinationsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse destinations file %s: %w", path, err)
	}
	if len(file.Destinations) == 0 {
		return nil, fmt.Errorf("destinations file %s lists no destinations", path)
	}
	for _, d := range file.Destinations {
		if d.Name == "" {
			return nil, fmt.Errorf("destinations file %s contains an entry without a name", path)
		}
	}
	return file.Destinations, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Scraper.Mode != "mock" && cfg.Scraper.Mode != "live" {
		return fmt.Errorf("SCRAPER_MODE must be \"mock\" or \"live\", got %q", cfg.Scraper.Mode)
	}
	if cfg.Analysis.WindowDays <= 0 {
		return fmt.Errorf("HISTORY_WINDOW_DAYS must be positive")
	}
	if cfg.Analysis.Threshold <= 1 {
		return fmt.Errorf("ANOMALY_THRESHOLD must be above 1")
	}
	if cfg.Telegram.Enabled && (cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when TELEGRAM_ENABLED is true")
	}
	return nil
}

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as float
func getEnvAsFloat(key string, fallback float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as bool
func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}
