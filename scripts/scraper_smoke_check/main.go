package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/scraper"
)

// Manual check that the headless-browser scraper can still pull rates from
// the search page. Run this after selector changes before deploying.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Println("=== Scraper Smoke Check ===")
	fmt.Printf("Search URL: %s\n", cfg.Scraper.SearchURL)
	fmt.Printf("Mode: %s\n", cfg.Scraper.Mode)
	fmt.Printf("Destinations configured: %d\n", len(cfg.Destinations))
	fmt.Println()

	if len(cfg.Destinations) == 0 {
		fmt.Println("❌ No destinations configured. Check DESTINATIONS_FILE or the defaults.")
		os.Exit(1)
	}

	dest := cfg.Destinations[0]
	stayDate := time.Now().UTC().AddDate(0, 0, 14).Format("2006-01-02")
	fmt.Printf("Fetching %s for stay date %s...\n", dest.Name, stayDate)

	source := scraper.NewAgodaSource(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rates, err := source.FetchNight(ctx, dest, stayDate)
	if err != nil {
		fmt.Printf("❌ Fetch failed: %v\n", err)
		fmt.Println("\nThis usually indicates:")
		fmt.Println("  - The search page markup changed (update the card selectors)")
		fmt.Println("  - No Chrome/Chromium binary is available on this host")
		fmt.Println("  - The site is rate limiting this IP")
		log.Fatalf("Scraper smoke check failed")
	}

	fmt.Printf("✅ Got %d hotel quotes\n\n", len(rates))
	for i, r := range rates {
		if i >= 5 {
			fmt.Printf("   ... and %d more\n", len(rates)-5)
			break
		}
		fmt.Printf("   %-30s $%.2f  %d pts  (%.2f pts/$)\n",
			r.HotelName, r.CashPrice, r.PointsRequired, r.PtsPerDollar)
	}

	fmt.Println()
	fmt.Println("=== Summary ===")
	fmt.Println("✅ Scraper selectors are working against the live search page")
}
