package main

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm/clause"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/db"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
	"github.com/alexbesp18/aa-streak-optimizer/internal/scraper"
)

// Backfills mock rate history so the anomaly detector has baselines to
// compare against. One synthetic scrape per destination per day across the
// configured look-back window.
func main() {
	log.Println("🚀 Seeding mock rate history...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgDB, err := db.ConnectPostgres(cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	if err := db.Migrate(pgDB); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	source := scraper.NewMockSource(42)
	ctx := context.Background()
	now := time.Now().UTC()

	total := 0
	for _, dest := range cfg.Destinations {
		for back := cfg.Analysis.WindowDays; back >= 1; back-- {
			scrapedAt := now.AddDate(0, 0, -back)
			source.WithNow(func() time.Time { return scrapedAt })

			for night := 1; night <= cfg.Scraper.NightsPerScan; night++ {
				stayDate := scrapedAt.AddDate(0, 0, night).Format("2006-01-02")

				rates, err := source.FetchNight(ctx, dest, stayDate)
				if err != nil {
					log.Fatalf("mock fetch failed: %v", err)
				}

				err = pgDB.Clauses(clause.OnConflict{
					Columns: []clause.Column{
						{Name: "destination"}, {Name: "hotel_name"}, {Name: "stay_date"}, {Name: "scraped_at"},
					},
					DoNothing: true,
				}).CreateInBatches(rates, 100).Error
				if err != nil {
					log.Fatalf("failed to insert rates: %v", err)
				}
				total += len(rates)
			}
		}
		log.Printf("✅ Seeded %s", dest.Name)
	}

	var count int64
	if err := pgDB.Model(&models.HotelRate{}).Count(&count).Error; err == nil {
		log.Printf("✅ Seed complete: %d observations written, %d rows in hotel_rates", total, count)
	} else {
		log.Printf("⚠️ Seed complete: %d observations written (count query failed: %v)", total, err)
	}
}
