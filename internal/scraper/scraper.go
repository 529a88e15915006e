/**
 * @description
 * Data acquisition layer. A RateSource produces nightly rate observations
 * for one destination and calendar date at a time, so the scan orchestrator
 * can persist and report progress night by night.
 *
 * @notes
 * - Two implementations: MockSource (deterministic generator for dev and
 *   tests) and AgodaSource (headless-Chrome scrape of the award-search
 *   results page). Selected by SCRAPER_MODE.
 */

package scraper

import (
	"context"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

// RateSource fetches every hotel's quote for a single night
type RateSource interface {
	// FetchNight returns all rate observations for the destination on the
	// given stay date (YYYY-MM-DD). An empty slice is a valid answer: no
	// hotel quoted that night.
	FetchNight(ctx context.Context, dest config.Destination, stayDate string) ([]models.HotelRate, error)
}

// New builds the RateSource selected by configuration
func New(cfg *config.Config) RateSource {
	if cfg.Scraper.Mode == "live" {
		return NewAgodaSource(cfg)
	}
	return NewMockSource(0)
}
