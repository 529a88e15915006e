/**
 * @description
 * Mock rate generator.
 * Stands in for the live scraper in development and tests: eight branded
 * hotels with plausible cash prices and points requirements per night.
 *
 * @notes
 * - Cash 80-280 dollars, points = cash x (8-28), stars 3-5. These bands keep
 *   the pts/$ ratios in the range the analysis thresholds were tuned on.
 */

package scraper

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

var mockHotels = []string{
	"Hilton Downtown",
	"Marriott City Center",
	"Hyatt Regency",
	"Holiday Inn Express",
	"Hampton Inn",
	"Courtyard by Marriott",
	"Best Western Plus",
	"La Quinta Inn",
}

// MockSource generates synthetic rate observations
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand

	// now is swappable so tests can pin scraped_at
	now func() time.Time
}

// NewMockSource creates a generator. A zero seed seeds from the clock; any
// other seed makes the output reproducible.
func NewMockSource(seed int64) *MockSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockSource{
		rng: rand.New(rand.NewSource(seed)),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the scraped_at clock so callers can backdate observations
func (s *MockSource) WithNow(now func() time.Time) *MockSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// FetchNight returns one synthetic quote per mock hotel for the stay date
func (s *MockSource) FetchNight(ctx context.Context, dest config.Destination, stayDate string) ([]models.HotelRate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	scrapedAt := s.now()
	rates := make([]models.HotelRate, 0, len(mockHotels))
	for _, hotel := range mockHotels {
		cash := models.Round2(80 + s.rng.Float64()*200)
		points := int(cash*(8+s.rng.Float64()*20) + 0.5)
		stars := float64(3 + s.rng.Intn(3))

		r := models.HotelRate{
			Destination:    dest.Name,
			HotelName:      hotel,
			StayDate:       stayDate,
			CashPrice:      cash,
			PointsRequired: points,
			Stars:          stars,
			ScrapedAt:      scrapedAt,
		}
		r.ComputeRatio()
		rates = append(rates, r)
	}
	return rates, nil
}
