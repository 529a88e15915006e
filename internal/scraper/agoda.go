/**
 * @description
 * Live rate scraper.
 * Drives a headless Chrome via chromedp against the award-search results
 * page, one (destination, night) query at a time, and extracts each hotel
 * card's cash total and points requirement.
 *
 * @dependencies
 * - github.com/chromedp/chromedp
 *
 * @notes
 * - One browser context per FetchNight keeps sessions clean at the cost of a
 *   slower cold start; the rate limiter dominates wall time anyway.
 * - Extraction runs as in-page JS because the result list is rendered
 *   client-side and its class names churn; structural selectors hold up
 *   better than styled ones.
 */

package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

// AgodaSource scrapes real nightly rates from the award-search site
type AgodaSource struct {
	searchURL   string
	maxRetries  int
	rateLimiter *rateLimiter
}

// NewAgodaSource creates a live scraper from configuration
func NewAgodaSource(cfg *config.Config) *AgodaSource {
	return &AgodaSource{
		searchURL:   cfg.Scraper.SearchURL,
		maxRetries:  cfg.Scraper.MaxRetries,
		rateLimiter: newRateLimiter(cfg.Scraper.RateLimitMs),
	}
}

// hotelCard is the raw shape the in-page extraction script returns
type hotelCard struct {
	Name   string `json:"name"`
	Price  string `json:"price"`
	Points string `json:"points"`
	Stars  string `json:"stars"`
}

// newBrowserContext creates a fresh chromedp context (one browser, one tab)
func (s *AgodaSource) newBrowserContext(parent context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	cancel := func() {
		cancelCtx()
		cancelAlloc()
	}
	return ctx, cancel
}

// FetchNight loads the results page for a one-night stay and parses the cards
func (s *AgodaSource) FetchNight(ctx context.Context, dest config.Destination, stayDate string) ([]models.HotelRate, error) {
	checkIn, err := time.Parse("2006-01-02", stayDate)
	if err != nil {
		return nil, fmt.Errorf("invalid stay date %q: %w", stayDate, err)
	}
	checkOut := checkIn.AddDate(0, 0, 1)

	pageURL := s.buildSearchURL(dest, stayDate, checkOut.Format("2006-01-02"))

	var cards []hotelCard
	err = retryWithBackoff(s.maxRetries, func() error {
		s.rateLimiter.Wait()
		return s.loadAndExtract(ctx, pageURL, &cards)
	})
	if err != nil {
		return nil, fmt.Errorf("scrape of %s on %s failed: %w", dest.Name, stayDate, err)
	}

	scrapedAt := time.Now().UTC()
	rates := make([]models.HotelRate, 0, len(cards))
	for _, card := range cards {
		rate, ok := s.parseCard(card, dest, stayDate, scrapedAt)
		if !ok {
			continue
		}
		rates = append(rates, rate)
	}

	logger.Info("Scraped %d rates for %s on %s", len(rates), dest.Name, stayDate)
	return rates, nil
}

func (s *AgodaSource) buildSearchURL(dest config.Destination, checkIn, checkOut string) string {
	q := url.Values{}
	q.Set("placeId", dest.PlaceID)
	q.Set("cityName", dest.Name)
	q.Set("state", dest.State)
	q.Set("checkIn", checkIn)
	q.Set("checkOut", checkOut)
	q.Set("adults", "2")
	return s.searchURL + "?" + q.Encode()
}

func (s *AgodaSource) loadAndExtract(ctx context.Context, pageURL string, cards *[]hotelCard) error {
	browserCtx, cancel := s.newBrowserContext(ctx)
	defer cancel()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, 90*time.Second)
	defer cancelTimeout()

	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.Sleep(5*time.Second), // give JS time to render the result list
		chromedp.Evaluate(`
			(function() {
				var results = [];
				document.querySelectorAll('[data-testid="hotel-card"], article').forEach(function(card) {
					var name = card.querySelector('h2, h3, [data-testid="hotel-name"]');
					var price = card.querySelector('[data-testid="total-price"], [class*="price"]');
					var points = card.querySelector('[data-testid="miles"], [class*="miles"], [class*="points"]');
					var stars = card.querySelector('[data-testid="star-rating"], [aria-label*="star"]');
					if (!name || !price || !points) return;
					results.push({
						name: name.innerText.trim(),
						price: price.innerText.trim(),
						points: points.innerText.trim(),
						stars: stars ? (stars.getAttribute('aria-label') || stars.innerText).trim() : ''
					});
				});
				return results;
			})()
		`, cards),
	)
	if err != nil {
		return fmt.Errorf("page load failed: %w", err)
	}
	if len(*cards) == 0 {
		return fmt.Errorf("no hotel cards found on results page")
	}
	return nil
}

// parseCard normalizes one raw card into a rate observation. Cards with
// unparseable prices or points are dropped rather than stored as zeros.
func (s *AgodaSource) parseCard(card hotelCard, dest config.Destination, stayDate string, scrapedAt time.Time) (models.HotelRate, bool) {
	if card.Name == "" {
		return models.HotelRate{}, false
	}

	cash, err := parseMoney(card.Price)
	if err != nil {
		logger.Warn("Skipping %q: bad price %q", card.Name, card.Price)
		return models.HotelRate{}, false
	}
	points, err := parseCount(card.Points)
	if err != nil {
		logger.Warn("Skipping %q: bad points %q", card.Name, card.Points)
		return models.HotelRate{}, false
	}

	rate := models.HotelRate{
		Destination:    dest.Name,
		HotelName:      card.Name,
		StayDate:       stayDate,
		CashPrice:      models.Round2(cash),
		PointsRequired: points,
		Stars:          parseStars(card.Stars),
		ScrapedAt:      scrapedAt,
	}
	rate.ComputeRatio()
	return rate, true
}

// parseMoney pulls a dollar amount out of text like "$1,234.56 total"
func parseMoney(text string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", text)
	}
	return strconv.ParseFloat(cleaned, 64)
}

// parseCount pulls an integer out of text like "12,500 miles"
func parseCount(text string) (int, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text)
	if cleaned == "" {
		return 0, fmt.Errorf("no digits in %q", text)
	}
	return strconv.Atoi(cleaned)
}

// parseStars reads "4.5 stars" style labels; unknown ratings become 0
func parseStars(text string) float64 {
	fields := strings.Fields(text)
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil && v >= 0 && v <= 5 {
			return v
		}
	}
	return 0
}
