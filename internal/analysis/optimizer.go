/**
 * @description
 * Optimal streak builder (mode "optimal").
 * For each trip length, independently picks the best pts/$ quote for every
 * night across all hotels, so a 5-night result may span 5 different hotels.
 *
 * @notes
 * - Coverage is all-or-nothing: a duration with any night lacking a quote is
 *   omitted entirely, never zero-filled or reported partially.
 * - Ties on pts/$ keep the first observation in input order. Callers that
 *   need a different tie-break should pre-sort the input.
 */

package analysis

import (
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

// FindOptimalStreaks returns at most one StreakResult per configured
// duration, in the order the durations are configured (ascending by
// default). Returns an error only for a malformed check-in date.
func FindOptimalStreaks(obs []models.HotelRate, checkIn string, p Params) ([]StreakResult, error) {
	start, err := ParseDay(checkIn)
	if err != nil {
		return nil, err
	}

	results := make([]StreakResult, 0, len(p.OptimalDurations))

	for _, duration := range p.OptimalDurations {
		nights := make([]NightSelection, 0, duration)
		totalPoints := 0
		totalCost := 0.0

		covered := true
		for i := 0; i < duration; i++ {
			targetDate := formatDay(addDays(start, i))
			best, ok := bestForNight(obs, targetDate)
			if !ok {
				covered = false
				break
			}
			nights = append(nights, best)
			totalPoints += best.PointsRequired
			totalCost += best.CashPrice
		}
		if !covered {
			continue
		}

		avg := 0.0
		if totalCost > 0 {
			avg = models.Round2(float64(totalPoints) / totalCost)
		}
		results = append(results, StreakResult{
			Duration:        duration,
			Nights:          nights,
			TotalPoints:     totalPoints,
			TotalCost:       models.Round2(totalCost),
			AvgPtsPerDollar: avg,
		})
	}

	return results, nil
}

// bestForNight scans all observations for the target stay date and returns
// the one with the highest pts/$. A strict comparison keeps the first
// maximal observation when several tie.
func bestForNight(obs []models.HotelRate, targetDate string) (NightSelection, bool) {
	var best *models.HotelRate
	for i := range obs {
		if obs[i].StayDate != targetDate {
			continue
		}
		if best == nil || obs[i].PtsPerDollar > best.PtsPerDollar {
			best = &obs[i]
		}
	}
	if best == nil {
		return NightSelection{}, false
	}
	return NightSelection{
		Date:           targetDate,
		HotelName:      best.HotelName,
		CashPrice:      best.CashPrice,
		PointsRequired: best.PointsRequired,
		PtsPerDollar:   best.PtsPerDollar,
		Stars:          best.Stars,
	}, true
}
