/**
 * @description
 * Historical rate aggregation.
 * Builds per-hotel, per-day-of-week average pts/$ baselines from raw
 * observations, bounded by a scrape-time look-back window.
 *
 * @notes
 * - The mean is taken over the already-rounded per-observation ratios, not
 *   recomputed from summed points and cost. That keeps the baseline
 *   consistent with what each scrape actually recorded.
 * - Day of week comes from the stay date (the night the room is occupied),
 *   not from when the scrape happened.
 */

package analysis

import (
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

type groupKey struct {
	hotel string
	dow   int
}

// ComputeHistoricalAverages groups observations scraped within windowDays of
// refTime by (hotel, stay-date day of week) and returns the mean pts/$ and
// observation count per group. Groups with no qualifying observations do not
// appear; empty input yields an empty result. Output order is deterministic:
// groups appear in first-encountered input order.
func ComputeHistoricalAverages(obs []models.HotelRate, refTime time.Time, windowDays int) []HistoricalAverage {
	cutoff := refTime.AddDate(0, 0, -windowDays)

	type acc struct {
		sum   float64
		count int
	}
	sums := make(map[groupKey]*acc)
	var order []groupKey

	for _, o := range obs {
		if o.ScrapedAt.Before(cutoff) {
			continue
		}
		day, err := ParseDay(o.StayDate)
		if err != nil {
			// Malformed stay dates cannot be bucketed by weekday; a bad row
			// must not poison the whole baseline.
			continue
		}
		key := groupKey{hotel: o.HotelName, dow: dayOfWeek(day)}
		a, ok := sums[key]
		if !ok {
			a = &acc{}
			sums[key] = a
			order = append(order, key)
		}
		a.sum += o.PtsPerDollar
		a.count++
	}

	averages := make([]HistoricalAverage, 0, len(order))
	for _, key := range order {
		a := sums[key]
		averages = append(averages, HistoricalAverage{
			HotelName:        key.hotel,
			DayOfWeek:        key.dow,
			AvgPtsPerDollar:  models.Round2(a.sum / float64(a.count)),
			ObservationCount: a.count,
		})
	}
	return averages
}
