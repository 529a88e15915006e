/**
 * @description
 * Anomaly detector (mode "anomaly").
 * Finds same-hotel streaks of 4-7 nights whose aggregate pts/$ is at least
 * Threshold times that hotel's historical day-of-week average.
 *
 * @notes
 * - The baseline lookup uses the CHECK-IN day of week for the entire streak,
 *   not the per-night day of week. A streak crossing a weekend boundary is
 *   still judged against the check-in weekday. Changing this is a product
 *   decision, not a bug fix.
 * - The threshold comparison uses the unrounded aggregate ratio; rounding is
 *   applied only to the reported fields.
 */

package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

// FindAnomalies checks every (hotel, duration) pair with full contiguous
// coverage against the supplied baselines and returns qualifying streaks
// sorted by pct_above descending. Ties preserve discovery order: shorter
// durations first, then hotel input order. An empty result means "no
// anomalies found", not a failure.
func FindAnomalies(obs []models.HotelRate, checkIn string, averages []HistoricalAverage, p Params) ([]AnomalyResult, error) {
	start, err := ParseDay(checkIn)
	if err != nil {
		return nil, err
	}

	baselines := make(map[groupKey]float64, len(averages))
	for _, avg := range averages {
		baselines[groupKey{hotel: avg.HotelName, dow: avg.DayOfWeek}] = avg.AvgPtsPerDollar
	}
	checkInDow := dayOfWeek(start)

	hotels, byHotel := groupByHotel(obs)

	destination := ""
	if len(obs) > 0 {
		destination = obs[0].Destination
	}

	var anomalies []AnomalyResult
	for _, duration := range p.AnomalyDurations {
		for _, hotel := range hotels {
			nights, ok := buildHotelStreak(byHotel[hotel], start, duration)
			if !ok {
				continue
			}

			totalPoints := 0
			totalCost := 0.0
			for _, n := range nights {
				totalPoints += n.PointsRequired
				totalCost += n.CashPrice
			}
			aggregate := 0.0
			if totalCost > 0 {
				aggregate = float64(totalPoints) / totalCost
			}

			historicalAvg, found := baselines[groupKey{hotel: hotel, dow: checkInDow}]
			if !found || historicalAvg == 0 {
				// No baseline means no way to call anything anomalous.
				continue
			}
			if aggregate < historicalAvg*p.Threshold {
				continue
			}

			pctAbove := int(math.Round((aggregate - historicalAvg) / historicalAvg * 100))
			anomalies = append(anomalies, AnomalyResult{
				HotelName:     hotel,
				Destination:   destination,
				Duration:      duration,
				CheckIn:       checkIn,
				CheckOut:      formatDay(addDays(start, duration)),
				Nights:        nights,
				TotalPoints:   totalPoints,
				TotalCost:     models.Round2(totalCost),
				PtsPerDollar:  models.Round2(aggregate),
				HistoricalAvg: models.Round2(historicalAvg),
				PctAbove:      pctAbove,
			})
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].PctAbove > anomalies[j].PctAbove
	})
	return anomalies, nil
}

// groupByHotel buckets observations by hotel name, preserving the order in
// which hotels first appear so discovery order stays deterministic.
func groupByHotel(obs []models.HotelRate) ([]string, map[string][]models.HotelRate) {
	byHotel := make(map[string][]models.HotelRate)
	var hotels []string
	for _, o := range obs {
		if _, seen := byHotel[o.HotelName]; !seen {
			hotels = append(hotels, o.HotelName)
		}
		byHotel[o.HotelName] = append(byHotel[o.HotelName], o)
	}
	return hotels, byHotel
}

// buildHotelStreak assembles one night per offset from a single hotel's
// quotes. The first quote matching each date wins when the hotel was scraped
// more than once for the same night. Any missing night voids the streak.
func buildHotelStreak(hotelObs []models.HotelRate, start time.Time, duration int) ([]NightSelection, bool) {
	nights := make([]NightSelection, 0, duration)
	for i := 0; i < duration; i++ {
		targetDate := formatDay(addDays(start, i))
		found := false
		for j := range hotelObs {
			if hotelObs[j].StayDate != targetDate {
				continue
			}
			nights = append(nights, NightSelection{
				Date:           targetDate,
				HotelName:      hotelObs[j].HotelName,
				CashPrice:      hotelObs[j].CashPrice,
				PointsRequired: hotelObs[j].PointsRequired,
				PtsPerDollar:   hotelObs[j].PtsPerDollar,
				Stars:          hotelObs[j].Stars,
			})
			found = true
			break
		}
		if !found {
			return nil, false
		}
	}
	return nights, true
}
