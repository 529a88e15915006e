/**
 * @description
 * Result types and policy parameters for the rate analysis core.
 * Mirrors the JSON shapes served by the scan API.
 *
 * @notes
 * - All values here are plain value objects: created, filled, returned and
 *   discarded within a single analysis call. Nothing is persisted.
 */

package analysis

// Params holds the fixed policy constants of the analysis core. They are
// exposed as overridable values so the calling layer can tune them from
// configuration without touching the algorithms.
type Params struct {
	// WindowDays is the look-back window for historical averages.
	WindowDays int
	// Threshold is the multiple of the historical average an aggregate
	// pts/$ must reach (inclusive) to count as an anomaly.
	Threshold float64
	// AnomalyDurations are the same-hotel streak lengths checked for anomalies.
	AnomalyDurations []int
	// OptimalDurations are the trip lengths the streak optimizer covers.
	OptimalDurations []int
}

// DefaultParams returns the production policy: 90-day window, 50%-above
// threshold, 4-7 night anomaly streaks, 1-10 night optimal streaks.
func DefaultParams() Params {
	return Params{
		WindowDays:       90,
		Threshold:        1.5,
		AnomalyDurations: []int{4, 5, 6, 7},
		OptimalDurations: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	}
}

// NightSelection is one chosen rate quote projected onto a night of a streak
type NightSelection struct {
	Date           string  `json:"date"` // YYYY-MM-DD
	HotelName      string  `json:"hotel_name"`
	CashPrice      float64 `json:"cash_price"`
	PointsRequired int     `json:"points_required"`
	PtsPerDollar   float64 `json:"pts_per_dollar"`
	Stars          float64 `json:"stars"`
}

// StreakResult is the optimizer's answer for one trip length: the best
// available rate each night, hotels free to vary night to night.
type StreakResult struct {
	Duration        int              `json:"duration"` // nights
	Nights          []NightSelection `json:"nights"`
	TotalPoints     int              `json:"total_points"`
	TotalCost       float64          `json:"total_cost"`
	AvgPtsPerDollar float64          `json:"avg_pts_per_dollar"`
}

// AnomalyResult is a same-hotel streak whose aggregate pts/$ clears the
// anomaly threshold against that hotel's historical baseline.
type AnomalyResult struct {
	HotelName     string           `json:"hotel_name"`
	Destination   string           `json:"destination"`
	Duration      int              `json:"duration"` // nights
	CheckIn       string           `json:"check_in"`
	CheckOut      string           `json:"check_out"`
	Nights        []NightSelection `json:"nights"`
	TotalPoints   int              `json:"total_points"`
	TotalCost     float64          `json:"total_cost"`
	PtsPerDollar  float64          `json:"pts_per_dollar"`
	HistoricalAvg float64          `json:"historical_avg"`
	PctAbove      int              `json:"pct_above"` // whole-number percent
}

// HistoricalAverage is the mean pts/$ a hotel has historically quoted for a
// given day of week (0-6, Sunday = 0), over the configured look-back window.
type HistoricalAverage struct {
	HotelName        string  `json:"hotel_name"`
	DayOfWeek        int     `json:"day_of_week"`
	AvgPtsPerDollar  float64 `json:"avg_pts_per_dollar"`
	ObservationCount int     `json:"observation_count"`
}
