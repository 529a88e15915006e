package analysis

import (
	"testing"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

func rate(hotel, stayDate string, cash float64, points int) models.HotelRate {
	r := models.HotelRate{
		Destination:    "Austin",
		HotelName:      hotel,
		StayDate:       stayDate,
		CashPrice:      cash,
		PointsRequired: points,
		Stars:          4,
		ScrapedAt:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	r.ComputeRatio()
	return r
}

func TestFindOptimalStreaksPicksBestPerNight(t *testing.T) {
	obs := []models.HotelRate{
		rate("HotelA", "2024-01-01", 100, 1000),
		rate("HotelB", "2024-01-01", 100, 1500),
	}

	streaks, err := FindOptimalStreaks(obs, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("FindOptimalStreaks returned error: %v", err)
	}

	if len(streaks) != 1 {
		t.Fatalf("expected exactly one streak (only night 1 is covered), got %d", len(streaks))
	}
	s := streaks[0]
	if s.Duration != 1 {
		t.Errorf("expected duration 1, got %d", s.Duration)
	}
	if s.Nights[0].HotelName != "HotelB" {
		t.Errorf("expected HotelB (15.0 pts/$) to win, got %s", s.Nights[0].HotelName)
	}
	if s.AvgPtsPerDollar != 15.0 {
		t.Errorf("expected avg 15.0 pts/$, got %v", s.AvgPtsPerDollar)
	}
}

func TestFindOptimalStreaksAllOrNothingCoverage(t *testing.T) {
	// Quotes exist for the first two nights only; durations 3-10 must be
	// dropped entirely, not padded or partially reported.
	obs := []models.HotelRate{
		rate("HotelA", "2024-01-01", 120, 1200),
		rate("HotelA", "2024-01-02", 130, 1500),
		rate("HotelA", "2024-01-04", 110, 1400), // gap on the 3rd
	}

	streaks, err := FindOptimalStreaks(obs, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("FindOptimalStreaks returned error: %v", err)
	}

	if len(streaks) != 2 {
		t.Fatalf("expected durations {1,2}, got %d results", len(streaks))
	}
	for i, want := range []int{1, 2} {
		if streaks[i].Duration != want {
			t.Errorf("result %d: expected duration %d, got %d", i, want, streaks[i].Duration)
		}
		if len(streaks[i].Nights) != want {
			t.Errorf("duration %d: expected %d nights, got %d", want, want, len(streaks[i].Nights))
		}
	}
}

func TestFindOptimalStreaksMaximalityAndTotals(t *testing.T) {
	obs := []models.HotelRate{
		rate("Cheap", "2024-01-01", 200, 1000),
		rate("Best", "2024-01-01", 100, 2000),
		rate("Mid", "2024-01-01", 100, 1500),
		rate("Best2", "2024-01-02", 150, 3000),
		rate("Worse2", "2024-01-02", 150, 1000),
	}

	streaks, err := FindOptimalStreaks(obs, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("FindOptimalStreaks returned error: %v", err)
	}
	if len(streaks) != 2 {
		t.Fatalf("expected 2 streaks, got %d", len(streaks))
	}

	// Maximality: no same-date observation may beat a selected night.
	for _, s := range streaks {
		totalPoints := 0
		totalCost := 0.0
		for _, n := range s.Nights {
			for _, o := range obs {
				if o.StayDate == n.Date && o.PtsPerDollar > n.PtsPerDollar {
					t.Errorf("night %s selected %.2f pts/$ but %s offers %.2f", n.Date, n.PtsPerDollar, o.HotelName, o.PtsPerDollar)
				}
			}
			totalPoints += n.PointsRequired
			totalCost += n.CashPrice
		}
		if s.TotalPoints != totalPoints {
			t.Errorf("duration %d: total_points %d != sum %d", s.Duration, s.TotalPoints, totalPoints)
		}
		wantAvg := models.Round2(float64(totalPoints) / totalCost)
		if s.AvgPtsPerDollar != wantAvg {
			t.Errorf("duration %d: avg %v != round(points/cost) %v", s.Duration, s.AvgPtsPerDollar, wantAvg)
		}
	}

	two := streaks[1]
	if two.Nights[0].HotelName != "Best" || two.Nights[1].HotelName != "Best2" {
		t.Errorf("unexpected selections: %s, %s", two.Nights[0].HotelName, two.Nights[1].HotelName)
	}
}

func TestFindOptimalStreaksTieKeepsFirstInInputOrder(t *testing.T) {
	obs := []models.HotelRate{
		rate("First", "2024-01-01", 100, 1500),
		rate("Second", "2024-01-01", 200, 3000), // identical 15.0 pts/$
	}

	streaks, err := FindOptimalStreaks(obs, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("FindOptimalStreaks returned error: %v", err)
	}
	if len(streaks) != 1 {
		t.Fatalf("expected 1 streak, got %d", len(streaks))
	}
	if got := streaks[0].Nights[0].HotelName; got != "First" {
		t.Errorf("tie should keep first-encountered observation, got %s", got)
	}
}

func TestFindOptimalStreaksEmptyInput(t *testing.T) {
	streaks, err := FindOptimalStreaks(nil, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("empty input must not error: %v", err)
	}
	if len(streaks) != 0 {
		t.Errorf("expected empty result, got %d streaks", len(streaks))
	}
}

func TestFindOptimalStreaksInvalidCheckIn(t *testing.T) {
	if _, err := FindOptimalStreaks(nil, "01/02/2024", DefaultParams()); err == nil {
		t.Error("expected error for malformed check-in date, got nil")
	}
}

func TestFindOptimalStreaksZeroCostGuard(t *testing.T) {
	obs := []models.HotelRate{rate("Free", "2024-01-01", 0, 500)}

	streaks, err := FindOptimalStreaks(obs, "2024-01-01", DefaultParams())
	if err != nil {
		t.Fatalf("FindOptimalStreaks returned error: %v", err)
	}
	if len(streaks) != 1 {
		t.Fatalf("expected 1 streak, got %d", len(streaks))
	}
	if streaks[0].AvgPtsPerDollar != 0 {
		t.Errorf("zero total cost must yield avg 0, got %v", streaks[0].AvgPtsPerDollar)
	}
}
