package scraper

import (
	"context"
	"testing"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
)

func TestMockSourceFetchNight(t *testing.T) {
	src := NewMockSource(42)
	dest := config.Destination{Name: "Austin", State: "TX", PlaceID: "AGODA_CITY|4542"}

	rates, err := src.FetchNight(context.Background(), dest, "2024-06-01")
	if err != nil {
		t.Fatalf("FetchNight failed: %v", err)
	}
	if len(rates) != len(mockHotels) {
		t.Fatalf("expected %d rates, got %d", len(mockHotels), len(rates))
	}

	for _, r := range rates {
		if r.Destination != "Austin" {
			t.Errorf("expected destination Austin, got %s", r.Destination)
		}
		if r.StayDate != "2024-06-01" {
			t.Errorf("expected stay date 2024-06-01, got %s", r.StayDate)
		}
		if r.CashPrice < 80 || r.CashPrice > 280 {
			t.Errorf("cash price %v outside generated band [80, 280]", r.CashPrice)
		}
		if r.PointsRequired <= 0 {
			t.Errorf("points must be positive, got %d", r.PointsRequired)
		}
		if r.Stars < 3 || r.Stars > 5 {
			t.Errorf("stars %v outside [3, 5]", r.Stars)
		}
		if r.PtsPerDollar <= 0 {
			t.Errorf("pts/$ must be derived, got %v", r.PtsPerDollar)
		}
	}
}

func TestMockSourceDeterministicWithSeed(t *testing.T) {
	dest := config.Destination{Name: "Austin"}

	a, _ := NewMockSource(7).FetchNight(context.Background(), dest, "2024-06-01")
	b, _ := NewMockSource(7).FetchNight(context.Background(), dest, "2024-06-01")

	for i := range a {
		if a[i].CashPrice != b[i].CashPrice || a[i].PointsRequired != b[i].PointsRequired {
			t.Fatalf("seeded generator must be reproducible: %+v vs %+v", a[i], b[i])
		}
	}
}

func TestMockSourceRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewMockSource(1).FetchNight(ctx, config.Destination{Name: "Austin"}, "2024-06-01"); err == nil {
		t.Error("expected error for cancelled context, got nil")
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"$123.45", 123.45, false},
		{"$1,234.56 total", 1234.56, false},
		{"189", 189, false},
		{"no digits", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMoney(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseMoney(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseMoney(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	got, err := parseCount("12,500 miles")
	if err != nil {
		t.Fatalf("parseCount failed: %v", err)
	}
	if got != 12500 {
		t.Errorf("parseCount = %d, want 12500", got)
	}
	if _, err := parseCount("none"); err == nil {
		t.Error("expected error for digit-free input")
	}
}

func TestParseStars(t *testing.T) {
	if got := parseStars("4.5 stars"); got != 4.5 {
		t.Errorf("parseStars = %v, want 4.5", got)
	}
	if got := parseStars(""); got != 0 {
		t.Errorf("parseStars on empty = %v, want 0", got)
	}
}

func TestNewSelectsSourceByMode(t *testing.T) {
	cfg := &config.Config{}
	cfg.Scraper.Mode = "mock"
	if _, ok := New(cfg).(*MockSource); !ok {
		t.Error("expected MockSource for mock mode")
	}

	cfg.Scraper.Mode = "live"
	cfg.Scraper.MaxRetries = 1
	if _, ok := New(cfg).(*AgodaSource); !ok {
		t.Error("expected AgodaSource for live mode")
	}
}
