package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"

	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/services"
)

func TestStreamProgressFiltersByJobID(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	defer redisClient.Close()

	hub := services.NewJobStreamHub(redisClient, services.JobProgressChannel)
	handler := NewScanHandler(nil, hub, &config.Config{})

	app := fiber.New()
	app.Get("/api/v1/scans/:id/stream", handler.StreamProgress)

	srv := httptest.NewServer(adaptor.FiberApp(app))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// The target event is terminal so the stream handler returns once it
	// has been delivered.
	otherJob := `{"job_id":"other-job","status":"running","progress":10}`
	targetJob := `{"job_id":"target-job","status":"completed","progress":100}`
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = redisClient.Publish(context.Background(), services.JobProgressChannel, otherJob).Err()
				_ = redisClient.Publish(context.Background(), services.JobProgressChannel, targetJob).Err()
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/scans/target-job/stream", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to call SSE endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	reader := bufio.NewReader(resp.Body)

	timeout := time.After(2 * time.Second)
	for {
		select {
		case <-timeout:
			t.Fatal("timed out waiting for SSE data")
		default:
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("failed to read SSE line: %v", err)
			}
			if strings.HasPrefix(line, "data:") {
				if strings.Contains(line, `"other-job"`) {
					t.Fatalf("received event for a different job: %s", line)
				}
				if !strings.Contains(line, `"target-job"`) {
					t.Fatalf("unexpected SSE payload: %s", line)
				}
				return
			}
		}
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Destinations: []config.Destination{
			{Name: "Austin", State: "TX", PlaceID: "AGODA_CITY|4542"},
		},
	}
}

func TestStartScanRejectsUnknownDestination(t *testing.T) {
	handler := NewScanHandler(&services.ScanService{}, nil, testConfig())

	app := fiber.New()
	app.Post("/api/v1/scans", handler.StartScan)

	body := strings.NewReader(`{"destination":"Atlantis","check_in":"2024-06-01","mode":"optimal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown destination, got %d", resp.StatusCode)
	}
}

func TestStartScanRejectsMalformedCheckIn(t *testing.T) {
	handler := NewScanHandler(&services.ScanService{}, nil, testConfig())

	app := fiber.New()
	app.Post("/api/v1/scans", handler.StartScan)

	body := strings.NewReader(`{"destination":"Austin","check_in":"06/01/2024","mode":"optimal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for malformed check-in, got %d", resp.StatusCode)
	}
}

func TestStartScanRejectsUnknownMode(t *testing.T) {
	handler := NewScanHandler(&services.ScanService{}, nil, testConfig())

	app := fiber.New()
	app.Post("/api/v1/scans", handler.StartScan)

	body := strings.NewReader(`{"destination":"Austin","check_in":"2024-06-01","mode":"chaotic"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scans", body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown mode, got %d", resp.StatusCode)
	}
}
