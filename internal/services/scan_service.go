/**
 * @description
 * Service layer for destination scans.
 * Owns the scrape-job lifecycle: creates the job row, drives the RateSource
 * night by night, upserts observations into Postgres, publishes progress to
 * Redis, and reassembles analysis results when a finished job is read.
 *
 * @dependencies
 * - backend internal/scraper
 * - backend internal/analysis
 * - gorm.io/gorm
 * - github.com/redis/go-redis/v9
 *
 * @notes
 * - Computed results are never persisted or cached. A completed job's
 *   results are recomputed from hotel_rates on every read; only the job
 *   status snapshot goes into Redis.
 */

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgconn"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alexbesp18/aa-streak-optimizer/internal/analysis"
	"github.com/alexbesp18/aa-streak-optimizer/internal/config"
	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
	"github.com/alexbesp18/aa-streak-optimizer/internal/scraper"
)

const (
	// JobProgressChannel carries JobUpdate payloads for the SSE endpoint
	JobProgressChannel = "scan:progress"

	jobStatusKeyPrefix = "scan:job:"
	jobStatusTTL       = time.Hour
)

// ScanService orchestrates scrape jobs end to end
type ScanService struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Source  scraper.RateSource
	History *HistoryService
	Params  analysis.Params
	Nights  int
}

func NewScanService(db *gorm.DB, rdb *redis.Client, source scraper.RateSource, history *HistoryService, cfg *config.Config) *ScanService {
	return &ScanService{
		DB:      db,
		Redis:   rdb,
		Source:  source,
		History: history,
		Params:  cfg.Analysis,
		Nights:  cfg.Scraper.NightsPerScan,
	}
}

// ScanResults is the mode-tagged payload served to clients
type ScanResults struct {
	Mode      models.ScanMode          `json:"mode"`
	Streaks   []analysis.StreakResult  `json:"streaks,omitempty"`
	Anomalies []analysis.AnomalyResult `json:"anomalies,omitempty"`
}

// ScanResponse is the polling answer for one job
type ScanResponse struct {
	JobID    string           `json:"job_id"`
	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Results  *ScanResults     `json:"results,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// JobUpdate is the progress event published to Redis for SSE fan-out
type JobUpdate struct {
	JobID    string           `json:"job_id"`
	Status   models.JobStatus `json:"status"`
	Progress int              `json:"progress"`
	Error    string           `json:"error,omitempty"`
}

// StartScan validates the request and creates a running job row. The actual
// scan runs in the background via RunScan; callers get the job back
// immediately for polling.
func (s *ScanService) StartScan(ctx context.Context, dest config.Destination, checkIn string, mode models.ScanMode) (*models.ScrapeJob, error) {
	if _, err := analysis.ParseDay(checkIn); err != nil {
		return nil, err
	}
	if mode != models.ScanModeOptimal && mode != models.ScanModeAnomaly {
		return nil, fmt.Errorf("unknown scan mode %q", mode)
	}

	job := &models.ScrapeJob{
		Destination: dest.Name,
		CheckInDate: checkIn,
		Mode:        mode,
		Status:      models.JobStatusRunning,
	}
	if err := s.DB.WithContext(ctx).Create(job).Error; err != nil {
		return nil, fmt.Errorf("failed to create scrape job: %w", err)
	}

	s.publishUpdate(ctx, job)
	return job, nil
}

// RunScan executes the scrape for a job created by StartScan. Designed to be
// called from a goroutine; failures land in the job row, never in a panic.
func (s *ScanService) RunScan(ctx context.Context, job *models.ScrapeJob, dest config.Destination) {
	start, err := analysis.ParseDay(job.CheckInDate)
	if err != nil {
		// StartScan already validated; only a corrupted row gets here.
		s.finishJob(ctx, job, models.JobStatusFailed, 0, err.Error())
		return
	}

	totalRates := 0
	failedNights := 0
	for i := 0; i < s.Nights; i++ {
		stayDate := start.AddDate(0, 0, i).Format("2006-01-02")

		rates, err := s.Source.FetchNight(ctx, dest, stayDate)
		if err != nil {
			logger.Error("Scan %s: night %s failed: %v", job.ID, stayDate, err)
			failedNights++
		} else if len(rates) > 0 {
			if err := s.upsertRates(ctx, rates); err != nil {
				logger.Error("Scan %s: failed to store %s rates: %v", job.ID, stayDate, err)
				failedNights++
			} else {
				totalRates += len(rates)
			}
		}

		job.Progress = (i + 1) * 100 / s.Nights
		job.Status = models.JobStatusRunning
		s.publishUpdate(ctx, job)
	}

	switch {
	case failedNights == s.Nights:
		s.finishJob(ctx, job, models.JobStatusFailed, totalRates, "every night failed to scrape")
	case failedNights > 0:
		s.finishJob(ctx, job, models.JobStatusPartial, totalRates, fmt.Sprintf("%d of %d nights failed to scrape", failedNights, s.Nights))
	default:
		s.finishJob(ctx, job, models.JobStatusCompleted, totalRates, "")
	}
}

// GetScan answers a polling request. Terminal jobs recompute their results
// from stored rates; in-flight jobs answer from the status snapshot.
func (s *ScanService) GetScan(ctx context.Context, jobID string) (*ScanResponse, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &ScanResponse{
		JobID:    job.ID.String(),
		Status:   job.Status,
		Progress: job.Progress,
	}

	switch job.Status {
	case models.JobStatusPending, models.JobStatusRunning:
		return resp, nil
	case models.JobStatusFailed:
		resp.Error = job.ErrorMessage
		return resp, nil
	}

	rates, err := s.scanWindowRates(ctx, job)
	if err != nil {
		return nil, err
	}
	results, err := s.computeResults(ctx, job, rates)
	if err != nil {
		return nil, err
	}
	resp.Progress = 100
	resp.Results = results
	if job.Status == models.JobStatusPartial {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// computeResults runs the analysis mode the job asked for
func (s *ScanService) computeResults(ctx context.Context, job *models.ScrapeJob, rates []models.HotelRate) (*ScanResults, error) {
	results := &ScanResults{Mode: job.Mode}

	switch job.Mode {
	case models.ScanModeAnomaly:
		averages, err := s.History.Averages(ctx, job.Destination, "")
		if err != nil {
			return nil, err
		}
		anomalies, err := analysis.FindAnomalies(rates, job.CheckInDate, averages, s.Params)
		if err != nil {
			return nil, err
		}
		results.Anomalies = anomalies
	default:
		streaks, err := analysis.FindOptimalStreaks(rates, job.CheckInDate, s.Params)
		if err != nil {
			return nil, err
		}
		results.Streaks = streaks
	}
	return results, nil
}

// scanWindowRates loads the rates covering the job's scan window, oldest
// observation first so analysis tie-breaks track scrape order.
func (s *ScanService) scanWindowRates(ctx context.Context, job *models.ScrapeJob) ([]models.HotelRate, error) {
	start, err := analysis.ParseDay(job.CheckInDate)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, s.Nights).Format("2006-01-02")

	var rates []models.HotelRate
	err = s.DB.WithContext(ctx).
		Where("destination = ?", job.Destination).
		Where("stay_date >= ? AND stay_date < ?", job.CheckInDate, end).
		Order("stay_date ASC, id ASC").
		Find(&rates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load rates for job %s: %w", job.ID, err)
	}
	return rates, nil
}

// upsertRates stores a night's observations. Conflicts on the observation
// identity (destination, hotel, stay date, scrape time) refresh the quote
// fields; serialization failures retry with jittered backoff.
func (s *ScanService) upsertRates(ctx context.Context, rates []models.HotelRate) error {
	const maxRetries = 5
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = s.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "destination"}, {Name: "hotel_name"}, {Name: "stay_date"}, {Name: "scraped_at"},
			},
			DoUpdates: clause.AssignmentColumns([]string{
				"cash_price", "points_required", "pts_per_dollar", "stars",
			}),
		}).CreateInBatches(rates, 100).Error
		if err == nil {
			return nil
		}

		if pgErr, ok := err.(*pgconn.PgError); ok && (pgErr.Code == "40P01" || pgErr.Code == "40001") {
			backoff := time.Duration(attempt*100+rand.Intn(100)) * time.Millisecond
			time.Sleep(backoff)
			continue
		}
		break
	}
	return fmt.Errorf("failed to upsert rates: %w", err)
}

// finishJob records the terminal status and broadcasts it
func (s *ScanService) finishJob(ctx context.Context, job *models.ScrapeJob, status models.JobStatus, hotelsFound int, errMsg string) {
	now := time.Now().UTC()
	job.Status = status
	job.Progress = 100
	if status == models.JobStatusFailed {
		job.Progress = 0
	}
	job.HotelsFound = hotelsFound
	job.ErrorMessage = errMsg
	job.CompletedAt = &now

	if err := s.DB.WithContext(ctx).Save(job).Error; err != nil {
		logger.Error("Scan %s: failed to persist final status: %v", job.ID, err)
	}
	s.publishUpdate(ctx, job)
}

// publishUpdate caches the job snapshot and emits a progress event
func (s *ScanService) publishUpdate(ctx context.Context, job *models.ScrapeJob) {
	update := JobUpdate{
		JobID:    job.ID.String(),
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.ErrorMessage,
	}
	payload, err := json.Marshal(update)
	if err != nil {
		logger.Error("Scan %s: failed to marshal progress: %v", job.ID, err)
		return
	}

	if err := s.Redis.Set(ctx, jobStatusKeyPrefix+update.JobID, payload, jobStatusTTL).Err(); err != nil {
		logger.Error("Scan %s: failed to cache status: %v", job.ID, err)
	}
	if err := s.Redis.Publish(ctx, JobProgressChannel, payload).Err(); err != nil {
		logger.Error("Scan %s: failed to publish progress: %v", job.ID, err)
	}
}

// loadJob prefers the Redis snapshot for in-flight jobs, falling back to
// Postgres for everything else.
func (s *ScanService) loadJob(ctx context.Context, jobID string) (*models.ScrapeJob, error) {
	var job models.ScrapeJob
	if err := s.DB.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	// A snapshot written by the scan goroutine may be ahead of the row.
	if !job.Status.IsTerminal() {
		if raw, err := s.Redis.Get(ctx, jobStatusKeyPrefix+jobID).Result(); err == nil {
			var update JobUpdate
			if err := json.Unmarshal([]byte(raw), &update); err == nil {
				job.Status = update.Status
				job.Progress = update.Progress
				if update.Error != "" {
					job.ErrorMessage = update.Error
				}
			}
		}
	}
	return &job, nil
}

// ErrJobNotFound marks polling requests for unknown job ids
var ErrJobNotFound = fmt.Errorf("scrape job not found")
