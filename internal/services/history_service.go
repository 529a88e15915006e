/**
 * @description
 * Service layer for historical rate baselines.
 * Pulls the look-back window of observations for a destination out of
 * Postgres and feeds them to the pure aggregation in internal/analysis.
 *
 * @dependencies
 * - gorm.io/gorm
 * - backend internal/analysis
 *
 * @notes
 * - Baselines are rebuilt fresh on every call, never incrementally updated.
 *   At tens of hotels and one row per scrape event the window query is small.
 */

package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/alexbesp18/aa-streak-optimizer/internal/analysis"
	"github.com/alexbesp18/aa-streak-optimizer/internal/models"
)

// HistoryService computes historical pts/$ baselines from stored rates
type HistoryService struct {
	DB     *gorm.DB
	Params analysis.Params
}

func NewHistoryService(db *gorm.DB, params analysis.Params) *HistoryService {
	return &HistoryService{DB: db, Params: params}
}

// Averages returns per-hotel, per-day-of-week baselines for a destination
// over the configured window. An optional hotel name narrows the result.
func (s *HistoryService) Averages(ctx context.Context, destination, hotelName string) ([]analysis.HistoricalAverage, error) {
	rates, err := s.windowRates(ctx, destination, hotelName)
	if err != nil {
		return nil, err
	}
	return analysis.ComputeHistoricalAverages(rates, time.Now().UTC(), s.Params.WindowDays), nil
}

// windowRates fetches observations scraped within the look-back window
func (s *HistoryService) windowRates(ctx context.Context, destination, hotelName string) ([]models.HotelRate, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.Params.WindowDays)

	query := s.DB.WithContext(ctx).
		Where("destination = ?", destination).
		Where("scraped_at >= ?", cutoff)
	if hotelName != "" {
		query = query.Where("hotel_name = ?", hotelName)
	}

	var rates []models.HotelRate
	if err := query.Order("id ASC").Find(&rates).Error; err != nil {
		return nil, fmt.Errorf("failed to load rate history for %s: %w", destination, err)
	}
	return rates, nil
}
