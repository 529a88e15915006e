/**
 * @description
 * Hotel rate observation database model.
 * Maps to the 'hotel_rates' table in PostgreSQL.
 * One row per hotel/stay-date/scrape event; repeated scrapes of the same
 * hotel and date produce additional rows rather than overwriting history.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"math"
	"time"
)

// HotelRate represents a single nightly rate quote captured by a scrape
type HotelRate struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Destination    string    `gorm:"column:destination;index:idx_hotel_rates_dest_date;uniqueIndex:uq_hotel_rates_observation" json:"destination"`
	HotelName      string    `gorm:"column:hotel_name;uniqueIndex:uq_hotel_rates_observation" json:"hotel_name"`
	StayDate       string    `gorm:"column:stay_date;type:varchar(10);index:idx_hotel_rates_dest_date;uniqueIndex:uq_hotel_rates_observation" json:"stay_date"` // YYYY-MM-DD, no timezone
	CashPrice      float64   `gorm:"column:cash_price;type:decimal(10,2)" json:"cash_price"`
	PointsRequired int       `gorm:"column:points_required" json:"points_required"`
	PtsPerDollar   float64   `gorm:"column:pts_per_dollar;type:decimal(10,2)" json:"pts_per_dollar"`
	Stars          float64   `gorm:"column:stars;type:decimal(3,1)" json:"stars"`
	ScrapedAt      time.Time `gorm:"column:scraped_at;uniqueIndex:uq_hotel_rates_observation" json:"scraped_at"`
}

// TableName overrides the table name used by HotelRate to `hotel_rates`
func (HotelRate) TableName() string {
	return "hotel_rates"
}

// ComputeRatio derives pts_per_dollar from points and cash price.
// A zero cash price yields 0 rather than a division fault.
func (r *HotelRate) ComputeRatio() {
	if r.CashPrice <= 0 {
		r.PtsPerDollar = 0
		return
	}
	r.PtsPerDollar = Round2(float64(r.PointsRequired) / r.CashPrice)
}

// Round2 rounds to two decimal places. Used at computation boundaries for
// currency amounts and pts/$ ratios; intermediate sums stay unrounded.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
