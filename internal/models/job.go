/**
 * @description
 * Scrape job database model.
 * Maps to the 'scrape_jobs' table in PostgreSQL.
 * Tracks the lifecycle of one destination scan so the API can answer
 * polling requests while the scan runs in the background.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JobStatus defines the state of a scrape job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusPartial   JobStatus = "partial" // some nights failed to scrape
	JobStatusFailed    JobStatus = "failed"
)

// ScanMode selects which analysis runs against the scraped rates
type ScanMode string

const (
	ScanModeOptimal ScanMode = "optimal"
	ScanModeAnomaly ScanMode = "anomaly"
)

// ScrapeJob represents one requested destination scan
type ScrapeJob struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Destination  string     `gorm:"column:destination" json:"destination"`
	CheckInDate  string     `gorm:"column:check_in_date;type:varchar(10)" json:"check_in_date"` // YYYY-MM-DD
	Mode         ScanMode   `gorm:"column:mode;type:varchar(10);default:'optimal'" json:"mode"`
	Status       JobStatus  `gorm:"column:status;type:varchar(12);default:'pending';index:idx_scrape_jobs_status" json:"status"`
	Progress     int        `gorm:"column:progress;default:0" json:"progress"` // 0-100
	HotelsFound  int        `gorm:"column:hotels_found;default:0" json:"hotels_found"`
	ErrorMessage string     `gorm:"column:error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	CompletedAt  *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

// TableName overrides the table name used by ScrapeJob to `scrape_jobs`
func (ScrapeJob) TableName() string {
	return "scrape_jobs"
}

// BeforeCreate ensures UUID is generated if not present
func (j *ScrapeJob) BeforeCreate(tx *gorm.DB) (err error) {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return
}

// IsTerminal reports whether the job has finished (successfully or not)
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusPartial || s == JobStatusFailed
}
