package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportCache stores a computed report keyed by its raw selector
type ReportCache struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Key       string    `gorm:"size:512;uniqueIndex;not null" json:"key"`
	Params    string    `gorm:"type:jsonb;not null" json:"params"`
	Result    string    `gorm:"type:jsonb;not null" json:"result"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new cache entry
func (r *ReportCache) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReportCache model
func (ReportCache) TableName() string {
	return "report_caches"
}

// IsExpired checks whether the entry outlived ttl at instant now
func (r *ReportCache) IsExpired(ttl time.Duration, now time.Time) bool {
	return !now.Before(r.CreatedAt.Add(ttl))
}
