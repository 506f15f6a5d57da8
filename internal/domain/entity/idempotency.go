package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey remembers the response of a sale submission so a retried
// checkout replays it instead of selling twice
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_user_key;size:255;not null"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_user_key"`
	Endpoint     string    `gorm:"size:255;not null"`
	RequestHash  string    `gorm:"size:64"` // SHA256 of the request body
	ResponseCode int       `gorm:"not null"` // 0 while the request is in flight
	ResponseBody string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Matches reports whether a retried request carries the same body
func (i *IdempotencyKey) Matches(requestHash string) bool {
	return i.RequestHash == "" || i.RequestHash == requestHash
}

// InFlight reports whether the request holding the key has not answered yet
func (i *IdempotencyKey) InFlight() bool {
	return i.ResponseCode == 0
}
