package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"gorm.io/gorm"
)

// DefaultExpenseCategory is used when an expense is recorded without a category
const DefaultExpenseCategory = "General"

// Expense is an operating cost consumed by reporting
type Expense struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Type        enum.ExpenseType `gorm:"size:20;not null;index" json:"type"`
	Title       string           `gorm:"size:255;not null" json:"title"`
	Amount      float64          `gorm:"not null" json:"amount"`
	Date        time.Time        `gorm:"not null;index" json:"date"`
	Description string           `gorm:"type:text" json:"description,omitempty"`
	Category    string           `gorm:"size:100;not null;default:'General'" json:"category"`
	CreatedBy   *uuid.UUID       `gorm:"type:uuid;index" json:"created_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new expense
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Category == "" {
		e.Category = DefaultExpenseCategory
	}
	return nil
}

// TableName returns the table name for the Expense model
func (Expense) TableName() string {
	return "expenses"
}
