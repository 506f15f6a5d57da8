package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Repair is the work order spawned by one service line of a sale.
// Title, Code and SaleCode are snapshots taken when the ticket is opened.
type Repair struct {
	ID             uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SaleID         uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_id"`
	SaleItemID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"sale_item_id"`
	SaleCode       string            `gorm:"size:100;index" json:"sale_code"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"product_id"`
	Title          string            `gorm:"size:255" json:"title"`
	Code           string            `gorm:"size:100" json:"code,omitempty"`
	Customer       Customer          `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Brand          string            `gorm:"size:100" json:"brand"`
	Model          string            `gorm:"size:100" json:"model"`
	Description    string            `gorm:"type:text" json:"description"`
	AccessPassword string            `gorm:"size:255" json:"access_password,omitempty"`
	Revision       string            `gorm:"type:text" json:"revision,omitempty"`
	Status         enum.RepairStatus `gorm:"size:20;not null;default:'received';index" json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `gorm:"index" json:"updated_at"`
}

// Customer is the contact attached to a repair ticket
type Customer struct {
	Name  string `gorm:"size:255" json:"name"`
	Phone string `gorm:"size:50" json:"phone"`
}

// BeforeCreate generates a UUID before creating a new repair
func (r *Repair) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Repair model
func (Repair) TableName() string {
	return "repairs"
}
