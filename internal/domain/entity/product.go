package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Product is a sellable unit: a stocked good or a billable service
type Product struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Code          string           `gorm:"size:100;index" json:"code,omitempty"`
	Type          enum.ProductType `gorm:"size:20;not null;default:'product';index" json:"type"`
	PurchasePrice float64          `gorm:"not null;default:0" json:"purchase_price"`
	SalePrice     float64          `gorm:"not null;default:0" json:"sale_price"`
	Stock         int              `gorm:"not null;default:0" json:"stock"`
	PurchaseDate  *time.Time       `gorm:"type:date" json:"purchase_date,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsService reports whether the product is a billable service (never stock-checked)
func (p *Product) IsService() bool {
	return p.Type == enum.ProductTypeService
}
