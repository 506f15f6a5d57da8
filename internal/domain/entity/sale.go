package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/repairshop-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale is a settled cart. Totals are tax-inclusive: Total = TotalNet + TotalTax.
type Sale struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SaleCode  string          `gorm:"size:100;uniqueIndex;not null" json:"sale_code"`
	Total     float64         `gorm:"not null;default:0" json:"total"`
	TotalNet  float64         `gorm:"not null;default:0" json:"total_net"`
	TotalTax  float64         `gorm:"not null;default:0" json:"total_tax"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Username  string          `gorm:"size:255" json:"username"`
	Status    enum.SaleStatus `gorm:"size:20;not null;default:'completed';index" json:"status"`
	CreatedAt time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Items []SaleItem `gorm:"foreignKey:SaleID" json:"items"`
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a sale. Title, Code and Type are copied from the
// product when the sale is composed and never follow later product edits.
type SaleItem struct {
	ID          uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	SaleID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"sale_id"`
	Position    int              `gorm:"not null;default:0" json:"-"`
	ProductID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Title       string           `gorm:"size:255" json:"title"`
	Code        string           `gorm:"size:100" json:"code,omitempty"`
	Type        enum.ProductType `gorm:"size:20;not null;index" json:"type"`
	Qty         int              `gorm:"not null" json:"qty"`
	UnitPrice   float64          `gorm:"not null" json:"unit_price"`
	LineTotal   float64          `gorm:"not null" json:"line_total"`
	ServiceInfo *ServiceInfo     `gorm:"type:jsonb" json:"service_info,omitempty"`
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}

// ServiceInfo carries the customer and device details of a service line
type ServiceInfo struct {
	CustomerName   string `json:"customer_name" validate:"notblank"`
	CustomerPhone  string `json:"customer_phone" validate:"notblank"`
	Brand          string `json:"brand" validate:"notblank"`
	Model          string `json:"model" validate:"notblank"`
	Description    string `json:"description" validate:"notblank"`
	AccessPassword string `json:"access_password,omitempty"`
}

func (s ServiceInfo) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *ServiceInfo) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return json.Unmarshal([]byte(v), s)
	case []byte:
		return json.Unmarshal(v, s)
	default:
		return fmt.Errorf("cannot scan %T into ServiceInfo", value)
	}
}
