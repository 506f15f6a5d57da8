package enum

import (
	"database/sql/driver"
	"fmt"
)

// SaleStatus represents the settlement state of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
)

func (s SaleStatus) String() string {
	return string(s)
}

func (s SaleStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = SaleStatusCompleted
	case string:
		*s = SaleStatus(v)
	case []byte:
		*s = SaleStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into SaleStatus", value)
	}
	return nil
}
