package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ProductType distinguishes stocked goods from billable services
type ProductType string

const (
	ProductTypeProduct ProductType = "product"
	ProductTypeService ProductType = "service"
)

func (t ProductType) String() string {
	return string(t)
}

// IsValid reports whether t is a known product type
func (t ProductType) IsValid() bool {
	return t == ProductTypeProduct || t == ProductTypeService
}

// ParseProductType converts a raw string into a ProductType
func ParseProductType(s string) (ProductType, error) {
	t := ProductType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid product type %q", s)
	}
	return t, nil
}

func (t *ProductType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseProductType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t ProductType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ProductType) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ProductTypeProduct
	case string:
		*t = ProductType(v)
	case []byte:
		*t = ProductType(v)
	default:
		return fmt.Errorf("cannot scan %T into ProductType", value)
	}
	return nil
}
