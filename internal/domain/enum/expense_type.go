package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ExpenseType classifies an expense as recurring or one-off
type ExpenseType string

const (
	ExpenseTypeFixed    ExpenseType = "fixed"
	ExpenseTypeVariable ExpenseType = "variable"
)

func (t ExpenseType) String() string {
	return string(t)
}

func (t ExpenseType) IsValid() bool {
	return t == ExpenseTypeFixed || t == ExpenseTypeVariable
}

func (t *ExpenseType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed := ExpenseType(str)
	if !parsed.IsValid() {
		return fmt.Errorf("invalid expense type %q", str)
	}
	*t = parsed
	return nil
}

func (t ExpenseType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ExpenseType) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ExpenseTypeVariable
	case string:
		*t = ExpenseType(v)
	case []byte:
		*t = ExpenseType(v)
	default:
		return fmt.Errorf("cannot scan %T into ExpenseType", value)
	}
	return nil
}
