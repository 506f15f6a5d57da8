package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RepairStatus is the lifecycle position of a repair ticket.
// Normal flow: received -> in_progress -> completed -> delivered.
type RepairStatus string

const (
	RepairStatusReceived   RepairStatus = "received"
	RepairStatusInProgress RepairStatus = "in_progress"
	RepairStatusCompleted  RepairStatus = "completed"
	RepairStatusDelivered  RepairStatus = "delivered"
)

// RepairStatuses lists every status in lifecycle order
var RepairStatuses = []RepairStatus{
	RepairStatusReceived,
	RepairStatusInProgress,
	RepairStatusCompleted,
	RepairStatusDelivered,
}

func (s RepairStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the four lifecycle statuses
func (s RepairStatus) IsValid() bool {
	for _, known := range RepairStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseRepairStatus converts a raw string into a RepairStatus
func ParseRepairStatus(s string) (RepairStatus, error) {
	status := RepairStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid repair status %q", s)
	}
	return status, nil
}

func (s *RepairStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseRepairStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s RepairStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *RepairStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = RepairStatusReceived
	case string:
		*s = RepairStatus(v)
	case []byte:
		*s = RepairStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into RepairStatus", value)
	}
	return nil
}
