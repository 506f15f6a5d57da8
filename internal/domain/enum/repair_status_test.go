package enum

import (
	"encoding/json"
	"testing"
)

func TestParseRepairStatus(t *testing.T) {
	for _, s := range []string{"received", "in_progress", "completed", "delivered"} {
		if _, err := ParseRepairStatus(s); err != nil {
			t.Fatalf("expected %q to parse: %v", s, err)
		}
	}
	if _, err := ParseRepairStatus("cancelled"); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}

func TestRepairStatusUnmarshalRejectsUnknown(t *testing.T) {
	var s RepairStatus
	if err := json.Unmarshal([]byte(`"done"`), &s); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if err := json.Unmarshal([]byte(`"in_progress"`), &s); err != nil || s != RepairStatusInProgress {
		t.Fatalf("expected in_progress, got %q (%v)", s, err)
	}
}
