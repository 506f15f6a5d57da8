package enum

import (
	"encoding/json"
	"testing"
)

func TestRoleSetUnmarshalAcceptsStringOrArray(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "array", input: `["sales","admin","sales"]`, want: []string{"admin", "sales"}},
		{name: "single string", input: `"technician"`, want: []string{"technician"}},
		{name: "mixed case", input: `" Admin "`, want: []string{"admin"}},
		{name: "null", input: `null`, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var set RoleSet
			if err := json.Unmarshal([]byte(tt.input), &set); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			got := set.Strings()
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestRoleSetRejectsUnknownRole(t *testing.T) {
	var set RoleSet
	if err := json.Unmarshal([]byte(`["admin","cashier"]`), &set); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestRoleSetScanLegacyColumnShapes(t *testing.T) {
	for _, raw := range []interface{}{`["delivery"]`, []byte(`"delivery"`), "delivery"} {
		var set RoleSet
		if err := set.Scan(raw); err != nil {
			t.Fatalf("scan %v failed: %v", raw, err)
		}
		if !set.Has(RoleDelivery) || len(set) != 1 {
			t.Fatalf("expected [delivery] from %v, got %v", raw, set)
		}
	}
}

func TestRoleSetValueRoundTrip(t *testing.T) {
	set := NewRoleSet(RoleFinance, RoleAdmin)
	v, err := set.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if v != `["admin","finance"]` {
		t.Fatalf("unexpected stored value %v", v)
	}

	var back RoleSet
	if err := back.Scan(v); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !back.Has(RoleAdmin) || !back.Has(RoleFinance) {
		t.Fatalf("expected admin and finance, got %v", back)
	}
}

func TestRoleSetIntersects(t *testing.T) {
	user := NewRoleSet(RoleSales, RoleTechnician)
	if !user.Intersects(NewRoleSet(RoleAdmin, RoleTechnician)) {
		t.Fatalf("expected intersection on technician")
	}
	if user.Intersects(NewRoleSet(RoleAdmin)) {
		t.Fatalf("expected no intersection with admin-only set")
	}
	if user.Intersects(RoleSet{}) {
		t.Fatalf("empty set never intersects")
	}
}
