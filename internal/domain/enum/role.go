package enum

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Role is a fixed staff role
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSales      Role = "sales"
	RoleInventory  Role = "inventory"
	RoleFinance    Role = "finance"
	RoleTechnician Role = "technician"
	RoleDelivery   Role = "delivery"
)

// Roles lists every known role
var Roles = []Role{RoleAdmin, RoleSales, RoleInventory, RoleFinance, RoleTechnician, RoleDelivery}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole normalizes case and whitespace before validating
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// RoleSet is the canonical, sorted and de-duplicated set of roles held by a user.
// It decodes from either a single role string or an array of role strings, so
// legacy records carrying one "role" value normalize into the same shape.
type RoleSet []Role

// NewRoleSet builds a RoleSet, dropping duplicates
func NewRoleSet(roles ...Role) RoleSet {
	seen := make(map[Role]struct{}, len(roles))
	set := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

// ParseRoleSet validates raw role names; blank names are skipped
func ParseRoleSet(names ...string) (RoleSet, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		r, err := ParseRole(name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return NewRoleSet(roles...), nil
}

// Has reports whether the set contains r
func (s RoleSet) Has(r Role) bool {
	for _, have := range s {
		if have == r {
			return true
		}
	}
	return false
}

// Intersects reports whether the two sets share at least one role
func (s RoleSet) Intersects(other RoleSet) bool {
	for _, r := range other {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the role names
func (s RoleSet) Strings() []string {
	out := make([]string, len(s))
	for i, r := range s {
		out[i] = string(r)
	}
	return out
}

func (s RoleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}

func (s *RoleSet) UnmarshalJSON(data []byte) error {
	parsed, err := decodeRoleSet(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s RoleSet) Value() (driver.Value, error) {
	data, err := json.Marshal(s.Strings())
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *RoleSet) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*s = RoleSet{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into RoleSet", value)
	}

	parsed, err := decodeRoleSet(data)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// decodeRoleSet accepts `["admin","sales"]`, `"admin"` or a bare `admin`
func decodeRoleSet(data []byte) (RoleSet, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return RoleSet{}, nil
	}

	switch trimmed[0] {
	case '[':
		var names []string
		if err := json.Unmarshal(trimmed, &names); err != nil {
			return nil, err
		}
		return ParseRoleSet(names...)
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return nil, err
		}
		return ParseRoleSet(name)
	default:
		return ParseRoleSet(string(trimmed))
	}
}
