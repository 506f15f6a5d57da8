// Package policy holds the role-based authorization rules. Everything here is
// pure: the table is built once at startup and passed to whoever checks it.
package policy

import (
	"strings"

	"github.com/sangkips/repairshop-api/internal/domain/enum"
)

// Segment names used by the HTTP layer
const (
	SegmentUsers      = "users"
	SegmentSales      = "sales"
	SegmentInventory  = "inventory"
	SegmentExpenses   = "expenses"
	SegmentRepairs    = "repairs"
	SegmentDeliveries = "deliveries"
	SegmentReports    = "reports"
)

// Table maps a route segment (e.g. "reports" or "repairs/history") to the roles allowed on it
type Table map[string]enum.RoleSet

// DefaultTable returns the shop's standard segment permissions
func DefaultTable() Table {
	return Table{
		SegmentUsers:      enum.NewRoleSet(enum.RoleAdmin),
		SegmentSales:      enum.NewRoleSet(enum.RoleAdmin, enum.RoleSales),
		SegmentInventory:  enum.NewRoleSet(enum.RoleAdmin, enum.RoleInventory),
		SegmentExpenses:   enum.NewRoleSet(enum.RoleAdmin, enum.RoleFinance),
		SegmentRepairs:    enum.NewRoleSet(enum.RoleAdmin, enum.RoleTechnician),
		SegmentDeliveries: enum.NewRoleSet(enum.RoleAdmin, enum.RoleDelivery),
		SegmentReports:    enum.NewRoleSet(enum.RoleAdmin),
	}
}

// IsAuthorized reports whether roles may access segment. The most specific
// mapped prefix of the segment decides; an unmapped segment is open to any
// authenticated user.
func IsAuthorized(table Table, roles enum.RoleSet, segment string) bool {
	allowed, ok := table.Match(segment)
	if !ok {
		return true
	}
	return roles.Intersects(allowed)
}

// Match finds the longest mapped prefix of segment, compared part by part
func (t Table) Match(segment string) (enum.RoleSet, bool) {
	parts := splitSegment(segment)
	for n := len(parts); n > 0; n-- {
		if allowed, ok := t[strings.Join(parts[:n], "/")]; ok {
			return allowed, true
		}
	}
	return nil, false
}

// SegmentFromPath strips the prefix and route parameters from a route template,
// so "/api/v1/repairs/:id/status" under prefix "/api/v1" becomes "repairs/status"
func SegmentFromPath(prefix, path string) string {
	path = strings.TrimPrefix(path, prefix)
	parts := splitSegment(path)
	kept := parts[:0]
	for _, p := range parts {
		if strings.HasPrefix(p, ":") || strings.HasPrefix(p, "*") {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}

func splitSegment(segment string) []string {
	raw := strings.Split(strings.Trim(segment, "/"), "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, strings.ToLower(p))
		}
	}
	return parts
}

// RepairPath tells which workflow a status change arrives through
type RepairPath int

const (
	// RepairPathPatch is the free-form status write used for day-to-day updates and corrections
	RepairPathPatch RepairPath = iota
	// RepairPathDelivery is the guarded completed -> delivered hand-over
	RepairPathDelivery
)

// CanSetRepairStatus applies the repair workflow rules: technicians move tickets
// up to completed, delivery staff hand completed tickets over, and only admins
// may write delivered through the free-form path.
func CanSetRepairStatus(roles enum.RoleSet, to enum.RepairStatus, path RepairPath) bool {
	if roles.Has(enum.RoleAdmin) {
		return true
	}

	switch path {
	case RepairPathDelivery:
		return to == enum.RepairStatusDelivered && roles.Has(enum.RoleDelivery)
	default:
		if to == enum.RepairStatusDelivered {
			return false
		}
		return roles.Has(enum.RoleTechnician)
	}
}
