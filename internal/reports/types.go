package reports

import (
	"fmt"
	"slices"
	"strings"
)

// Type names a report.
type Type string

const (
	TypeDashboard     Type = "dashboard-summary"
	TypeAnalytics     Type = "analytics"
	TypeFinancial     Type = "financial"
	TypeAdminOverview Type = "admin-overview"
	TypeAds           Type = "ad-performance"
	TypeWallet        Type = "wallet"
)

// Types lists every report type.
var Types = []Type{TypeDashboard, TypeAnalytics, TypeFinancial, TypeAdminOverview, TypeAds, TypeWallet}

// ParseType validates a report type name.
func ParseType(raw string) (Type, error) {
	t := Type(strings.TrimSpace(strings.ToLower(raw)))
	if !slices.Contains(Types, t) {
		return "", fmt.Errorf("%w: unknown report type %q", ErrInvalidRequest, raw)
	}
	return t, nil
}

// Role is the caller's role as asserted by the auth provider.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleAgent   Role = "agent"
)

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	r := Role(strings.TrimSpace(strings.ToLower(raw)))
	switch r {
	case RoleAdmin, RoleManager, RoleAgent:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidRequest, raw)
}

var access = map[Type][]Role{
	TypeDashboard:     {RoleAdmin, RoleManager, RoleAgent},
	TypeAnalytics:     {RoleAdmin, RoleManager, RoleAgent},
	TypeFinancial:     {RoleAdmin, RoleManager},
	TypeAds:           {RoleAdmin, RoleManager},
	TypeWallet:        {RoleAdmin, RoleManager},
	TypeAdminOverview: {RoleAdmin},
}

// Allowed reports whether role may request report type t.
func Allowed(role Role, t Type) bool {
	return slices.Contains(access[t], role)
}
