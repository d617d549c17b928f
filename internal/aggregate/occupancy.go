package aggregate

import (
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

// Occupancy summarises unit utilisation.
type Occupancy struct {
	Total    int     `json:"total"`
	Occupied int     `json:"occupied"`
	Vacant   int     `json:"vacant"`
	Rate     float64 `json:"rate"`
}

// OccupancyStats counts rented-equivalent units. Occupied plus vacant always
// equals total.
func OccupancyStats(units []records.Unit) Occupancy {
	out := Occupancy{Total: len(units)}
	for _, u := range units {
		if u.Occupied() {
			out.Occupied++
		}
	}
	out.Vacant = max(out.Total-out.Occupied, 0)
	out.Rate = Rate(float64(out.Occupied), float64(out.Total))
	return out
}

// CountWhere counts the items matching pred.
func CountWhere[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// SumRent totals the monthly rent of active tenants.
func SumRent(tenants []records.Tenant) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tenants {
		if t.Status == records.TenantActive {
			total = total.Add(t.MonthlyRent)
		}
	}
	return total
}
