package aggregate

import (
	"sort"
	"strings"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Inquiry types.
const (
	InquiryRent    = "rent"
	InquirySale    = "sale"
	InquiryGeneral = "general"
)

// InquiryTypes lists inquiry types in display order.
var InquiryTypes = []string{InquiryRent, InquirySale, InquiryGeneral}

// UnitIndex maps unit ids to units.
func UnitIndex(units []records.Unit) map[uuid.UUID]records.Unit {
	out := make(map[uuid.UUID]records.Unit, len(units))
	for _, u := range units {
		out[u.ID] = u
	}
	return out
}

// InquiryTypeOf classifies an inquiry by the category of the listing it is
// about. Inquiries without a known listing are general.
func InquiryTypeOf(inq records.Inquiry, units map[uuid.UUID]records.Unit) string {
	if inq.UnitID == nil {
		return InquiryGeneral
	}
	u, ok := units[*inq.UnitID]
	if !ok {
		return InquiryGeneral
	}
	switch u.Category {
	case records.CategoryRent:
		return InquiryRent
	case records.CategorySale:
		return InquirySale
	}
	return InquiryGeneral
}

// Listing is the engagement of one unit.
type Listing struct {
	UnitID         uuid.UUID       `json:"unit_id"`
	Title          string          `json:"title"`
	Location       string          `json:"location"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Views          int64           `json:"views"`
	Inquiries      int             `json:"inquiries"`
	ConversionRate float64         `json:"conversion_rate"`
}

func inquiriesByUnit(inquiries []records.Inquiry) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int)
	for _, inq := range inquiries {
		if inq.UnitID != nil {
			out[*inq.UnitID]++
		}
	}
	return out
}

// ListingPerformance ranks units by inquiries, then views, then title.
func ListingPerformance(units []records.Unit, inquiries []records.Inquiry) []Listing {
	counts := inquiriesByUnit(inquiries)
	out := make([]Listing, 0, len(units))
	for _, u := range units {
		n := counts[u.ID]
		out = append(out, Listing{
			UnitID:         u.ID,
			Title:          u.Title,
			Location:       u.Location,
			Category:       u.Category,
			Price:          u.Price(),
			Views:          u.Views,
			Inquiries:      n,
			ConversionRate: ConversionFunnel(u.Views, int64(n)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Inquiries != b.Inquiries {
			return a.Inquiries > b.Inquiries
		}
		if a.Views != b.Views {
			return a.Views > b.Views
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.UnitID.String() < b.UnitID.String()
	})
	return out
}

// Location is engagement grouped by listing location.
type Location struct {
	Location       string          `json:"location"`
	Listings       int             `json:"listings"`
	Views          int64           `json:"views"`
	Inquiries      int             `json:"inquiries"`
	ConversionRate float64         `json:"conversion_rate"`
	AveragePrice   decimal.Decimal `json:"average_price"`
}

const unknownLocation = "unknown"

// LocationPerformance groups units by location, most inquiries first.
func LocationPerformance(units []records.Unit, inquiries []records.Inquiry) []Location {
	counts := inquiriesByUnit(inquiries)
	index := make(map[string]int)
	var out []Location
	sums := []decimal.Decimal{}
	for _, u := range units {
		name := strings.TrimSpace(u.Location)
		if name == "" {
			name = unknownLocation
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, Location{Location: name})
			sums = append(sums, decimal.Zero)
		}
		out[i].Listings++
		out[i].Views += u.Views
		out[i].Inquiries += counts[u.ID]
		sums[i] = sums[i].Add(u.Price())
	}
	for i := range out {
		out[i].ConversionRate = ConversionFunnel(out[i].Views, int64(out[i].Inquiries))
		out[i].AveragePrice = sums[i].Div(decimal.NewFromInt(int64(out[i].Listings))).Round(2)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Inquiries != out[j].Inquiries {
			return out[i].Inquiries > out[j].Inquiries
		}
		return out[i].Location < out[j].Location
	})
	return out
}
