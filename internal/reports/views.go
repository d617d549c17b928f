package reports

import (
	"time"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

// Header is carried by every view model.
type Header struct {
	Report      Type                  `json:"report"`
	Windows     Windows               `json:"windows"`
	Granularity aggregate.Granularity `json:"granularity"`
	Preview     bool                  `json:"preview"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Meta returns the header.
func (h *Header) Meta() *Header { return h }

// Report is any assembled view model.
type Report interface {
	Meta() *Header
}

// DashboardSummary feeds the landing dashboard.
type DashboardSummary struct {
	Header
	TotalBuildings     int             `json:"total_buildings"`
	TotalUnits         int             `json:"total_units"`
	OccupiedUnits      int             `json:"occupied_units"`
	VacantUnits        int             `json:"vacant_units"`
	OccupancyRate      float64         `json:"occupancy_rate"`
	MonthlyRevenue     decimal.Decimal `json:"monthly_revenue"`
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	PendingInquiries   int             `json:"pending_inquiries"`
	ActiveNotices      int             `json:"active_notices"`
	TotalTenants       int             `json:"total_tenants"`
	RevenueChangePct   float64         `json:"revenue_change_pct"`
	InquiriesChangePct float64         `json:"inquiries_change_pct"`
}

// ViewsPoint is listing engagement for one period.
type ViewsPoint struct {
	Key       string    `json:"key"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Views     int64     `json:"views"`
	Inquiries int       `json:"inquiries"`
}

// Analytics feeds the listing analytics page.
type Analytics struct {
	Header
	TotalViews            int64                `json:"total_views"`
	TotalInquiries        int                  `json:"total_inquiries"`
	TotalListings         int                  `json:"total_listings"`
	ConversionRate        float64              `json:"conversion_rate"`
	TopPerformingListings []aggregate.Listing  `json:"top_performing_listings"`
	ViewsOverTime         []ViewsPoint         `json:"views_over_time"`
	InquiriesByType       []aggregate.Bucket   `json:"inquiries_by_type"`
	LocationPerformance   []aggregate.Location `json:"location_performance"`
}

// Financial feeds the finances page.
type Financial struct {
	Header
	TotalRevenue     decimal.Decimal       `json:"total_revenue"`
	TotalExpenses    decimal.Decimal       `json:"total_expenses"`
	NetProfit        decimal.Decimal       `json:"net_profit"`
	ProfitMarginPct  float64               `json:"profit_margin_pct"`
	RevenueBreakdown []aggregate.Share     `json:"revenue_breakdown"`
	ExpenseBreakdown []aggregate.Share     `json:"expense_breakdown"`
	CashFlow         []aggregate.FlowPoint `json:"cash_flow"`
	Transactions     []records.Transaction `json:"transactions"`
}

// MonthlyTrend is one month of the admin overview.
type MonthlyTrend struct {
	Key        string          `json:"key"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Revenue    decimal.Decimal `json:"revenue"`
	Expenses   decimal.Decimal `json:"expenses"`
	Net        decimal.Decimal `json:"net"`
	NewTenants int             `json:"new_tenants"`
}

// AdminOverview feeds the administrator overview.
type AdminOverview struct {
	Header
	TotalTenants             int                `json:"total_tenants"`
	TotalBuildings           int                `json:"total_buildings"`
	OccupancyRate            float64            `json:"occupancy_rate"`
	ExpectedMonthlyRent      decimal.Decimal    `json:"expected_monthly_rent"`
	TenantStatusDistribution []aggregate.Bucket `json:"tenant_status_distribution"`
	RentStatusDistribution   []aggregate.Bucket `json:"rent_status_distribution"`
	MonthlyTrends            []MonthlyTrend     `json:"monthly_trends"`
}

// AdReport feeds the ads page.
type AdReport struct {
	Header
	Summary       aggregate.AdSummary `json:"summary"`
	WalletAdSpend decimal.Decimal     `json:"wallet_ad_spend"`
	SpendOverTime []aggregate.Period  `json:"spend_over_time"`
}

// WalletReport feeds the wallet page.
type WalletReport struct {
	Header
	Summary aggregate.Wallet            `json:"summary"`
	Recent  []records.WalletTransaction `json:"recent"`
}
