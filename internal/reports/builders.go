package reports

import (
	"slices"
	"time"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

func inRange[T any](items []T, rng records.Range, date func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if rng.Contains(date(item)) {
			out = append(out, item)
		}
	}
	return out
}

func inquiryDate(i records.Inquiry) time.Time { return i.CreatedAt }

func changeInCount(previous, current int) float64 {
	return aggregate.ChangePct(decimal.NewFromInt(int64(previous)), decimal.NewFromInt(int64(current)))
}

var dashboardPlan = plan[DashboardSummary]{
	requests: func(f frame) []records.Request {
		flows := cover(f.cumulative, f.trend, f.trend.Previous())
		return []records.Request{
			{Kind: records.KindBuilding},
			{Kind: records.KindUnit},
			{Kind: records.KindTenant},
			{Kind: records.KindInquiry, Filter: records.Filter{Range: flows}},
			{Kind: records.KindNotice, Filter: records.Filter{Statuses: []string{records.NoticePending}}},
			{Kind: records.KindTransaction, Filter: records.Filter{Range: flows, Statuses: []string{records.TxCompleted}}},
		}
	},
	build: func(f frame, snap records.Snapshot) *DashboardSummary {
		occupancy := aggregate.OccupancyStats(snap.Units)
		previous := f.trend.Previous()
		trendRevenue := aggregate.RevenueTotals(snap.Transactions, f.trend).TotalRevenue
		previousRevenue := aggregate.RevenueTotals(snap.Transactions, previous).TotalRevenue
		open := aggregate.CountWhere(inRange(snap.Inquiries, f.cumulative, inquiryDate), records.Inquiry.Open)
		return &DashboardSummary{
			Header:             f.header(),
			TotalBuildings:     len(snap.Buildings),
			TotalUnits:         occupancy.Total,
			OccupiedUnits:      occupancy.Occupied,
			VacantUnits:        occupancy.Vacant,
			OccupancyRate:      occupancy.Rate,
			MonthlyRevenue:     trendRevenue,
			TotalRevenue:       aggregate.RevenueTotals(snap.Transactions, f.cumulative).TotalRevenue,
			PendingInquiries:   open,
			ActiveNotices:      aggregate.CountWhere(snap.Notices, func(n records.Notice) bool { return n.Status == records.NoticePending }),
			TotalTenants:       len(snap.Tenants),
			RevenueChangePct:   aggregate.ChangePct(previousRevenue, trendRevenue),
			InquiriesChangePct: changeInCount(len(inRange(snap.Inquiries, previous, inquiryDate)), len(inRange(snap.Inquiries, f.trend, inquiryDate))),
		}
	},
}

var analyticsPlan = plan[Analytics]{
	requests: func(f frame) []records.Request {
		return []records.Request{
			{Kind: records.KindUnit},
			{Kind: records.KindInquiry, Filter: records.Filter{Range: cover(f.cumulative, f.trend)}},
		}
	},
	build: func(f frame, snap records.Snapshot) *Analytics {
		inquiries := inRange(snap.Inquiries, f.cumulative, inquiryDate)
		var views int64
		for _, u := range snap.Units {
			views += u.Views
		}
		listings := aggregate.ListingPerformance(snap.Units, inquiries)
		listings = listings[:min(topListings, len(listings))]
		index := aggregate.UnitIndex(snap.Units)

		viewSeries := aggregate.TimeSeriesBucket(snap.Units,
			func(u records.Unit) time.Time { return u.CreatedAt },
			func(u records.Unit) decimal.Decimal { return decimal.NewFromInt(u.Views) },
			f.trend, f.granularity)
		inquirySeries := aggregate.TimeSeriesBucket(snap.Inquiries, inquiryDate, nil, f.trend, f.granularity)
		points := make([]ViewsPoint, len(viewSeries))
		for i, p := range viewSeries {
			points[i] = ViewsPoint{
				Key:       p.Key,
				Start:     p.Start,
				End:       p.End,
				Views:     p.Total.IntPart(),
				Inquiries: inquirySeries[i].Count,
			}
		}

		return &Analytics{
			Header:                f.header(),
			TotalViews:            views,
			TotalInquiries:        len(inquiries),
			TotalListings:         len(snap.Units),
			ConversionRate:        aggregate.ConversionFunnel(views, int64(len(inquiries))),
			TopPerformingListings: listings,
			ViewsOverTime:         points,
			InquiriesByType: aggregate.StatusDistribution(inquiries,
				func(i records.Inquiry) string { return aggregate.InquiryTypeOf(i, index) },
				aggregate.InquiryTypes),
			LocationPerformance: aggregate.LocationPerformance(snap.Units, inquiries),
		}
	},
}

func newestTransactions(txns []records.Transaction, rng records.Range, limit int) []records.Transaction {
	out := inRange(txns, rng, func(t records.Transaction) time.Time { return t.Date })
	slices.SortStableFunc(out, func(a, b records.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out[:min(limit, len(out))]
}

var financialPlan = plan[Financial]{
	requests: func(f frame) []records.Request {
		return []records.Request{
			{Kind: records.KindTransaction, Filter: records.Filter{Range: cover(f.cumulative, f.trend), NewestFirst: true}},
		}
	},
	build: func(f frame, snap records.Snapshot) *Financial {
		totals := aggregate.RevenueTotals(snap.Transactions, f.cumulative)
		return &Financial{
			Header:           f.header(),
			TotalRevenue:     totals.TotalRevenue,
			TotalExpenses:    totals.TotalExpenses,
			NetProfit:        totals.NetProfit,
			ProfitMarginPct:  totals.MarginPct,
			RevenueBreakdown: aggregate.CategoryBreakdown(snap.Transactions, records.TxRevenue, f.cumulative),
			ExpenseBreakdown: aggregate.CategoryBreakdown(snap.Transactions, records.TxExpense, f.cumulative),
			CashFlow:         aggregate.CashFlow(snap.Transactions, f.trend, f.granularity),
			Transactions:     newestTransactions(snap.Transactions, f.cumulative, f.recent),
		}
	},
}

var tenantStatuses = []string{records.TenantActive, records.TenantMovingOut, records.TenantMovedOut}

var rentStatuses = []string{records.RentCurrent, records.RentLate}

var adminPlan = plan[AdminOverview]{
	fixed: aggregate.Month,
	requests: func(f frame) []records.Request {
		return []records.Request{
			{Kind: records.KindBuilding},
			{Kind: records.KindUnit},
			{Kind: records.KindTenant},
			{Kind: records.KindTransaction, Filter: records.Filter{Range: f.trend, Statuses: []string{records.TxCompleted}}},
		}
	},
	build: func(f frame, snap records.Snapshot) *AdminOverview {
		active := make([]records.Tenant, 0, len(snap.Tenants))
		for _, t := range snap.Tenants {
			if t.Status == records.TenantActive {
				active = append(active, t)
			}
		}
		flows := aggregate.CashFlow(snap.Transactions, f.trend, aggregate.Month)
		arrivals := aggregate.TimeSeriesBucket(snap.Tenants, func(t records.Tenant) time.Time { return t.MoveInDate }, nil, f.trend, aggregate.Month)
		trends := make([]MonthlyTrend, len(flows))
		for i, p := range flows {
			trends[i] = MonthlyTrend{
				Key:        p.Key,
				Start:      p.Start,
				End:        p.End,
				Revenue:    p.Inflow,
				Expenses:   p.Outflow,
				Net:        p.Net,
				NewTenants: arrivals[i].Count,
			}
		}
		return &AdminOverview{
			Header:                   f.header(),
			TotalTenants:             len(snap.Tenants),
			TotalBuildings:           len(snap.Buildings),
			OccupancyRate:            aggregate.OccupancyStats(snap.Units).Rate,
			ExpectedMonthlyRent:      aggregate.SumRent(snap.Tenants),
			TenantStatusDistribution: aggregate.StatusDistribution(snap.Tenants, func(t records.Tenant) string { return t.Status }, tenantStatuses),
			RentStatusDistribution:   aggregate.StatusDistribution(active, func(t records.Tenant) string { return t.RentStatus }, rentStatuses),
			MonthlyTrends:            trends,
		}
	},
}

func walletDate(t records.WalletTransaction) time.Time { return t.CreatedAt }

var adsPlan = plan[AdReport]{
	requests: func(f frame) []records.Request {
		return []records.Request{
			{Kind: records.KindAd},
			{Kind: records.KindWalletTransaction, Filter: records.Filter{Range: cover(f.cumulative, f.trend)}},
		}
	},
	build: func(f frame, snap records.Snapshot) *AdReport {
		var spend []records.WalletTransaction
		for _, t := range snap.WalletTransactions {
			if t.Type == records.WalletAdSpend {
				spend = append(spend, t)
			}
		}
		summary := aggregate.WalletSummary(records.Wallet{}, spend, f.cumulative)
		return &AdReport{
			Header:        f.header(),
			Summary:       aggregate.AdPerformance(snap.Ads),
			WalletAdSpend: summary.PeriodDebits,
			SpendOverTime: aggregate.TimeSeriesBucket(spend, walletDate,
				func(t records.WalletTransaction) decimal.Decimal { return t.Amount.Abs() },
				f.trend, f.granularity),
		}
	},
}

var walletPlan = plan[WalletReport]{
	requests: func(f frame) []records.Request {
		return []records.Request{
			{Kind: records.KindWallet},
			{Kind: records.KindWalletTransaction, Filter: records.Filter{Range: f.cumulative, NewestFirst: true}},
		}
	},
	build: func(f frame, snap records.Snapshot) *WalletReport {
		recent := inRange(snap.WalletTransactions, f.cumulative, walletDate)
		slices.SortStableFunc(recent, func(a, b records.WalletTransaction) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
		return &WalletReport{
			Header:  f.header(),
			Summary: aggregate.WalletSummary(snap.Wallet, snap.WalletTransactions, f.cumulative),
			Recent:  recent[:min(f.recent, len(recent))],
		}
	},
}
