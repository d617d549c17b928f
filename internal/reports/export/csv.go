// Package export renders report view models as CSV.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/estatedesk/estatedesk/internal/reports"
)

const dateLayout = "2006-01-02"

func formatMoney(d decimal.Decimal) string { return d.StringFixed(2) }

func formatPct(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func formatWindow(w reports.Window) string {
	if w.From == nil || w.To == nil {
		return w.Label
	}
	return w.From.Format(dateLayout) + ".." + w.To.Add(-time.Nanosecond).Format(dateLayout)
}

// section writes one titled table followed by a blank separator line.
func section(writer *csv.Writer, header []string, rows [][]string) error {
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Write(nil)
}

// WriteFinancialCSV serialises the financial report: totals, category
// breakdowns, cash flow periods and recent transactions.
func WriteFinancialCSV(w io.Writer, report reports.Financial) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	totals := [][]string{
		{"Window", formatWindow(report.Windows.Cumulative)},
		{"Total Revenue", formatMoney(report.TotalRevenue)},
		{"Total Expenses", formatMoney(report.TotalExpenses)},
		{"Net Profit", formatMoney(report.NetProfit)},
		{"Profit Margin %", formatPct(report.ProfitMarginPct)},
		{"Preview", strconv.FormatBool(report.Preview)},
	}
	if err := section(writer, []string{"Metric", "Value"}, totals); err != nil {
		return err
	}

	breakdown := make([][]string, 0, len(report.RevenueBreakdown)+len(report.ExpenseBreakdown))
	for _, s := range report.RevenueBreakdown {
		breakdown = append(breakdown, []string{"revenue", s.Category, formatMoney(s.Amount), formatPct(s.SharePct), strconv.Itoa(s.Count)})
	}
	for _, s := range report.ExpenseBreakdown {
		breakdown = append(breakdown, []string{"expense", s.Category, formatMoney(s.Amount), formatPct(s.SharePct), strconv.Itoa(s.Count)})
	}
	if err := section(writer, []string{"Type", "Category", "Amount", "Share %", "Count"}, breakdown); err != nil {
		return err
	}

	flows := make([][]string, 0, len(report.CashFlow))
	for _, p := range report.CashFlow {
		flows = append(flows, []string{p.Key, formatMoney(p.Inflow), formatMoney(p.Outflow), formatMoney(p.Net)})
	}
	if err := section(writer, []string{"Period", "Inflow", "Outflow", "Net"}, flows); err != nil {
		return err
	}

	if err := writer.Write([]string{"Date", "Type", "Category", "Amount", "Status", "Description"}); err != nil {
		return err
	}
	for _, t := range report.Transactions {
		if err := writer.Write([]string{
			t.Date.Format(dateLayout),
			t.Type,
			t.Category,
			formatMoney(t.Amount),
			t.Status,
			t.Description,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAnalyticsCSV serialises the listing analytics report.
func WriteAnalyticsCSV(w io.Writer, report reports.Analytics) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	totals := [][]string{
		{"Window", formatWindow(report.Windows.Cumulative)},
		{"Total Views", strconv.FormatInt(report.TotalViews, 10)},
		{"Total Inquiries", strconv.Itoa(report.TotalInquiries)},
		{"Total Listings", strconv.Itoa(report.TotalListings)},
		{"Conversion Rate %", formatPct(report.ConversionRate)},
	}
	if err := section(writer, []string{"Metric", "Value"}, totals); err != nil {
		return err
	}

	top := make([][]string, 0, len(report.TopPerformingListings))
	for _, l := range report.TopPerformingListings {
		top = append(top, []string{l.Title, l.Location, strconv.FormatInt(l.Views, 10), strconv.Itoa(l.Inquiries), formatPct(l.ConversionRate)})
	}
	if err := section(writer, []string{"Listing", "Location", "Views", "Inquiries", "Conversion %"}, top); err != nil {
		return err
	}

	series := make([][]string, 0, len(report.ViewsOverTime))
	for _, p := range report.ViewsOverTime {
		series = append(series, []string{p.Key, strconv.FormatInt(p.Views, 10), strconv.Itoa(p.Inquiries)})
	}
	if err := section(writer, []string{"Period", "Views", "Inquiries"}, series); err != nil {
		return err
	}

	types := make([][]string, 0, len(report.InquiriesByType))
	for _, b := range report.InquiriesByType {
		types = append(types, []string{b.Label, strconv.Itoa(b.Count)})
	}
	if err := section(writer, []string{"Inquiry Type", "Count"}, types); err != nil {
		return err
	}

	if err := writer.Write([]string{"Location", "Listings", "Views", "Inquiries", "Conversion %", "Average Price"}); err != nil {
		return err
	}
	for _, l := range report.LocationPerformance {
		if err := writer.Write([]string{
			l.Location,
			strconv.Itoa(l.Listings),
			strconv.FormatInt(l.Views, 10),
			strconv.Itoa(l.Inquiries),
			formatPct(l.ConversionRate),
			formatMoney(l.AveragePrice),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
