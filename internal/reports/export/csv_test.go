package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

func readAll(t *testing.T, data []byte) [][]string {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteFinancialCSV(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	report := reports.Financial{
		Header: reports.Header{
			Report:  reports.TypeFinancial,
			Windows: reports.Windows{Cumulative: reports.Window{Label: reports.LabelRequested, From: &from, To: &to}},
		},
		TotalRevenue:    decimal.NewFromInt(100000),
		TotalExpenses:   decimal.NewFromInt(40000),
		NetProfit:       decimal.NewFromInt(60000),
		ProfitMarginPct: 60,
		RevenueBreakdown: []aggregate.Share{
			{Category: "rent", Amount: decimal.NewFromInt(100000), SharePct: 100, Count: 2},
		},
		CashFlow: []aggregate.FlowPoint{
			{Key: "2024-01", Inflow: decimal.NewFromInt(100000), Outflow: decimal.NewFromInt(40000), Net: decimal.NewFromInt(60000)},
		},
		Transactions: []records.Transaction{
			{Type: records.TxRevenue, Category: "rent", Amount: decimal.NewFromInt(50000), Status: records.TxCompleted, Date: from.AddDate(0, 0, 4), Description: "Unit 4B, rent"},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteFinancialCSV(buf, report))
	rows := readAll(t, buf.Bytes())

	assert.Equal(t, []string{"Metric", "Value"}, rows[0])
	assert.Equal(t, []string{"Window", "2024-01-01..2024-01-31"}, rows[1])
	assert.Equal(t, []string{"Total Revenue", "100000.00"}, rows[2])
	assert.Equal(t, []string{"Profit Margin %", "60.00"}, rows[5])
	assert.Contains(t, rows, []string{"revenue", "rent", "100000.00", "100.00", "2"})
	assert.Contains(t, rows, []string{"2024-01", "100000.00", "40000.00", "60000.00"})
	assert.Equal(t, []string{"2024-01-05", "revenue", "rent", "50000.00", "completed", "Unit 4B, rent"}, rows[len(rows)-1])
}

func TestWriteAnalyticsCSV(t *testing.T) {
	report := reports.Analytics{
		Header: reports.Header{
			Report:  reports.TypeAnalytics,
			Windows: reports.Windows{Cumulative: reports.Window{Label: reports.LabelAllTime}},
		},
		TotalViews:     500,
		TotalInquiries: 20,
		TotalListings:  3,
		ConversionRate: 4,
		TopPerformingListings: []aggregate.Listing{
			{Title: "Skyline 4B", Location: "Ikoyi", Views: 300, Inquiries: 12, ConversionRate: 4},
		},
		InquiriesByType: []aggregate.Bucket{{Label: aggregate.InquiryRent, Count: 12}},
		LocationPerformance: []aggregate.Location{
			{Location: "Ikoyi", Listings: 2, Views: 300, Inquiries: 12, ConversionRate: 4, AveragePrice: decimal.NewFromInt(2500000)},
		},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, WriteAnalyticsCSV(buf, report))
	rows := readAll(t, buf.Bytes())

	assert.Equal(t, []string{"Window", reports.LabelAllTime}, rows[1])
	assert.Equal(t, []string{"Total Views", "500"}, rows[2])
	assert.Contains(t, rows, []string{"Skyline 4B", "Ikoyi", "300", "12", "4.00"})
	assert.Contains(t, rows, []string{aggregate.InquiryRent, "12"})
	assert.Equal(t, []string{"Ikoyi", "2", "300", "12", "4.00", "2500000.00"}, rows[len(rows)-1])
}
