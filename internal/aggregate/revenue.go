package aggregate

import (
	"sort"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

// Revenue is the settled income statement for a range.
type Revenue struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	MarginPct     float64         `json:"margin_pct"`
}

// RevenueTotals sums completed revenue and expense transactions dated inside
// rng. Net profit may be negative and so may the margin.
func RevenueTotals(txns []records.Transaction, rng records.Range) Revenue {
	revenue, expenses := decimal.Zero, decimal.Zero
	for _, t := range txns {
		if !t.Completed() || !rng.Contains(t.Date) {
			continue
		}
		switch t.Type {
		case records.TxRevenue:
			revenue = revenue.Add(t.Amount.Abs())
		case records.TxExpense:
			expenses = expenses.Add(t.Amount.Abs())
		}
	}
	net := revenue.Sub(expenses)
	return Revenue{
		TotalRevenue:  revenue,
		TotalExpenses: expenses,
		NetProfit:     net,
		MarginPct:     PercentDecimal(net, revenue),
	}
}

// Share is one category's part of a total.
type Share struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	SharePct float64         `json:"share_pct"`
	Count    int             `json:"count"`
}

// CategoryBreakdown groups completed transactions of txType inside rng by
// category, largest first and then by name.
func CategoryBreakdown(txns []records.Transaction, txType string, rng records.Range) []Share {
	index := make(map[string]int)
	var out []Share
	total := decimal.Zero
	for _, t := range txns {
		if t.Type != txType || !t.Completed() || !rng.Contains(t.Date) {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, Share{Category: t.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount.Abs())
		out[i].Count++
		total = total.Add(t.Amount.Abs())
	}
	for i := range out {
		out[i].SharePct = clamp(PercentDecimal(out[i].Amount, total), 0, 100)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}
