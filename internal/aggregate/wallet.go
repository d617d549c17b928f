package aggregate

import (
	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

// WalletTypes lists wallet movement types in display order.
var WalletTypes = []string{
	records.WalletDeposit,
	records.WalletWithdrawal,
	records.WalletAdSpend,
	records.WalletRefund,
	records.WalletBonus,
}

// TypeTotal is the count and amount of one wallet movement type.
type TypeTotal struct {
	Type   string          `json:"type"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Wallet combines the stored running totals with movements inside a range.
type Wallet struct {
	Balance          decimal.Decimal `json:"balance"`
	PendingBalance   decimal.Decimal `json:"pending_balance"`
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalSpentOnAds  decimal.Decimal `json:"total_spent_on_ads"`
	Currency         string          `json:"currency"`
	PeriodCredits    decimal.Decimal `json:"period_credits"`
	PeriodDebits     decimal.Decimal `json:"period_debits"`
	PeriodNet        decimal.Decimal `json:"period_net"`
	ByType           []TypeTotal     `json:"by_type"`
}

// Wallet movements in these statuses never touched the balance.
var voidWalletStatuses = map[string]bool{"failed": true, "cancelled": true, "rejected": true}

// WalletSummary reports the wallet's running totals and the credits and
// debits dated inside rng.
func WalletSummary(w records.Wallet, txns []records.WalletTransaction, rng records.Range) Wallet {
	out := Wallet{
		Balance:          w.Balance,
		PendingBalance:   w.PendingBalance,
		TotalDeposits:    w.TotalDeposits,
		TotalWithdrawals: w.TotalWithdrawals,
		TotalSpentOnAds:  w.TotalSpentOnAds,
		Currency:         w.Currency,
		PeriodCredits:    decimal.Zero,
		PeriodDebits:     decimal.Zero,
		ByType:           make([]TypeTotal, len(WalletTypes)),
	}
	index := make(map[string]int, len(WalletTypes))
	for i, typ := range WalletTypes {
		out.ByType[i] = TypeTotal{Type: typ, Amount: decimal.Zero}
		index[typ] = i
	}
	for _, t := range txns {
		if voidWalletStatuses[t.Status] || !rng.Contains(t.CreatedAt) {
			continue
		}
		amount := t.Amount.Abs()
		if t.Credit() {
			out.PeriodCredits = out.PeriodCredits.Add(amount)
		} else {
			out.PeriodDebits = out.PeriodDebits.Add(amount)
		}
		if i, ok := index[t.Type]; ok {
			out.ByType[i].Count++
			out.ByType[i].Amount = out.ByType[i].Amount.Add(amount)
		}
	}
	out.PeriodNet = out.PeriodCredits.Sub(out.PeriodDebits)
	return out
}
