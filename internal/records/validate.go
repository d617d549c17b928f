package records

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
			d, ok := v.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
	})
	return validate
}

// check validates a normalised record and reports which row failed.
func check(kind Kind, id uuid.UUID, record interface{}) error {
	if err := recordValidator().Struct(record); err != nil {
		return &RecordError{Kind: kind, ID: id, Err: err}
	}
	return nil
}

func token(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeBuilding prepares a building row for aggregation.
func NormalizeBuilding(b Building) (Building, error) {
	b.CreatedAt = b.CreatedAt.UTC()
	return b, check(KindBuilding, b.ID, b)
}

// NormalizeUnit folds legacy category and status spellings.
func NormalizeUnit(u Unit) (Unit, error) {
	u.Category = token(u.Category)
	switch u.Category {
	case "for rent", "rental", "":
		u.Category = CategoryRent
	case "for sale":
		u.Category = CategorySale
	}
	u.Status = token(u.Status)
	switch u.Status {
	case "vacant", "":
		u.Status = UnitAvailable
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, check(KindUnit, u.ID, u)
}

// NormalizeTenant folds rent status spellings.
func NormalizeTenant(t Tenant) (Tenant, error) {
	t.Status = token(t.Status)
	t.RentStatus = token(t.RentStatus)
	switch t.RentStatus {
	case "overdue":
		t.RentStatus = RentLate
	case "":
		t.RentStatus = RentCurrent
	}
	t.MoveInDate = t.MoveInDate.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	if t.LeaseEndDate != nil {
		end := t.LeaseEndDate.UTC()
		t.LeaseEndDate = &end
	}
	return t, check(KindTenant, t.ID, t)
}

// NormalizeInquiry folds the helpdesk-style statuses onto the inquiry lifecycle.
func NormalizeInquiry(i Inquiry) (Inquiry, error) {
	i.Status = token(i.Status)
	switch i.Status {
	case "open":
		i.Status = InquiryNew
	case "closed":
		i.Status = InquiryResolved
	}
	i.CreatedAt = i.CreatedAt.UTC()
	return i, check(KindInquiry, i.ID, i)
}

// NormalizeNotice maps approval outcomes onto delivery status.
func NormalizeNotice(n Notice) (Notice, error) {
	n.Status = token(n.Status)
	switch n.Status {
	case "approved", "completed":
		n.Status = NoticeDelivered
	}
	n.Type = token(n.Type)
	n.DateIssued = n.DateIssued.UTC()
	return n, check(KindNotice, n.ID, n)
}

// NormalizeTransaction resolves the revenue/expense type and stores the
// amount as an absolute value.
func NormalizeTransaction(t Transaction) (Transaction, error) {
	t.Type = token(t.Type)
	t.Category = token(t.Category)
	switch t.Type {
	case TxRevenue, TxExpense:
	case "rent", "deposit", "commission", "fees":
		if t.Category == "" {
			t.Category = t.Type
		}
		t.Type = TxRevenue
	case "maintenance":
		if t.Category == "" {
			t.Category = t.Type
		}
		t.Type = TxExpense
	case "":
		if t.Amount.IsNegative() {
			t.Type = TxExpense
		} else {
			t.Type = TxRevenue
		}
	}
	if t.Category == "" {
		t.Category = "other"
	}
	t.Amount = t.Amount.Abs()
	t.Status = token(t.Status)
	switch t.Status {
	case "processed":
		t.Status = TxCompleted
	case "refunded":
		t.Status = TxCancelled
	}
	t.Date = t.Date.UTC()
	return t, check(KindTransaction, t.ID, t)
}

// NormalizeAd folds the status spelling and converts timestamps to UTC.
func NormalizeAd(a Ad) (Ad, error) {
	a.Status = token(a.Status)
	a.CreatedAt = a.CreatedAt.UTC()
	if a.ExpiresAt != nil {
		exp := a.ExpiresAt.UTC()
		a.ExpiresAt = &exp
	}
	return a, check(KindAd, a.ID, a)
}

// NormalizeWallet validates running totals.
func NormalizeWallet(w Wallet) (Wallet, error) {
	w.Status = token(w.Status)
	return w, check(KindWallet, w.ID, w)
}

// NormalizeWalletTransaction stores amounts as absolute values.
func NormalizeWalletTransaction(t WalletTransaction) (WalletTransaction, error) {
	t.Type = token(t.Type)
	t.Status = token(t.Status)
	t.Amount = t.Amount.Abs()
	t.CreatedAt = t.CreatedAt.UTC()
	return t, check(KindWalletTransaction, t.ID, t)
}
