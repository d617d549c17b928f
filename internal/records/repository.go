package records

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository reads tenant-scoped records from Postgres. Every fetch is
// retried on transport failure and every row is normalised and validated
// before it is returned.
type Repository struct {
	db     dbtx
	retry  Retry
	logger *slog.Logger
}

var _ Source = (*Repository)(nil)

// NewRepository constructs a Postgres-backed Source.
func NewRepository(db dbtx, retry Retry, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	if retry.Logger == nil {
		retry.Logger = logger
	}
	return &Repository{db: db, retry: retry, logger: logger}
}

// table describes how one kind is selected: the source relation, its owner
// columns, and which columns carry the date and status used by filters.
type table struct {
	from       string
	columns    string
	company    string
	individual string
	date       string
	status     string
}

var tables = map[Kind]table{
	KindBuilding: {
		from:       "buildings",
		columns:    "id, COALESCE(name, ''), COALESCE(address, ''), COALESCE(city, ''), COALESCE(building_type, ''), COALESCE(total_units, 0), COALESCE(year_built, 0), created_at",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
	},
	KindUnit: {
		from:       "vacant_units",
		columns:    "id, building_id, COALESCE(title, ''), COALESCE(city, ''), COALESCE(category, ''), COALESCE(rent_amount, 0), COALESCE(selling_price, 0), COALESCE(bedrooms, 0), COALESCE(bathrooms, 0), COALESCE(views, 0), COALESCE(status, ''), created_at",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
		status:     "status",
	},
	KindTenant: {
		from:       "tenants",
		columns:    "id, unit_id, COALESCE(name, ''), COALESCE(status, ''), COALESCE(rent_status, ''), COALESCE(monthly_rent, 0), COALESCE(move_in_date, created_at), lease_end_date, created_at",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
		status:     "status",
	},
	KindInquiry: {
		from:       "inquiries",
		columns:    "id, property_id, COALESCE(subject, ''), COALESCE(status, ''), created_at",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
		status:     "status",
	},
	KindNotice: {
		from:       "notices",
		columns:    "id, tenant_id, unit_id, COALESCE(type, ''), COALESCE(status, ''), COALESCE(date_issued, created_at)",
		company:    "company_account_id",
		individual: "user_id",
		date:       "COALESCE(date_issued, created_at)",
		status:     "status",
	},
	// Transactions unify received payments and paid expenses.
	KindTransaction: {
		from: `(
	SELECT id, company_account_id, user_id, 'revenue' AS type, COALESCE(payment_type, 'rent') AS category,
		amount, COALESCE(status, 'completed') AS status, COALESCE(payment_date, created_at) AS date, COALESCE(description, '') AS description
	FROM payments
	UNION ALL
	SELECT id, company_account_id, user_id, 'expense' AS type, COALESCE(category, '') AS category,
		amount, COALESCE(status, 'completed') AS status, COALESCE(expense_date, created_at) AS date, COALESCE(description, '') AS description
	FROM expenses
) AS t`,
		columns:    "id, type, category, amount, status, date, description",
		company:    "company_account_id",
		individual: "user_id",
		date:       "date",
		status:     "status",
	},
	KindAd: {
		from:       "ads",
		columns:    "id, property_id, COALESCE(title, ''), COALESCE(budget, 0), COALESCE(clicks, 0), COALESCE(impressions, 0), COALESCE(conversions, 0), COALESCE(status, ''), expires_at, created_at",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
		status:     "status",
	},
	KindWallet: {
		from:       "wallet",
		columns:    "id, COALESCE(balance, 0), COALESCE(pending_balance, 0), COALESCE(total_deposits, 0), COALESCE(total_withdrawals, 0), COALESCE(total_spent_on_ads, 0), COALESCE(currency, ''), COALESCE(status, '')",
		company:    "company_account_id",
		individual: "user_id",
		date:       "created_at",
	},
	KindWalletTransaction: {
		from:       "wallet_transactions",
		columns:    "id, wallet_id, COALESCE(type, ''), amount, COALESCE(status, ''), created_at",
		company:    "wallet_id IN (SELECT id FROM wallet WHERE company_account_id = $1)",
		individual: "wallet_id IN (SELECT id FROM wallet WHERE user_id = $1)",
		date:       "created_at",
		status:     "status",
	},
}

// buildQuery renders the SELECT for kind under scope and filter. The tenant
// identifier is always bound as $1.
func buildQuery(kind Kind, scope Scope, filter Filter) (string, []interface{}) {
	t := tables[kind]
	owner := t.company
	if scope.Individual {
		owner = t.individual
	}
	if !strings.Contains(owner, "$1") {
		owner += " = $1"
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(t.columns)
	b.WriteString(" FROM ")
	b.WriteString(t.from)
	b.WriteString(" WHERE ")
	b.WriteString(owner)

	args := []interface{}{scope.TenantID}
	next := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if t.status != "" && len(filter.Statuses) > 0 {
		b.WriteString(" AND " + t.status + " = ANY(" + next(filter.Statuses) + ")")
	}
	if !filter.Range.From.IsZero() {
		b.WriteString(" AND " + t.date + " >= " + next(filter.Range.From))
	}
	if !filter.Range.To.IsZero() {
		b.WriteString(" AND " + t.date + " < " + next(filter.Range.To))
	}
	if filter.NewestFirst {
		b.WriteString(" ORDER BY " + t.date + " DESC, id")
	} else {
		b.WriteString(" ORDER BY " + t.date + ", id")
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + next(filter.Limit))
	}
	return b.String(), args
}

// collect runs one retried query and normalises every row. A row that fails
// to decode or validate fails the whole fetch without a retry.
func collect[T any](ctx context.Context, r *Repository, kind Kind, scope Scope, filter Filter,
	scan func(pgx.Rows) (T, error), normalize func(T) (T, error)) ([]T, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	query, args := buildQuery(kind, scope, filter)
	var out []T
	err := r.retry.Do(ctx, kind, func(ctx context.Context) error {
		out = nil
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return classify(kind, err)
		}
		defer rows.Close()
		for rows.Next() {
			item, err := scan(rows)
			if err != nil {
				return &RecordError{Kind: kind, Err: err}
			}
			item, err = normalize(item)
			if err != nil {
				return err
			}
			out = append(out, item)
		}
		return classify(kind, rows.Err())
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		r.logger.Error("records fetch failed",
			slog.String("kind", string(kind)),
			slog.String("scope", scope.String()),
			slog.Any("error", err),
		)
		return nil, err
	}
	return out, nil
}

// Buildings implements Source.
func (r *Repository) Buildings(ctx context.Context, scope Scope, filter Filter) ([]Building, error) {
	return collect(ctx, r, KindBuilding, scope, filter, func(rows pgx.Rows) (Building, error) {
		var b Building
		err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.City, &b.BuildingType, &b.TotalUnits, &b.YearBuilt, &b.CreatedAt)
		return b, err
	}, NormalizeBuilding)
}

// Units implements Source.
func (r *Repository) Units(ctx context.Context, scope Scope, filter Filter) ([]Unit, error) {
	return collect(ctx, r, KindUnit, scope, filter, func(rows pgx.Rows) (Unit, error) {
		var u Unit
		err := rows.Scan(&u.ID, &u.BuildingID, &u.Title, &u.Location, &u.Category, &u.RentAmount, &u.SellingPrice,
			&u.Bedrooms, &u.Bathrooms, &u.Views, &u.Status, &u.CreatedAt)
		return u, err
	}, NormalizeUnit)
}

// Tenants implements Source.
func (r *Repository) Tenants(ctx context.Context, scope Scope, filter Filter) ([]Tenant, error) {
	return collect(ctx, r, KindTenant, scope, filter, func(rows pgx.Rows) (Tenant, error) {
		var t Tenant
		err := rows.Scan(&t.ID, &t.UnitID, &t.Name, &t.Status, &t.RentStatus, &t.MonthlyRent, &t.MoveInDate, &t.LeaseEndDate, &t.CreatedAt)
		return t, err
	}, NormalizeTenant)
}

// Inquiries implements Source.
func (r *Repository) Inquiries(ctx context.Context, scope Scope, filter Filter) ([]Inquiry, error) {
	return collect(ctx, r, KindInquiry, scope, filter, func(rows pgx.Rows) (Inquiry, error) {
		var i Inquiry
		err := rows.Scan(&i.ID, &i.UnitID, &i.Subject, &i.Status, &i.CreatedAt)
		return i, err
	}, NormalizeInquiry)
}

// Notices implements Source.
func (r *Repository) Notices(ctx context.Context, scope Scope, filter Filter) ([]Notice, error) {
	return collect(ctx, r, KindNotice, scope, filter, func(rows pgx.Rows) (Notice, error) {
		var n Notice
		err := rows.Scan(&n.ID, &n.TenantID, &n.UnitID, &n.Type, &n.Status, &n.DateIssued)
		return n, err
	}, NormalizeNotice)
}

// Transactions implements Source.
func (r *Repository) Transactions(ctx context.Context, scope Scope, filter Filter) ([]Transaction, error) {
	return collect(ctx, r, KindTransaction, scope, filter, func(rows pgx.Rows) (Transaction, error) {
		var t Transaction
		err := rows.Scan(&t.ID, &t.Type, &t.Category, &t.Amount, &t.Status, &t.Date, &t.Description)
		return t, err
	}, NormalizeTransaction)
}

// Ads implements Source.
func (r *Repository) Ads(ctx context.Context, scope Scope, filter Filter) ([]Ad, error) {
	return collect(ctx, r, KindAd, scope, filter, func(rows pgx.Rows) (Ad, error) {
		var a Ad
		err := rows.Scan(&a.ID, &a.UnitID, &a.Title, &a.Budget, &a.Clicks, &a.Impressions, &a.Conversions, &a.Status, &a.ExpiresAt, &a.CreatedAt)
		return a, err
	}, NormalizeAd)
}

// Wallet implements Source. A tenant without a wallet gets the zero wallet.
func (r *Repository) Wallet(ctx context.Context, scope Scope) (Wallet, error) {
	wallets, err := collect(ctx, r, KindWallet, scope, Filter{NewestFirst: true, Limit: 1}, func(rows pgx.Rows) (Wallet, error) {
		var w Wallet
		err := rows.Scan(&w.ID, &w.Balance, &w.PendingBalance, &w.TotalDeposits, &w.TotalWithdrawals, &w.TotalSpentOnAds, &w.Currency, &w.Status)
		return w, err
	}, NormalizeWallet)
	if err != nil {
		return Wallet{}, err
	}
	if len(wallets) == 0 {
		return Wallet{}, nil
	}
	return wallets[0], nil
}

// WalletTransactions implements Source.
func (r *Repository) WalletTransactions(ctx context.Context, scope Scope, filter Filter) ([]WalletTransaction, error) {
	return collect(ctx, r, KindWalletTransaction, scope, filter, func(rows pgx.Rows) (WalletTransaction, error) {
		var t WalletTransaction
		err := rows.Scan(&t.ID, &t.WalletID, &t.Type, &t.Amount, &t.Status, &t.CreatedAt)
		return t, err
	}, NormalizeWalletTransaction)
}

// Scopes lists every company account, used to pre-build reports.
func (r *Repository) Scopes(ctx context.Context) ([]Scope, error) {
	var scopes []Scope
	err := r.retry.Do(ctx, KindTenant, func(ctx context.Context) error {
		scopes = nil
		rows, err := r.db.Query(ctx, `SELECT DISTINCT company_account_id FROM company_accounts WHERE company_account_id IS NOT NULL ORDER BY company_account_id`)
		if err != nil {
			return classify(KindTenant, err)
		}
		defer rows.Close()
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				return classify(KindTenant, err)
			}
			scopes = append(scopes, Scope{TenantID: id})
		}
		return classify(KindTenant, rows.Err())
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Error("list scopes failed", slog.Any("error", err))
	}
	return scopes, err
}
