package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Kind tags an entity collection.
type Kind string

const (
	KindBuilding          Kind = "building"
	KindUnit              Kind = "unit"
	KindTenant            Kind = "tenant"
	KindInquiry           Kind = "inquiry"
	KindNotice            Kind = "notice"
	KindTransaction       Kind = "transaction"
	KindAd                Kind = "ad"
	KindWallet            Kind = "wallet"
	KindWalletTransaction Kind = "wallet-transaction"
)

// Kinds lists every entity kind in a stable order.
var Kinds = []Kind{
	KindBuilding,
	KindUnit,
	KindTenant,
	KindInquiry,
	KindNotice,
	KindTransaction,
	KindAd,
	KindWallet,
	KindWalletTransaction,
}

// Valid reports whether k is a known entity kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Scope identifies the tenant whose records are read. Company accounts are
// the common case; individual operators are scoped by their user id.
type Scope struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	Individual bool      `json:"individual"`
}

// Validate rejects missing tenant identifiers.
func (s Scope) Validate() error {
	if s.TenantID == uuid.Nil {
		return ErrInvalidTenant
	}
	return nil
}

// String renders the scope for logs and cache keys.
func (s Scope) String() string {
	if s.Individual {
		return "user:" + s.TenantID.String()
	}
	return "company:" + s.TenantID.String()
}

// ParseScope parses a raw tenant identifier.
func ParseScope(raw string, individual bool) (Scope, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Scope{}, ErrInvalidTenant
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %v", ErrInvalidTenant, err)
	}
	scope := Scope{TenantID: id, Individual: individual}
	if err := scope.Validate(); err != nil {
		return Scope{}, err
	}
	return scope, nil
}

// Range is a half-open time interval [From, To). A zero bound is open.
type Range struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// AllTime is the unbounded range.
var AllTime = Range{}

// Bounded reports whether both ends are set.
func (r Range) Bounded() bool {
	return !r.From.IsZero() && !r.To.IsZero()
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// Validate rejects inverted ranges.
func (r Range) Validate() error {
	if r.Bounded() && !r.From.Before(r.To) {
		return fmt.Errorf("records: range start %s must be before end %s", r.From.Format(time.RFC3339), r.To.Format(time.RFC3339))
	}
	return nil
}

// Duration returns the span of a bounded range and zero otherwise.
func (r Range) Duration() time.Duration {
	if !r.Bounded() {
		return 0
	}
	return r.To.Sub(r.From)
}

// Previous returns the equally long range that ends where r starts.
func (r Range) Previous() Range {
	if !r.Bounded() {
		return Range{}
	}
	return Range{From: r.From.Add(-r.Duration()), To: r.From}
}

// Filter narrows a tenant-scoped fetch.
type Filter struct {
	Statuses    []string
	Range       Range
	NewestFirst bool
	Limit       int
}

// ResolveScope maps an authenticated user to the tenant scope that owns
// their records: the company they belong to, the company they own, or
// themselves as an individual operator.
func (r *Repository) ResolveScope(ctx context.Context, userID uuid.UUID) (Scope, error) {
	if userID == uuid.Nil {
		return Scope{}, ErrInvalidTenant
	}
	var scope Scope
	err := r.retry.Do(ctx, KindTenant, func(ctx context.Context) error {
		resolved, err := r.resolveScope(ctx, userID)
		if err != nil {
			return err
		}
		scope = resolved
		return nil
	})
	return scope, err
}

func (r *Repository) resolveScope(ctx context.Context, userID uuid.UUID) (Scope, error) {
	var companyID *uuid.UUID
	err := r.db.QueryRow(ctx, `SELECT company_account_id FROM users WHERE id = $1`, userID).Scan(&companyID)
	switch {
	case err == nil:
		if companyID != nil && *companyID != uuid.Nil {
			return Scope{TenantID: *companyID}, nil
		}
	case errors.Is(err, pgx.ErrNoRows):
		return Scope{}, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	default:
		return Scope{}, classify(KindTenant, err)
	}

	var ownedID uuid.UUID
	err = r.db.QueryRow(ctx, `SELECT company_account_id FROM company_accounts WHERE owner_id = $1 LIMIT 1`, userID).Scan(&ownedID)
	switch {
	case err == nil:
		return Scope{TenantID: ownedID}, nil
	case errors.Is(err, pgx.ErrNoRows):
		return Scope{TenantID: userID, Individual: true}, nil
	default:
		return Scope{}, classify(KindTenant, err)
	}
}
