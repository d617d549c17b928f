package records

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Source reads tenant-scoped entity collections. Every method returns only
// the records of the given scope and never mutates the store.
type Source interface {
	Buildings(ctx context.Context, scope Scope, filter Filter) ([]Building, error)
	Units(ctx context.Context, scope Scope, filter Filter) ([]Unit, error)
	Tenants(ctx context.Context, scope Scope, filter Filter) ([]Tenant, error)
	Inquiries(ctx context.Context, scope Scope, filter Filter) ([]Inquiry, error)
	Notices(ctx context.Context, scope Scope, filter Filter) ([]Notice, error)
	Transactions(ctx context.Context, scope Scope, filter Filter) ([]Transaction, error)
	Ads(ctx context.Context, scope Scope, filter Filter) ([]Ad, error)
	Wallet(ctx context.Context, scope Scope) (Wallet, error)
	WalletTransactions(ctx context.Context, scope Scope, filter Filter) ([]WalletTransaction, error)
}

// Snapshot is an immutable set of collections read for one report.
type Snapshot struct {
	Buildings          []Building          `json:"buildings,omitempty"`
	Units              []Unit              `json:"units,omitempty"`
	Tenants            []Tenant            `json:"tenants,omitempty"`
	Inquiries          []Inquiry           `json:"inquiries,omitempty"`
	Notices            []Notice            `json:"notices,omitempty"`
	Transactions       []Transaction       `json:"transactions,omitempty"`
	Ads                []Ad                `json:"ads,omitempty"`
	Wallet             Wallet              `json:"wallet"`
	WalletTransactions []WalletTransaction `json:"wallet_transactions,omitempty"`
}

// Collection is the result of a single kind-tagged fetch; only the field
// matching Kind is populated.
type Collection struct {
	Kind Kind
	Snapshot
}

// Len returns the number of records in the collection.
func (c Collection) Len() int {
	switch c.Kind {
	case KindBuilding:
		return len(c.Buildings)
	case KindUnit:
		return len(c.Units)
	case KindTenant:
		return len(c.Tenants)
	case KindInquiry:
		return len(c.Inquiries)
	case KindNotice:
		return len(c.Notices)
	case KindTransaction:
		return len(c.Transactions)
	case KindAd:
		return len(c.Ads)
	case KindWallet:
		return 1
	case KindWalletTransaction:
		return len(c.WalletTransactions)
	default:
		return 0
	}
}

// Fetch reads one kind of collection for scope.
func Fetch(ctx context.Context, src Source, kind Kind, scope Scope, filter Filter) (Collection, error) {
	if err := scope.Validate(); err != nil {
		return Collection{}, err
	}
	if err := filter.Range.Validate(); err != nil {
		return Collection{}, err
	}
	out := Collection{Kind: kind}
	var err error
	switch kind {
	case KindBuilding:
		out.Buildings, err = src.Buildings(ctx, scope, filter)
	case KindUnit:
		out.Units, err = src.Units(ctx, scope, filter)
	case KindTenant:
		out.Tenants, err = src.Tenants(ctx, scope, filter)
	case KindInquiry:
		out.Inquiries, err = src.Inquiries(ctx, scope, filter)
	case KindNotice:
		out.Notices, err = src.Notices(ctx, scope, filter)
	case KindTransaction:
		out.Transactions, err = src.Transactions(ctx, scope, filter)
	case KindAd:
		out.Ads, err = src.Ads(ctx, scope, filter)
	case KindWallet:
		out.Wallet, err = src.Wallet(ctx, scope)
	case KindWalletTransaction:
		out.WalletTransactions, err = src.WalletTransactions(ctx, scope, filter)
	default:
		return Collection{}, fmt.Errorf("records: unknown kind %q", kind)
	}
	if err != nil {
		return Collection{}, err
	}
	return out, nil
}

// Request asks Load for one kind with its own filter.
type Request struct {
	Kind   Kind
	Filter Filter
}

// Load fetches every requested kind concurrently and waits for all of them.
// The first failure cancels the remaining fetches and no snapshot is
// returned.
func Load(ctx context.Context, src Source, scope Scope, requests ...Request) (Snapshot, error) {
	if err := scope.Validate(); err != nil {
		return Snapshot{}, err
	}
	var (
		mu   sync.Mutex
		snap Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, req := range requests {
		g.Go(func() error {
			coll, err := Fetch(gctx, src, req.Kind, scope, req.Filter)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			merge(&snap, coll)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func merge(dst *Snapshot, c Collection) {
	switch c.Kind {
	case KindBuilding:
		dst.Buildings = c.Buildings
	case KindUnit:
		dst.Units = c.Units
	case KindTenant:
		dst.Tenants = c.Tenants
	case KindInquiry:
		dst.Inquiries = c.Inquiries
	case KindNotice:
		dst.Notices = c.Notices
	case KindTransaction:
		dst.Transactions = c.Transactions
	case KindAd:
		dst.Ads = c.Ads
	case KindWallet:
		dst.Wallet = c.Wallet
	case KindWalletTransaction:
		dst.WalletTransactions = c.WalletTransactions
	}
}
