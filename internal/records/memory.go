package records

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory is an in-process Source holding one snapshot per scope. It applies
// filters the same way the Postgres repository does.
type Memory struct {
	mu   sync.RWMutex
	data map[Scope]Snapshot
}

var _ Source = (*Memory)(nil)

// NewMemory returns an empty in-memory source.
func NewMemory() *Memory {
	return &Memory{data: make(map[Scope]Snapshot)}
}

// Put replaces the records held for scope.
func (m *Memory) Put(scope Scope, snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[scope] = snap
}

func (m *Memory) get(ctx context.Context, scope Scope) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	if err := scope.Validate(); err != nil {
		return Snapshot{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[scope], nil
}

func apply[T any](items []T, filter Filter, status func(T) string, date func(T) time.Time) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if len(filter.Statuses) > 0 && status != nil && !slices.Contains(filter.Statuses, status(item)) {
			continue
		}
		if !filter.Range.Contains(date(item)) {
			continue
		}
		out = append(out, item)
	}
	slices.SortStableFunc(out, func(a, b T) int {
		c := date(a).Compare(date(b))
		if filter.NewestFirst {
			return -c
		}
		return c
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out
}

// Buildings implements Source.
func (m *Memory) Buildings(ctx context.Context, scope Scope, filter Filter) ([]Building, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Buildings, filter, nil, func(b Building) time.Time { return b.CreatedAt }), nil
}

// Units implements Source.
func (m *Memory) Units(ctx context.Context, scope Scope, filter Filter) ([]Unit, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Units, filter, func(u Unit) string { return u.Status }, func(u Unit) time.Time { return u.CreatedAt }), nil
}

// Tenants implements Source.
func (m *Memory) Tenants(ctx context.Context, scope Scope, filter Filter) ([]Tenant, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Tenants, filter, func(t Tenant) string { return t.Status }, func(t Tenant) time.Time { return t.CreatedAt }), nil
}

// Inquiries implements Source.
func (m *Memory) Inquiries(ctx context.Context, scope Scope, filter Filter) ([]Inquiry, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Inquiries, filter, func(i Inquiry) string { return i.Status }, func(i Inquiry) time.Time { return i.CreatedAt }), nil
}

// Notices implements Source.
func (m *Memory) Notices(ctx context.Context, scope Scope, filter Filter) ([]Notice, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Notices, filter, func(n Notice) string { return n.Status }, func(n Notice) time.Time { return n.DateIssued }), nil
}

// Transactions implements Source.
func (m *Memory) Transactions(ctx context.Context, scope Scope, filter Filter) ([]Transaction, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Transactions, filter, func(t Transaction) string { return t.Status }, func(t Transaction) time.Time { return t.Date }), nil
}

// Ads implements Source.
func (m *Memory) Ads(ctx context.Context, scope Scope, filter Filter) ([]Ad, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.Ads, filter, func(a Ad) string { return a.Status }, func(a Ad) time.Time { return a.CreatedAt }), nil
}

// Wallet implements Source.
func (m *Memory) Wallet(ctx context.Context, scope Scope) (Wallet, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return Wallet{}, err
	}
	return snap.Wallet, nil
}

// WalletTransactions implements Source.
func (m *Memory) WalletTransactions(ctx context.Context, scope Scope, filter Filter) ([]WalletTransaction, error) {
	snap, err := m.get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return apply(snap.WalletTransactions, filter, func(t WalletTransaction) string { return t.Status }, func(t WalletTransaction) time.Time { return t.CreatedAt }), nil
}
