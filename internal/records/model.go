package records

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit categories.
const (
	CategoryRent = "rent"
	CategorySale = "sale"
)

// Unit statuses. Rented and occupied are equivalent for occupancy.
const (
	UnitAvailable   = "available"
	UnitPending     = "pending"
	UnitRented      = "rented"
	UnitOccupied    = "occupied"
	UnitMaintenance = "maintenance"
)

// Tenant lease statuses.
const (
	TenantActive    = "active"
	TenantMovingOut = "moving-out"
	TenantMovedOut  = "moved-out"
)

// Tenant rent statuses.
const (
	RentCurrent = "current"
	RentLate    = "late"
)

// Inquiry statuses.
const (
	InquiryPending    = "pending"
	InquiryNew        = "new"
	InquiryInProgress = "in-progress"
	InquiryResolved   = "resolved"
)

// Notice statuses.
const (
	NoticePending   = "pending"
	NoticeDelivered = "delivered"
)

// Transaction types and statuses.
const (
	TxRevenue   = "revenue"
	TxExpense   = "expense"
	TxCompleted = "completed"
	TxPending   = "pending"
	TxCancelled = "cancelled"
)

// Ad statuses.
const (
	AdActive    = "active"
	AdPaused    = "paused"
	AdCompleted = "completed"
	AdExpired   = "expired"
)

// Wallet transaction types.
const (
	WalletDeposit    = "deposit"
	WalletWithdrawal = "withdrawal"
	WalletAdSpend    = "ad_spend"
	WalletRefund     = "refund"
	WalletBonus      = "bonus"
)

// Building is a managed property.
type Building struct {
	ID           uuid.UUID `json:"id" validate:"required"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	BuildingType string    `json:"building_type"`
	TotalUnits   int       `json:"total_units" validate:"gte=0"`
	YearBuilt    int       `json:"year_built" validate:"gte=0"`
	CreatedAt    time.Time `json:"created_at"`
}

// Unit is a listed space, either for rent or for sale.
type Unit struct {
	ID           uuid.UUID       `json:"id" validate:"required"`
	BuildingID   *uuid.UUID      `json:"building_id,omitempty"`
	Title        string          `json:"title"`
	Location     string          `json:"location"`
	Category     string          `json:"category" validate:"oneof=rent sale"`
	RentAmount   decimal.Decimal `json:"rent_amount" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gte=0"`
	Bedrooms     int             `json:"bedrooms" validate:"gte=0"`
	Bathrooms    int             `json:"bathrooms" validate:"gte=0"`
	Views        int64           `json:"views" validate:"gte=0"`
	Status       string          `json:"status" validate:"oneof=available pending rented occupied maintenance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Occupied reports whether the unit counts as occupied.
func (u Unit) Occupied() bool {
	return u.Status == UnitRented || u.Status == UnitOccupied
}

// Price returns the rent for rental units and the selling price otherwise.
func (u Unit) Price() decimal.Decimal {
	if u.Category == CategorySale {
		return u.SellingPrice
	}
	return u.RentAmount
}

// Tenant is an occupant under lease.
type Tenant struct {
	ID           uuid.UUID       `json:"id" validate:"required"`
	UnitID       *uuid.UUID      `json:"unit_id,omitempty"`
	Name         string          `json:"name"`
	Status       string          `json:"status" validate:"oneof=active moving-out moved-out"`
	RentStatus   string          `json:"rent_status" validate:"oneof=current late"`
	MonthlyRent  decimal.Decimal `json:"monthly_rent" validate:"gte=0"`
	MoveInDate   time.Time       `json:"move_in_date"`
	LeaseEndDate *time.Time      `json:"lease_end_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Inquiry is a prospect's question about a listing.
type Inquiry struct {
	ID        uuid.UUID  `json:"id" validate:"required"`
	UnitID    *uuid.UUID `json:"unit_id,omitempty"`
	Subject   string     `json:"subject"`
	Status    string     `json:"status" validate:"oneof=pending new in-progress resolved"`
	CreatedAt time.Time  `json:"created_at"`
}

// Open reports whether the inquiry still awaits a response.
func (i Inquiry) Open() bool {
	return i.Status != InquiryResolved
}

// Notice is a formal notice issued to a tenant or unit.
type Notice struct {
	ID         uuid.UUID  `json:"id" validate:"required"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	UnitID     *uuid.UUID `json:"unit_id,omitempty"`
	Type       string     `json:"type"`
	Status     string     `json:"status" validate:"oneof=pending delivered"`
	DateIssued time.Time  `json:"date_issued"`
}

// Transaction is a payment received or an expense paid.
type Transaction struct {
	ID          uuid.UUID       `json:"id" validate:"required"`
	Type        string          `json:"type" validate:"oneof=revenue expense"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
	Status      string          `json:"status" validate:"oneof=completed pending cancelled"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
}

// Completed reports whether the transaction settled.
func (t Transaction) Completed() bool {
	return t.Status == TxCompleted
}

// Ad is a paid promotion for a listing.
type Ad struct {
	ID          uuid.UUID       `json:"id" validate:"required"`
	UnitID      uuid.UUID       `json:"unit_id"`
	Title       string          `json:"title"`
	Budget      decimal.Decimal `json:"budget" validate:"gte=0"`
	Clicks      int64           `json:"clicks" validate:"gte=0"`
	Impressions int64           `json:"impressions" validate:"gte=0"`
	Conversions int64           `json:"conversions" validate:"gte=0"`
	Status      string          `json:"status" validate:"oneof=active paused completed expired"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Wallet holds the running balances of a tenant's advertising wallet.
type Wallet struct {
	ID               uuid.UUID       `json:"id"`
	Balance          decimal.Decimal `json:"balance" validate:"gte=0"`
	PendingBalance   decimal.Decimal `json:"pending_balance" validate:"gte=0"`
	TotalDeposits    decimal.Decimal `json:"total_deposits" validate:"gte=0"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals" validate:"gte=0"`
	TotalSpentOnAds  decimal.Decimal `json:"total_spent_on_ads" validate:"gte=0"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
}

// WalletTransaction is a single wallet movement.
type WalletTransaction struct {
	ID        uuid.UUID       `json:"id" validate:"required"`
	WalletID  uuid.UUID       `json:"wallet_id"`
	Type      string          `json:"type" validate:"oneof=deposit withdrawal ad_spend refund bonus"`
	Amount    decimal.Decimal `json:"amount" validate:"gte=0"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// Credit reports whether the movement adds to the balance.
func (w WalletTransaction) Credit() bool {
	return w.Type == WalletDeposit || w.Type == WalletRefund || w.Type == WalletBonus
}
