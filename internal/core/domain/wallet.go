package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// LedgerEntry is an append-only record funding a restaurant balance
// increment. The (RestaurantID, OrderID) pair is unique across all time.
type LedgerEntry struct {
	RestaurantID string
	OrderID      string
	Amount       decimal.Decimal
	Description  string
	CreatedAt    time.Time
}

type Wallet struct {
	RestaurantID string
	Balance      decimal.Decimal
}

// WalletCredit is the authoritative settlement confirmation returned by a
// credit call. Applied is false when the pair was already credited and the
// call was an idempotent no-op.
type WalletCredit struct {
	Entry   LedgerEntry
	Balance decimal.Decimal
	Applied bool
}
