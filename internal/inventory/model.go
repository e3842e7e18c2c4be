package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            string
	Name          string
	Price         decimal.Decimal
	Stock         int
	LockedStock   int
	LockExpiresAt *time.Time
}

// ReservationItem is one cart line to reserve.
type ReservationItem struct {
	ProductID    string
	Quantity     int
	SelectedSize *string
}

// Snapshot is the product state read inside the reservation transaction.
// The checkout pipeline freezes these values onto the order so later
// catalog edits cannot change what the buyer pays.
type Snapshot struct {
	ProductID    string
	Name         string
	UnitPrice    decimal.Decimal
	Quantity     int
	SelectedSize *string
}

// LockTTL is how long a reservation holds stock before the sweep may
// reclaim it.
const LockTTL = 30 * time.Minute
