package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusVerified  Status = "VERIFIED"
	StatusShipped   Status = "SHIPPED"
	StatusCancelled Status = "CANCELLED"
)

const (
	// GuestUserID is stored when the buyer has no account.
	GuestUserID = "guest"
	// CODTransactionID marks cash-on-delivery orders, which carry no
	// user-supplied transaction evidence.
	CODTransactionID = "CASH_ON_DELIVERY"
)

// Order is the canonical persisted record of a successful checkout. It is
// immutable once created; admin tooling performs later status transitions.
type Order struct {
	ID           string
	UserID       string
	Items        []Item
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	CouponCode   string
	ShippingFee  decimal.Decimal
	TotalAmount  decimal.Decimal
	DeliveryInfo DeliveryInfo
	PaymentInfo  PaymentInfo
	Status       Status
	Metadata     Metadata
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item freezes the unit price at purchase time, independent of any later
// catalog price change.
type Item struct {
	ProductID       string
	Name            string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	SelectedSize    *string
}

type DeliveryInfo struct {
	Name    string
	Phone   string
	Email   string
	City    string
	Address string
	Note    *string
}

type PaymentInfo struct {
	Method        string
	TransactionID string
	Status        string
	Verified      bool
}

type Metadata struct {
	IP                string
	UserAgent         string
	DeviceFingerprint string
	BotScore          float64
	Timestamp         time.Time
}
