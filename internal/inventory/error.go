package inventory

import (
	"errors"
	"fmt"
)

var ErrReservationConflict = errors.New("stock reservation conflict, retries exhausted")

// InsufficientStockError names the product that could not be reserved so the
// buyer can adjust the quantity.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
		e.Name, e.Requested, e.Available)
}

// ProductNotFoundError indicates a cart line references a product that no
// longer exists.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ProductID)
}
