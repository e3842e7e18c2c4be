package order

import "errors"

var (
	ErrDuplicateID      = errors.New("order id already exists")
	ErrRetriesExhausted = errors.New("could not persist order after id retries")
)
