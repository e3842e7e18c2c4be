package checkout

import "errors"

// ErrPhoneUnverified is returned when the store requires OTP verification
// and the request carries no valid proof for the delivery phone.
var ErrPhoneUnverified = errors.New("phone number is not verified")

// ValidationError carries the per-field problems found by the validation
// gate. The buyer can correct the fields and resubmit.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed"
}

// PersistenceError wraps a failure that happened after stock was already
// reserved. The reservation stays locked until the sweep reclaims it.
type PersistenceError struct {
	ReservationID string
	Err           error
}

func (e *PersistenceError) Error() string {
	return "order could not be saved: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
