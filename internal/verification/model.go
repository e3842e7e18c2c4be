package verification

import (
	"errors"
	"time"
)

// State is the OTP progression for a phone number. Verified is terminal;
// the phone field is locked once it is reached.
type State string

const (
	StateUnverified State = "UNVERIFIED"
	StateOTPSent    State = "OTP_SENT"
	StateVerified   State = "VERIFIED"
)

// Record is the stored verification state for one phone number. The code
// itself is never stored, only its bcrypt hash.
type Record struct {
	Phone     string
	CodeHash  string
	State     State
	Attempts  int
	ExpiresAt time.Time
	UpdatedAt time.Time
}

var (
	ErrNotRequested = errors.New("no verification code requested for this phone")
	ErrCodeMismatch = errors.New("verification code does not match")
	ErrCodeExpired  = errors.New("verification code has expired")
)

// codeTTL is how long a sent code stays valid.
const codeTTL = 5 * time.Minute
