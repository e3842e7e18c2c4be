package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const idPrefix = "ZQN"

// NewOrderID builds an id from a millisecond timestamp and a 4-digit
// cryptographic random suffix. Collisions are improbable but not impossible;
// the persister retries with a fresh id on a write conflict instead of
// assuming uniqueness.
func NewOrderID() string {
	millis := time.Now().UnixMilli()

	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(time.Now().UnixNano() % 10000)
	}

	return fmt.Sprintf("%s-%d-%04d", idPrefix, millis, n.Int64())
}
