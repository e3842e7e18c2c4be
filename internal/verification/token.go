package verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// proofTTL bounds how long a verified phone stays provable without
// re-verification.
const proofTTL = 30 * time.Minute

var ErrInvalidProof = errors.New("phone verification proof is invalid")

type ProofClaims struct {
	Phone string `json:"phone"`
	jwt.RegisteredClaims
}

// ProofIssuer mints and checks signed proof tokens. A successful Verify
// hands the client a token; the checkout gate later presents it instead of
// re-reading verification state.
type ProofIssuer struct {
	secret []byte
}

func NewProofIssuer(secret string) *ProofIssuer {
	return &ProofIssuer{secret: []byte(secret)}
}

func (p *ProofIssuer) Issue(phone string) (string, error) {
	claims := ProofClaims{
		Phone: phone,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(proofTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Check validates the token signature, expiry and phone binding.
func (p *ProofIssuer) Check(tokenStr, phone string) error {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&ProofClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return p.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return ErrInvalidProof
	}

	claims, ok := token.Claims.(*ProofClaims)
	if !ok || claims.Phone != phone {
		return ErrInvalidProof
	}

	return nil
}
