package coupon

import "errors"

var (
	ErrNotFound  = errors.New("coupon not found or inactive")
	ErrExpired   = errors.New("coupon has expired")
	ErrMinSpend  = errors.New("order amount below coupon minimum spend")
	ErrExhausted = errors.New("coupon usage limit reached")
)
