package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"zaqeen-be/internal/order"
	"zaqeen-be/internal/settings"
)

var (
	phoneRegex = regexp.MustCompile(`^(?:\+88|01)?\d{11}$`)
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// addressDenylist catches synthetic-test addresses that real buyers never
// type. Matching is case-insensitive on whole substrings.
var addressDenylist = []string{
	"test",
	"asdf",
	"fake",
	"demo",
	"dummy",
	"xxx",
}

const minAddressLen = 10

// Validate checks the delivery fields and the computed total against the
// settings snapshot. It returns a field → message map and performs no side
// effects; checkout cannot advance while the map is non-empty.
func Validate(info order.DeliveryInfo, total decimal.Decimal, s *settings.SiteSettings) map[string]string {
	errs := make(map[string]string)

	if utf8.RuneCountInString(strings.TrimSpace(info.Name)) < 3 {
		errs["name"] = "name must be at least 3 characters"
	}

	if !phoneRegex.MatchString(sanitizePhone(info.Phone)) {
		errs["phone"] = "enter a valid Bangladeshi phone number"
	}

	if !emailRegex.MatchString(strings.TrimSpace(info.Email)) {
		errs["email"] = "enter a valid email address"
	}

	if msg := validateAddress(info.Address); msg != "" {
		errs["address"] = msg
	}

	if strings.TrimSpace(info.City) == "" {
		errs["city"] = "city is required"
	}

	if total.LessThan(s.MinOrderAmount) {
		errs["total"] = "order amount is below the minimum of " + s.MinOrderAmount.String()
	}

	return errs
}

// sanitizePhone drops separators but keeps a leading plus so the country
// prefix still matches.
func sanitizePhone(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validateAddress(address string) string {
	trimmed := strings.TrimSpace(address)
	if utf8.RuneCountInString(trimmed) <= minAddressLen {
		return "address is too short"
	}

	lower := strings.ToLower(trimmed)
	for _, banned := range addressDenylist {
		if strings.Contains(lower, banned) {
			return "enter a real delivery address"
		}
	}

	return ""
}
