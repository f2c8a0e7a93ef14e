package mpesa

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("mpesa: invalid phone number")

// Kenyan mobile numbers: optional 254/+254/0 prefix, then a 7xx or 1xx block.
var phonePattern = regexp.MustCompile(`^(?:\+?254|0)?[17]\d{8}$`)

// ValidPhone reports whether raw is a Kenyan mobile number in local,
// international or plus-prefixed form. Separators are ignored.
func ValidPhone(raw string) bool {
	return phonePattern.MatchString(stripSeparators(raw))
}

// NormalizePhone converts any accepted input form ("0712...", "712...",
// "254712...", "+254712...") to the single canonical wire form "254712...".
func NormalizePhone(raw string) (string, error) {
	p := stripSeparators(raw)
	if !phonePattern.MatchString(p) {
		return "", ErrInvalidPhone
	}

	p = strings.TrimPrefix(p, "+")
	switch {
	case strings.HasPrefix(p, "254"):
		return p, nil
	case strings.HasPrefix(p, "0"):
		return "254" + p[1:], nil
	default:
		return "254" + p, nil
	}
}

func stripSeparators(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
