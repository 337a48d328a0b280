package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/branchdesk/branchdesk-api/pkg/textnorm"
)

// PhonePrefix is prepended to the 9 local digits before storing.
const PhonePrefix = "+420"

var phoneDigits = regexp.MustCompile(`^\d{9}$`)

// NormalizePhone accepts exactly nine digits and returns them with the country prefix.
func NormalizePhone(field, raw string) (string, error) {
	digits := strings.TrimSpace(raw)
	if !phoneDigits.MatchString(digits) {
		return "", Invalid(field, "phone must be exactly 9 digits")
	}
	return PhonePrefix + digits, nil
}

// LocalPhone strips the country prefix again for edit forms.
func LocalPhone(stored string) string {
	return strings.TrimPrefix(stored, PhonePrefix)
}

// RequiredText cleans s and rejects it when empty or longer than max characters.
func RequiredText(field, s string, max int) (string, error) {
	v := textnorm.Clean(s)
	if v == "" {
		return "", Invalid(field, "is required")
	}
	if textnorm.Len(v) > max {
		return "", Invalid(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v, nil
}

// OptionalText cleans s and rejects it only when longer than max characters.
func OptionalText(field, s string, max int) (string, error) {
	v := textnorm.Clean(s)
	if textnorm.Len(v) > max {
		return "", Invalid(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v, nil
}

// RequiredDate rejects the zero time.
func RequiredDate(field string, d time.Time) error {
	if d.IsZero() {
		return Invalid(field, "is required")
	}
	return nil
}
