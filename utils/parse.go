package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOptionalTime parses an ISO date or timestamp. A nil or blank input
// yields nil so callers can leave the column untouched.
func ParseOptionalTime(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	raw := strings.TrimSpace(*value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, NewValidationError("INVALID_DATE", fmt.Sprintf("invalid %s: %q", field, raw))
}

// ParseCardExpiry turns "MM/YY" (or "MM/YYYY") into the first day of that
// month in UTC. Blank input yields nil.
func ParseCardExpiry(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return nil, NewValidationError("INVALID_CARD_EXPIRY", fmt.Sprintf("invalid card expiry %q, expected MM/YY", value))
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || month < 1 || month > 12 {
		return nil, NewValidationError("INVALID_CARD_EXPIRY", fmt.Sprintf("invalid card expiry month in %q", value))
	}
	yearText := strings.TrimSpace(parts[1])
	year, err := strconv.Atoi(yearText)
	if err != nil || (len(yearText) != 2 && len(yearText) != 4) {
		return nil, NewValidationError("INVALID_CARD_EXPIRY", fmt.Sprintf("invalid card expiry year in %q", value))
	}
	if len(yearText) == 2 {
		year += 2000
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return &t, nil
}

// CardLast4 keeps the last four digits of a card number
func CardLast4(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return string(digits[len(digits)-4:])
}

// StringPtr returns nil for blank strings
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FirstNonEmpty returns the first argument that is not blank
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
