// Package compliance classifies compliance documents by expiration date.
package compliance

import (
	"strings"
	"time"
)

// ExpirationStatus is the classification of a document's expiration date
type ExpirationStatus string

const (
	StatusExpired      ExpirationStatus = "expired"
	StatusExpiringSoon ExpirationStatus = "expiring_soon"
	StatusValid        ExpirationStatus = "valid"
	StatusNoExpiry     ExpirationStatus = "no_expiry"
)

// ExpiringSoonWindowDays is the last day offset that still counts as expiring soon
const ExpiringSoonWindowDays = 45

// DateLayout is the calendar date format of expiration dates
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight
func ParseDate(value string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// DaysUntil returns the whole calendar days from today to date, negative when date is past
func DaysUntil(date, today time.Time) int {
	d := truncateDay(date)
	t := truncateDay(today)
	return int(d.Sub(t).Hours() / 24)
}

// Classify returns the expiration status of a document on the given day.
// A nil or unparsable expiration date means the document does not expire.
func Classify(expirationDate *string, today time.Time) ExpirationStatus {
	if expirationDate == nil {
		return StatusNoExpiry
	}
	date, ok := ParseDate(*expirationDate)
	if !ok {
		return StatusNoExpiry
	}

	days := DaysUntil(date, today)
	switch {
	case days < 0:
		return StatusExpired
	case days <= ExpiringSoonWindowDays:
		return StatusExpiringSoon
	default:
		return StatusValid
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
