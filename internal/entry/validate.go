// Package entry validates, normalizes and submits manual ledger entries.
package entry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/trackwise/trackwise-go/internal/api"
)

// ValidationCode identifies which local check rejected a draft.
type ValidationCode int

const (
	// AmountRequired: the amount field is empty.
	AmountRequired ValidationCode = iota
	// DateRequired: year, month or day is missing, or they do not form a
	// real calendar date.
	DateRequired
	// DescriptionRequired: the description is empty after trimming.
	DescriptionRequired
	// AmountInvalid: the amount does not parse as a non-negative finite
	// number.
	AmountInvalid
)

// ValidationError is a local, pre-network rejection of a draft. It never
// corresponds to a request; drafts failing validation are never submitted.
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case AmountRequired:
		return "Amount is required"
	case DateRequired:
		return "Complete date is required"
	case DescriptionRequired:
		return "Description is required"
	case AmountInvalid:
		return "Amount must be a valid non-negative number"
	default:
		return "Invalid entry"
	}
}

// Draft holds the raw, still-unvalidated form fields for one manual entry.
// Date parts are kept separate the way the entry form collects them.
type Draft struct {
	Type        string
	Amount      string
	Year        string
	Month       string
	Day         string
	Category    string
	Description string
	Vendor      string
}

// Normalize validates a draft and builds the submission payload. Checks run
// in field-priority order and the first failure wins; the returned error is
// always a *ValidationError.
//
// Category is deliberately not required: an empty category is forwarded
// as-is, matching the permissive backend contract.
func Normalize(d Draft) (api.EntryPayload, error) {
	if d.Amount == "" {
		return api.EntryPayload{}, &ValidationError{Code: AmountRequired}
	}
	if d.Year == "" || d.Month == "" || d.Day == "" {
		return api.EntryPayload{}, &ValidationError{Code: DateRequired}
	}
	date, err := normalizeDate(d.Year, d.Month, d.Day)
	if err != nil {
		return api.EntryPayload{}, &ValidationError{Code: DateRequired}
	}
	if strings.TrimSpace(d.Description) == "" {
		return api.EntryPayload{}, &ValidationError{Code: DescriptionRequired}
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(d.Amount), 64)
	if err != nil || amount < 0 || math.IsInf(amount, 0) || math.IsNaN(amount) {
		return api.EntryPayload{}, &ValidationError{Code: AmountInvalid}
	}

	return api.EntryPayload{
		Type:        d.Type,
		Amount:      amount,
		Date:        date,
		Category:    d.Category,
		Description: d.Description,
		Vendor:      d.Vendor,
	}, nil
}

// normalizeDate turns separate year/month/day strings into a zero-padded
// YYYY-MM-DD string, rejecting combinations that are not real dates.
func normalizeDate(yearStr, monthStr, dayStr string) (string, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return "", fmt.Errorf("invalid year %q: %w", yearStr, err)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: %w", monthStr, err)
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", dayStr, err)
	}

	if year < 1 || year > 9999 || month < 1 || month > 12 || day < 1 || day > 31 {
		return "", fmt.Errorf("date %d-%d-%d out of range", year, month, day)
	}

	// time.Date normalizes overflow (Feb 30 becomes Mar 2); a changed
	// component means the input was not a real date.
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Year() != year || parsed.Month() != time.Month(month) || parsed.Day() != day {
		return "", fmt.Errorf("date %d-%d-%d does not exist", year, month, day)
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}
