// Package validate holds the pure per-field validators for caller input.
// Each validator returns the normalized value and, on failure, a FieldError
// whose message is ready to show to the caller as re-prompt guidance.
// Validators never touch storage or the network.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ebirth/internal/refdata"
)

// Kind tags a FieldError so callers can branch and count failures per field.
type Kind string

const (
	InvalidName           Kind = "invalid_name"
	UnparsableDate        Kind = "unparsable_date"
	FutureDate            Kind = "future_date"
	ImplausibleDate       Kind = "implausible_date"
	InvalidPhone          Kind = "invalid_phone"
	InvalidNIN            Kind = "invalid_nin"
	UnknownAdminCode      Kind = "unknown_admin_code"
	InvalidMenuChoice     Kind = "invalid_menu_choice"
	InvalidHealthWorkerID Kind = "invalid_health_worker_id"
)

// FieldError is a recoverable validation failure. The state machine renders
// Message and re-presents the same prompt.
type FieldError struct {
	Kind    Kind
	Message string
}

func (e *FieldError) Error() string { return string(e.Kind) + ": " + e.Message }

const (
	// DateLayout is the external date-of-birth entry format.
	DateLayout = "2006-01-02"

	maxLifespanYears = 120
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-]*$`)
	ninRe  = regexp.MustCompile(`^GHA-\d{9}-[0-9A-Z]$`)
	hwidRe = regexp.MustCompile(`^\d{6}$`)
)

// Name checks a personal name: letters, spaces, hyphens and apostrophes,
// 2-60 characters after trimming.
func Name(raw string) (string, *FieldError) {
	name := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(name)
	if n < 2 || n > 60 || !nameRe.MatchString(name) {
		return "", &FieldError{Kind: InvalidName, Message: "Invalid name. Use letters only, 2-60 characters."}
	}
	return name, nil
}

// DateOfBirth parses a YYYY-MM-DD date and rejects future or implausibly old
// dates relative to now.
func DateOfBirth(raw string, now time.Time) (time.Time, *FieldError) {
	dob, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, &FieldError{Kind: UnparsableDate, Message: "Invalid date. Use YYYY-MM-DD, e.g. 2025-01-31."}
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if dob.After(today) {
		return time.Time{}, &FieldError{Kind: FutureDate, Message: "Date of birth cannot be in the future."}
	}
	if dob.Before(today.AddDate(-maxLifespanYears, 0, 0)) {
		return time.Time{}, &FieldError{Kind: ImplausibleDate, Message: "Date of birth is too far in the past."}
	}
	return dob, nil
}

// Phone checks a Ghana mobile number and canonicalizes it to +233XXXXXXXXX.
// Accepts local 0-prefixed form and the 233 international form, with spaces
// or dashes between digits.
func Phone(raw string) (string, *FieldError) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	num := digits.String()
	if strings.HasPrefix(num, "233") && len(num) == 12 {
		num = "0" + num[3:]
	}
	if len(num) != 10 || num[0] != '0' || (num[1] != '2' && num[1] != '5') {
		return "", &FieldError{Kind: InvalidPhone, Message: "Invalid phone number. Use a 10-digit Ghana mobile number, e.g. 0241234567."}
	}
	return "+233" + num[1:], nil
}

// NIN checks a Ghana Card number (GHA-123456789-0) and uppercases it.
func NIN(raw string) (string, *FieldError) {
	nin := strings.ToUpper(strings.TrimSpace(raw))
	if !ninRe.MatchString(nin) {
		return "", &FieldError{Kind: InvalidNIN, Message: "Invalid Ghana Card number. Use the format GHA-123456789-0."}
	}
	return nin, nil
}

// Place resolves a place of birth against the closed district table.
func Place(raw string) (refdata.District, *FieldError) {
	d, ok := refdata.ResolvePlace(raw)
	if !ok {
		return refdata.District{}, &FieldError{Kind: UnknownAdminCode, Message: "Place not recognised. Enter the district or its capital town, e.g. Accra."}
	}
	return d, nil
}

// AdminCodes checks that a (region, district) code pair exists in the
// reference tables.
func AdminCodes(regionCode, districtCode string) *FieldError {
	if _, ok := refdata.RegionByCode(regionCode); !ok {
		return &FieldError{Kind: UnknownAdminCode, Message: "Unknown region code."}
	}
	if _, ok := refdata.DistrictByCode(regionCode, districtCode); !ok {
		return &FieldError{Kind: UnknownAdminCode, Message: "Unknown district code."}
	}
	return nil
}

// MenuChoice checks that the answer is one of the offered options.
func MenuChoice(raw string, offered ...string) (string, *FieldError) {
	choice := strings.TrimSpace(raw)
	for _, o := range offered {
		if choice == o {
			return choice, nil
		}
	}
	return "", &FieldError{Kind: InvalidMenuChoice, Message: "Invalid choice. Reply with one of the numbers shown."}
}

// HealthWorkerID checks a 6-digit health worker ID.
func HealthWorkerID(raw string) (string, *FieldError) {
	id := strings.TrimSpace(raw)
	if !hwidRe.MatchString(id) {
		return "", &FieldError{Kind: InvalidHealthWorkerID, Message: "Invalid Health Worker ID. Enter your 6-digit ID."}
	}
	return id, nil
}
