// Package ubrn generates and verifies Unique Birth Registration Numbers.
//
// A UBRN is fifteen characters: REGION(2) DISTRICT(2) YYMMDD(6) SEQ(4)
// CHECK(1). The check digit is a weighted positional checksum over the first
// fourteen characters, so a mistyped number can be rejected locally before
// the registration store is ever consulted.
package ubrn

import (
	"fmt"
	"strings"
	"time"

	"ebirth/internal/validate"
	dErrors "ebirth/pkg/domain-errors"
)

// UBRN is a verified-format birth registration number.
type UBRN string

func (u UBRN) String() string { return string(u) }

const (
	// Length is the full UBRN length including the check digit.
	Length = 15

	payloadLength = 14
	dateLayout    = "060102"

	// SequenceMax is the last sequence number a district may issue per day.
	SequenceMax = 9999
)

// ErrorKind classifies a verification failure.
type ErrorKind string

const (
	MalformedLength    ErrorKind = "malformed_length"
	MalformedStructure ErrorKind = "malformed_structure"
	ChecksumMismatch   ErrorKind = "checksum_mismatch"
)

// Error is a structural or checksum failure from Verify.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Message }

// Generate builds a UBRN from its components. The sequence number must come
// from the registration store's allocator; this package never derives one.
func Generate(regionCode, districtCode string, date time.Time, sequence int) (UBRN, error) {
	regionCode = strings.ToUpper(strings.TrimSpace(regionCode))
	districtCode = strings.TrimSpace(districtCode)
	if err := validate.AdminCodes(regionCode, districtCode); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, err.Message)
	}
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.After(today) {
		return "", dErrors.New(dErrors.CodeInvalidInput, "registration date cannot be in the future")
	}
	if sequence < 1 || sequence > SequenceMax {
		return "", dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("sequence %d outside 1-%d", sequence, SequenceMax))
	}

	payload := regionCode + districtCode + day.Format(dateLayout) + fmt.Sprintf("%04d", sequence)
	check, ok := checkDigit(payload)
	if !ok {
		// Unreachable with table-validated codes; guards future table edits.
		return "", dErrors.New(dErrors.CodeInvariantViolation, "payload contains non-alphanumeric character")
	}
	return UBRN(fmt.Sprintf("%s%d", payload, check)), nil
}

// Verify checks a candidate UBRN for structural validity and checksum
// agreement. It performs no store lookups.
func Verify(candidate string) error {
	c := strings.ToUpper(strings.TrimSpace(candidate))
	if len(c) != Length {
		return &Error{Kind: MalformedLength, Message: fmt.Sprintf("UBRN must be %d characters", Length)}
	}
	for _, r := range c[:4] {
		if !isAlnum(byte(r)) {
			return &Error{Kind: MalformedStructure, Message: "region and district must be alphanumeric"}
		}
	}
	for i := 4; i < Length; i++ {
		if c[i] < '0' || c[i] > '9' {
			return &Error{Kind: MalformedStructure, Message: "date, sequence and check digit must be numeric"}
		}
	}
	if _, err := time.Parse(dateLayout, c[4:10]); err != nil {
		return &Error{Kind: MalformedStructure, Message: "date segment is not a real calendar date"}
	}

	want, _ := checkDigit(c[:payloadLength])
	if got := int(c[payloadLength] - '0'); got != want {
		return &Error{Kind: ChecksumMismatch, Message: "check digit does not match"}
	}
	return nil
}

// checkDigit computes the weighted positional checksum: character values
// 0-9 for digits and 10-35 for A-Z, multiplied by weights cycling 1..7 by
// position, summed and reduced modulo 10.
func checkDigit(payload string) (int, bool) {
	sum := 0
	for i := 0; i < len(payload); i++ {
		v := charValue(payload[i])
		if v < 0 {
			return 0, false
		}
		weight := i%7 + 1
		sum += v * weight
	}
	return sum % 10, true
}

func charValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	default:
		return -1
	}
}

func isAlnum(c byte) bool { return charValue(c) >= 0 }
