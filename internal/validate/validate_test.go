package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

func TestName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		kind Kind
	}{
		{"plain", "Ama Mensah", "Ama Mensah", ""},
		{"trims whitespace", "  Ama Mensah  ", "Ama Mensah", ""},
		{"hyphen and apostrophe", "N'guessan Kouassi-Brou", "N'guessan Kouassi-Brou", ""},
		{"empty", "", "", InvalidName},
		{"single letter", "A", "", InvalidName},
		{"digits", "Ama 2nd", "", InvalidName},
		{"too long", strings.Repeat("a", 61), "", InvalidName},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Name(tc.in)
			if tc.kind == "" {
				require.Nil(t, err)
				assert.Equal(t, tc.want, got)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tc.kind, err.Kind)
		})
	}
}

func TestDateOfBirth(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dob, err := DateOfBirth("1995-03-10", now)
		require.Nil(t, err)
		assert.Equal(t, time.Date(1995, 3, 10, 0, 0, 0, 0, time.UTC), dob)
	})

	t.Run("today is allowed", func(t *testing.T) {
		_, err := DateOfBirth("2026-08-23", now)
		require.Nil(t, err)
	})

	t.Run("unparsable", func(t *testing.T) {
		for _, in := range []string{"10/03/1995", "1995-13-01", "1995-02-30", "yesterday", ""} {
			_, err := DateOfBirth(in, now)
			require.NotNil(t, err, "input %q", in)
			assert.Equal(t, UnparsableDate, err.Kind)
		}
	})

	t.Run("future", func(t *testing.T) {
		_, err := DateOfBirth("2026-08-24", now)
		require.NotNil(t, err)
		assert.Equal(t, FutureDate, err.Kind)
	})

	t.Run("implausible", func(t *testing.T) {
		_, err := DateOfBirth("1900-01-01", now)
		require.NotNil(t, err)
		assert.Equal(t, ImplausibleDate, err.Kind)
	})
}

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0241234567", "+233241234567", true},
		{"024 123 4567", "+233241234567", true},
		{"024-123-4567", "+233241234567", true},
		{"+233241234567", "+233241234567", true},
		{"233551234567", "+233551234567", true},
		{"0551234567", "+233551234567", true},
		{"024123456", "", false},   // too short
		{"02412345678", "", false}, // too long
		{"1241234567", "", false},  // no leading zero
		{"0341234567", "", false},  // landline prefix
		{"", "", false},
	}
	for _, tc := range tests {
		got, err := Phone(tc.in)
		if tc.ok {
			require.Nil(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			require.NotNil(t, err, "input %q", tc.in)
			assert.Equal(t, InvalidPhone, err.Kind)
		}
	}
}

func TestNIN(t *testing.T) {
	got, err := NIN("gha-123456789-0")
	require.Nil(t, err)
	assert.Equal(t, "GHA-123456789-0", got)

	got, err = NIN("GHA-987654321-X")
	require.Nil(t, err)
	assert.Equal(t, "GHA-987654321-X", got)

	for _, in := range []string{"", "GHA-12345678-0", "GHA-1234567890", "ABC-123456789-0", "GHA-123456789-!"} {
		_, err := NIN(in)
		require.NotNil(t, err, "input %q", in)
		assert.Equal(t, InvalidNIN, err.Kind)
	}
}

func TestPlace(t *testing.T) {
	d, err := Place("Accra")
	require.Nil(t, err)
	assert.Equal(t, "GA", d.RegionCode)
	assert.Equal(t, "01", d.Code)

	_, err = Place("Nowhere")
	require.NotNil(t, err)
	assert.Equal(t, UnknownAdminCode, err.Kind)
}

func TestAdminCodes(t *testing.T) {
	assert.Nil(t, AdminCodes("GA", "01"))

	err := AdminCodes("ZZ", "01")
	require.NotNil(t, err)
	assert.Equal(t, UnknownAdminCode, err.Kind)

	err = AdminCodes("GA", "77")
	require.NotNil(t, err)
	assert.Equal(t, UnknownAdminCode, err.Kind)
}

func TestMenuChoice(t *testing.T) {
	got, err := MenuChoice(" 2 ", "1", "2")
	require.Nil(t, err)
	assert.Equal(t, "2", got)

	_, err = MenuChoice("3", "1", "2")
	require.NotNil(t, err)
	assert.Equal(t, InvalidMenuChoice, err.Kind)
}

func TestHealthWorkerID(t *testing.T) {
	got, err := HealthWorkerID("123456")
	require.Nil(t, err)
	assert.Equal(t, "123456", got)

	for _, in := range []string{"", "12345", "1234567", "12345a"} {
		_, err := HealthWorkerID(in)
		require.NotNil(t, err, "input %q", in)
		assert.Equal(t, InvalidHealthWorkerID, err.Kind)
	}
}
