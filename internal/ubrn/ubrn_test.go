package ubrn

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ebirth/pkg/domain-errors"
)

var structuralPattern = regexp.MustCompile(`^[A-Z0-9]{2}[A-Z0-9]{2}\d{6}\d{4}\d$`)

func mustGenerate(t *testing.T, region, district string, seq int) UBRN {
	t.Helper()
	u, err := Generate(region, district, time.Now().AddDate(0, 0, -1), seq)
	require.NoError(t, err)
	return u
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	cases := []struct {
		region, district string
		seq              int
	}{
		{"GA", "01", 1},
		{"GA", "02", 42},
		{"AS", "01", 9999},
		{"SV", "01", 123},
		{"ga", "01", 7}, // lowercase region normalized
	}
	for _, tc := range cases {
		u := mustGenerate(t, tc.region, tc.district, tc.seq)
		assert.Len(t, string(u), Length)
		assert.Regexp(t, structuralPattern, string(u))
		assert.NoError(t, Verify(string(u)), "ubrn %s", u)
	}
}

func TestGenerateRejectsBadComponents(t *testing.T) {
	yesterday := time.Now().AddDate(0, 0, -1)

	_, err := Generate("ZZ", "01", yesterday, 1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = Generate("GA", "77", yesterday, 1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = Generate("GA", "01", time.Now().AddDate(0, 0, 2), 1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	for _, seq := range []int{0, -1, SequenceMax + 1} {
		_, err = Generate("GA", "01", yesterday, seq)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "seq %d", seq)
	}
}

func TestVerifyMalformed(t *testing.T) {
	kindOf := func(err error) ErrorKind {
		var ue *Error
		require.ErrorAs(t, err, &ue)
		return ue.Kind
	}

	assert.Equal(t, MalformedLength, kindOf(Verify("GA01")))
	assert.Equal(t, MalformedLength, kindOf(Verify("")))
	assert.Equal(t, MalformedLength, kindOf(Verify("GA01250810000170")))

	// non-alphanumeric region pair
	assert.Equal(t, MalformedStructure, kindOf(Verify("G-0125081000017")))
	// letters in the numeric tail
	assert.Equal(t, MalformedStructure, kindOf(Verify("GA01A5081000017")))
	// month 13 is not a real calendar date
	assert.Equal(t, MalformedStructure, kindOf(Verify("GA01251301000170"[:15])))
}

func TestVerifyChecksumMismatch(t *testing.T) {
	u := string(mustGenerate(t, "GA", "01", 17))
	last := u[Length-1]
	tampered := u[:Length-1] + string((last-'0'+1)%10+'0')

	err := Verify(tampered)
	var ue *Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, ChecksumMismatch, ue.Kind)
}

func TestVerifyAcceptsLowerCaseAndWhitespace(t *testing.T) {
	u := string(mustGenerate(t, "GA", "01", 5))
	lowered := "  " + string([]byte{u[0] + 'a' - 'A', u[1] + 'a' - 'A'}) + u[2:] + " "
	assert.NoError(t, Verify(lowered))
}

// TestChecksumMutationSensitivity flips a single payload character at random
// and expects the checksum to catch the large majority of substitutions.
func TestChecksumMutationSensitivity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	u := string(mustGenerate(t, "AS", "02", 4821))

	const alnum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	const digits = "0123456789"
	const mutations = 20

	caught := 0
	for range mutations {
		pos := rng.Intn(payloadLength)
		pool := digits
		if pos < 4 {
			pool = alnum
		}
		replacement := pool[rng.Intn(len(pool))]
		for replacement == u[pos] {
			replacement = pool[rng.Intn(len(pool))]
		}
		mutated := u[:pos] + string(replacement) + u[pos+1:]
		if err := Verify(mutated); err != nil {
			caught++
		}
	}
	assert.Greater(t, caught, mutations/2, "checksum caught %d of %d single-character mutations", caught, mutations)
}
