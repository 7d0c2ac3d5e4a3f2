package amount

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"0.2", 9, "200000000"},
		{".5", 9, "500000000"},
		{"1.0", 9, "1000000000"},
		{"0.000000001", 9, "1"},
		{"+1.5", 9, "1500000000"},
		{" 2 ", 6, "2000000"},
		{"100", 0, "100"},
		{"0.123456789123", 9, "123456789"}, // extra precision truncated, not rounded
		{"3", 9, "3000000000"},
		{"0.15", 2, "15"},
	}

	for _, tc := range cases {
		got, err := ToBaseUnits(tc.in, tc.decimals)
		require.NoError(t, err, "ToBaseUnits(%q, %d)", tc.in, tc.decimals)
		assert.Equal(t, tc.want, got, "ToBaseUnits(%q, %d)", tc.in, tc.decimals)
	}
}

func TestToBaseUnitsRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "-1", "-0.5", "1.2.3", "abc", "1e9", "1,5"} {
		_, err := ToBaseUnits(in, 9)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestToBaseUnitsTooSmall(t *testing.T) {
	for _, in := range []string{"0", "0.0", "0.0000000001", ".000000000004", "."} {
		_, err := ToBaseUnits(in, 9)
		assert.ErrorIs(t, err, ErrAmountTooSmall, "input %q", in)
	}

	// The same fraction is representable with more decimals.
	got, err := ToBaseUnits("0.0000000001", 10)
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestToBaseUnitsNeverNegative(t *testing.T) {
	inputs := []string{"0.2", ".5", "1.0", "123.456", "+7", "0.000001"}
	for _, in := range inputs {
		got, err := ToBaseUnits(in, 9)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(got, "-"), "result %q for input %q", got, in)
		for _, r := range got {
			assert.True(t, r >= '0' && r <= '9', "non-digit in %q", got)
		}
	}
}

func TestFromBaseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals int
		want     string
	}{
		{"1500000000", 9, "1.50"},
		{"1000000000", 9, "1.00"},
		{"123456789", 9, "0.12345678"}, // capped at 8 display digits, truncated
		{"1", 9, "0.00"},               // below display precision
		{"250000", 6, "0.25"},
		{"42", 0, "42"},
		{"1050000000", 9, "1.05"},
	}

	for _, tc := range cases {
		got, err := FromBaseUnits(tc.in, tc.decimals)
		require.NoError(t, err, "FromBaseUnits(%q, %d)", tc.in, tc.decimals)
		assert.Equal(t, tc.want, got, "FromBaseUnits(%q, %d)", tc.in, tc.decimals)
	}
}

func TestFromBaseUnitsRejectsNonDigits(t *testing.T) {
	for _, in := range []string{"", "-5", "1.5", "12a"} {
		_, err := FromBaseUnits(in, 9)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestConversionOneWay(t *testing.T) {
	// Conversion is deliberately asymmetric: truncation in, display trimming
	// out. Check the one-way properties rather than full round-trips.
	base, err := ToBaseUnits("1.5", 9)
	require.NoError(t, err)
	display, err := FromBaseUnits(base, 9)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(display, "1.5"), "display %q", display)

	base, err = ToBaseUnits("0.25", 6)
	require.NoError(t, err)
	display, err = FromBaseUnits(base, 6)
	require.NoError(t, err)
	assert.Equal(t, "0.25", display)
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "0.00001234", FormatUSD(0.0000123456))
	assert.Equal(t, "0.001234", FormatUSD(0.00123456))
	assert.Equal(t, "1,234.5678", FormatUSD(1234.56789))
	assert.Equal(t, "12", FormatUSD(12))
	assert.NotContains(t, FormatUSD(0.000000012), "e")
	assert.NotContains(t, FormatUSD(0.000000012), "E")
}

func TestFormatReference(t *testing.T) {
	assert.Equal(t, "0.00000123", FormatReference(0.00000123))
	assert.Equal(t, "2.5", FormatReference(2.5))
	assert.Equal(t, "1,000,000", FormatReference(1000000))
}
