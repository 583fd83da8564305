package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1234,56", "1234.56"},
		{"1234.56", "1234.56"},
		{"12,34", "12.34"},
		{"1.234.567,89", "1234567.89"},
		{"1,234,567.89", "1234567.89"},
		{"450.00", "450.00"},
		{"S/ 450.00", "450.00"},
		{"0.10", "0.10"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "sin monto", ".,", "S/."} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseAmount(in)
			assert.Error(t, err)
		})
	}
}

// Parsing a formatted value must round-trip unchanged.
func TestParseAmountIdempotent(t *testing.T) {
	for _, in := range []string{"1.234,56", "1234,56", "12,34", "999.99", "0.01"} {
		t.Run(in, func(t *testing.T) {
			once, err := ParseAmount(in)
			require.NoError(t, err)
			twice, err := ParseAmount(FormatAmount(once))
			require.NoError(t, err)
			assert.True(t, once.Equal(twice),
				"got %s then %s", FormatAmount(once), FormatAmount(twice))
		})
	}
}
