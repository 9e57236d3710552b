package entity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"millions suffix", "12m", 12_000_000},
		{"thousands suffix", "10k", 10_000},
		{"fractional billions", "1.5b", 1_500_000_000},
		{"comma separated", "1,200,000", 1_200_000},
		{"plain integer", "1200000", 1_200_000},
		{"upper case suffix", "3K", 3_000},
		{"surrounding whitespace", "  7m ", 7_000_000},
		{"leading dot", ".5k", 500},
		{"fraction truncated", "1.9", 1},
		{"fraction after suffix", "0.0015k", 1},
		{"inner spaces", "1 200", 1_200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"zero", "0", ErrNonPositiveAmount},
		{"zero with suffix", "0k", ErrNonPositiveAmount},
		{"truncates to zero", "0.4", ErrNonPositiveAmount},
		{"letters", "abc", ErrInvalidFormat},
		{"negative", "-5", ErrInvalidFormat},
		{"unknown suffix", "5x", ErrInvalidFormat},
		{"double suffix", "5kk", ErrInvalidFormat},
		{"trailing dot", "5.", ErrInvalidFormat},
		{"empty", "", ErrInvalidFormat},
		{"overflow", "99999999999b", ErrAmountOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseAmount_Pure(t *testing.T) {
	first, err := ParseAmount("2.25m")
	require.NoError(t, err)
	second, err := ParseAmount("2.25m")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(2_250_000), first)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1", FormatAmount(1))
	assert.Equal(t, "999", FormatAmount(999))
	assert.Equal(t, "1,000", FormatAmount(1000))
	assert.Equal(t, "1,500,000,000", FormatAmount(1_500_000_000))
	assert.Equal(t, "-12,345", FormatAmount(-12345))
	assert.Equal(t, "9,223,372,036,854,775,807", FormatAmount(math.MaxInt64))
}
