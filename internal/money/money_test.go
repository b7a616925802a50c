package money_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rechnung/internal/money"
)

func TestLineTotal(t *testing.T) {
	result, err := money.LineTotal(dec.NewFromInt(2), money.MustFromString("100.00"))
	require.NoError(t, err)
	assert.True(t, result.Equal(dec.NewFromInt(200)))
}

func TestLineTotal_FractionalQuantity(t *testing.T) {
	// 1.5 h * 90.50 = 135.75
	result, err := money.LineTotal(money.MustFromString("1.5"), money.MustFromString("90.50"))
	require.NoError(t, err)
	assert.True(t, result.Equal(money.MustFromString("135.75")))
}

func TestLineTotal_InvalidQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  string
	}{
		{"zero", "0"},
		{"negative", "-1"},
		{"negative fraction", "-0.001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := money.LineTotal(money.MustFromString(tt.qty), dec.NewFromInt(10))
			require.Error(t, err)

			var qtyErr *money.InvalidQuantityError
			require.ErrorAs(t, err, &qtyErr)
			assert.True(t, qtyErr.Quantity.Equal(money.MustFromString(tt.qty)))
		})
	}
}

func TestTaxAmount(t *testing.T) {
	tests := []struct {
		name     string
		net      string
		rate     string
		expected string
	}{
		{"19% of 200", "200.00", "19.00", "38.00"},
		{"7% of 50", "50.00", "7.00", "3.50"},
		{"0% of 100", "100.00", "0.00", "0.00"},
		{"19% of 0.01", "0.01", "19.00", "0.0019"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := money.TaxAmount(money.MustFromString(tt.net), money.MustFromString(tt.rate))
			require.NoError(t, err)
			assert.True(t, result.Equal(money.MustFromString(tt.expected)),
				"net=%s rate=%s: got %s, want %s", tt.net, tt.rate, result, tt.expected)
		})
	}
}

func TestTaxAmount_NegativeRate(t *testing.T) {
	_, err := money.TaxAmount(dec.NewFromInt(100), money.MustFromString("-7"))
	require.Error(t, err)

	var rateErr *money.InvalidRateError
	require.ErrorAs(t, err, &rateErr)
}

func TestTaxAmount_Exact(t *testing.T) {
	// The division by 100 must not truncate: 33.33 * 19 / 100 = 6.3327
	result, err := money.TaxAmount(money.MustFromString("33.33"), money.MustFromString("19.00"))
	require.NoError(t, err)
	assert.True(t, result.Equal(money.MustFromString("6.3327")))
}

func TestRoundDisplay(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"6.3327", "6.33"},
		{"6.335", "6.34"}, // half up
		{"6.334999", "6.33"},
		{"41.50", "41.5"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			result := money.RoundDisplay(money.MustFromString(tt.in))
			assert.True(t, result.Equal(money.MustFromString(tt.expected)),
				"got %s, want %s", result, tt.expected)
		})
	}
}

func TestFromString(t *testing.T) {
	d, err := money.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = money.FromString("not-a-number")
	require.Error(t, err)
}

func TestMustFromString(t *testing.T) {
	d := money.MustFromString("999.99")
	assert.True(t, d.Equal(dec.RequireFromString("999.99")))

	assert.Panics(t, func() {
		money.MustFromString("invalid")
	})
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.NewFromInt(200),
		dec.NewFromInt(300),
	}
	result := money.Sum(values)
	assert.True(t, result.Equal(dec.NewFromInt(600)))
}

func TestSum_Empty(t *testing.T) {
	result := money.Sum([]dec.Decimal{})
	assert.True(t, result.IsZero())
}

func TestIsPositive(t *testing.T) {
	assert.True(t, money.IsPositive(dec.NewFromInt(1)))
	assert.False(t, money.IsPositive(dec.Zero))
	assert.False(t, money.IsPositive(dec.NewFromInt(-1)))
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, money.IsNonNegative(dec.NewFromInt(1)))
	assert.True(t, money.IsNonNegative(dec.Zero))
	assert.False(t, money.IsNonNegative(dec.NewFromInt(-1)))
}
