package tollrate

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

func TestNewStandardRejectsNegativeRate(t *testing.T) {
	_, err := NewStandard(decimal.NewFromFloat(-0.05))
	assert.ErrorIs(t, err, domain.ErrNegativeRate)
}

func TestStandard_Charge(t *testing.T) {
	strategy, err := NewStandard(decimal.RequireFromString("0.05"))
	assert.NoError(t, err)

	tests := []struct {
		name     string
		input    domain.TollInput
		expected string
	}{
		{
			name:     "40 km at 0.05",
			input:    domain.TollInput{DistanceKm: 40},
			expected: "2.00",
		},
		{
			name:     "zero distance",
			input:    domain.TollInput{DistanceKm: 0},
			expected: "0.00",
		},
		{
			name:     "fractional distance rounds to cents",
			input:    domain.TollInput{DistanceKm: 1.234},
			expected: "0.06",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strategy.Charge(context.Background(), tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got.StringFixed(2))
		})
	}
}

func TestStandard_ChargeMonotonic(t *testing.T) {
	strategy, err := NewStandard(decimal.RequireFromString("0.05"))
	assert.NoError(t, err)

	prev := decimal.Zero
	for _, d := range []float64{0, 1, 10, 40, 100, 1000} {
		got, err := strategy.Charge(context.Background(), domain.TollInput{DistanceKm: d})
		assert.NoError(t, err)
		assert.True(t, got.GreaterThanOrEqual(prev), "charge(%v) < previous charge", d)
		prev = got
	}
}
