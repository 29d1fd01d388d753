package tollrate

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// Standard charges a flat per-km rate, the usual GPS road-pricing scheme.
// Charges are rounded to cents at this boundary so the ledger only ever
// sees two-decimal amounts.
type Standard struct {
	ratePerKm decimal.Decimal
}

func NewStandard(ratePerKm decimal.Decimal) (*Standard, error) {
	if ratePerKm.IsNegative() {
		return nil, domain.ErrNegativeRate
	}
	return &Standard{ratePerKm: ratePerKm}, nil
}

func (s *Standard) Charge(ctx context.Context, input domain.TollInput) (decimal.Decimal, error) {
	if input.DistanceKm <= 0 {
		return decimal.Zero, nil
	}
	return decimal.NewFromFloat(input.DistanceKm).Mul(s.ratePerKm).Round(2), nil
}

var _ domain.TollStrategy = (*Standard)(nil)
