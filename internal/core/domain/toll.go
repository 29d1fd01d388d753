package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

type TollInput struct {
	DistanceKm float64
}

// TollStrategy maps a traveled distance to a charge. Implementations must be
// pure: a fixed strategy always yields the same charge for the same distance.
type TollStrategy interface {
	Charge(ctx context.Context, input TollInput) (decimal.Decimal, error)
}
