package location

import (
	"context"

	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// Directed advances toward a fixed destination by at most the step size per
// fix, returning the destination exactly on the terminal step. The caller
// must check arrival before asking for another fix.
type Directed struct {
	mode domain.DistanceMode
}

func NewDirected(mode domain.DistanceMode) *Directed {
	return &Directed{mode: mode}
}

func (d *Directed) Next(_ context.Context, current domain.Position, dest *domain.Position, stepKm float64) (domain.Position, error) {
	if dest == nil {
		return domain.Position{}, domain.ErrMissingDestination
	}
	if current.Equal(*dest) {
		return domain.Position{}, domain.ErrInvalidRoute
	}
	return domain.StepToward(current, *dest, stepKm, d.mode), nil
}
