package port

import (
	"context"

	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// LocationProvider produces the next position for a vehicle. Directed
// implementations must return the destination exactly on the terminal step.
// Any failure to resolve a position must surface here, before the engine's
// sensing phase; the engine never retries the provider.
type LocationProvider interface {
	Next(ctx context.Context, current domain.Position, dest *domain.Position, stepKm float64) (domain.Position, error)
}
