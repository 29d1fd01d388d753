package port

import (
	"context"

	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// TelemetryPublisher receives settled positions for live fleet tracking.
type TelemetryPublisher interface {
	PublishPosition(ctx context.Context, vehicleID string, p domain.Position) error
}

// NearbyFinder answers proximity queries over previously published
// positions.
type NearbyFinder interface {
	FindNearestVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]string, error)
}

// TickBroadcaster fans out tick results to connected observers. It must not
// block the engine's round loop.
type TickBroadcaster interface {
	BroadcastTick(ev domain.TickEvent)
}
