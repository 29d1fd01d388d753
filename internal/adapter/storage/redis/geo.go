package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
)

const vehicleGeoKey = "active_vehicles"

// TelemetryStore mirrors settled vehicle positions into a redis geo set so
// external tooling can query the live fleet.
type TelemetryStore struct {
	client *redis.Client
}

func NewTelemetryStore(client *redis.Client) *TelemetryStore {
	return &TelemetryStore{client: client}
}

func (r *TelemetryStore) PublishPosition(ctx context.Context, vehicleID string, p domain.Position) error {
	return r.client.GeoAdd(ctx, vehicleGeoKey, &redis.GeoLocation{
		Name:      vehicleID,
		Longitude: p.X,
		Latitude:  p.Y,
	}).Err()
}

func (r *TelemetryStore) FindNearestVehicles(ctx context.Context, lat, lng float64, radiusKm float64) ([]string, error) {
	locations, err := r.client.GeoSearch(ctx, vehicleGeoKey, &redis.GeoSearchQuery{
		Longitude:  lng,
		Latitude:   lat,
		Radius:     radiusKm,
		RadiusUnit: "km",
		Sort:       "ASC",
		Count:      10,
	}).Result()
	if err != nil {
		return nil, err
	}

	vehicles := make([]string, len(locations))
	for i, loc := range locations {
		vehicles[i] = loc
	}

	return vehicles, nil
}

var (
	_ port.TelemetryPublisher = (*TelemetryStore)(nil)
	_ port.NearbyFinder       = (*TelemetryStore)(nil)
)
