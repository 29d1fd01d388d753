package domain

import "math"

// DistanceMode selects how distance between two positions is measured.
// It is fixed for the lifetime of a run.
type DistanceMode string

const (
	ModeEuclidean DistanceMode = "EUCLIDEAN"
	ModeHaversine DistanceMode = "HAVERSINE"
)

const earthRadiusKm = 6371.0

// Position is an immutable 2D coordinate. In haversine mode X is longitude
// and Y is latitude, matching the lng-first order of the redis geo adapter.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Equal(o Position) bool {
	return p.X == o.X && p.Y == o.Y
}

// Distance returns the distance between a and b in km (haversine mode) or
// abstract units (euclidean mode).
func Distance(a, b Position, mode DistanceMode) float64 {
	if mode == ModeHaversine {
		return haversine(a, b)
	}
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

func haversine(a, b Position) float64 {
	lat1 := a.Y * math.Pi / 180
	lat2 := b.Y * math.Pi / 180
	dLat := (b.Y - a.Y) * math.Pi / 180
	dLng := (b.X - a.X) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}

// StepToward returns the position reached by moving from current toward dest
// by at most step along the straight-line bearing. When the remaining
// distance does not exceed step it returns dest exactly, so directed vehicles
// land on their destination instead of oscillating around it.
func StepToward(current, dest Position, step float64, mode DistanceMode) Position {
	remaining := Distance(current, dest, mode)
	if remaining <= step {
		return dest
	}
	f := step / remaining
	return Position{
		X: current.X + (dest.X-current.X)*f,
		Y: current.Y + (dest.Y-current.Y)*f,
	}
}
