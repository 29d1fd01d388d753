package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type VehicleStatus string

const (
	VehicleStatusActive  VehicleStatus = "ACTIVE"
	VehicleStatusArrived VehicleStatus = "ARRIVED"
	VehicleStatusFailed  VehicleStatus = "FAILED"
)

// Vehicle is one simulated agent. Its movement fields are mutated only by
// its own tick inside the engine; the Ledger may be shared between vehicles
// in single-account deployments.
type Vehicle struct {
	ID            uuid.UUID
	Owner         string
	Ledger        *Ledger
	Position      Position  // last settled position
	Destination   *Position // nil in randomized mode
	Status        VehicleStatus
	TotalDistance float64
	TotalToll     decimal.Decimal
	Path          []Position
	CreatedAt     time.Time
}

func NewVehicle(owner string, start Position, dest *Position, ledger *Ledger) *Vehicle {
	return &Vehicle{
		ID:          uuid.New(),
		Owner:       owner,
		Ledger:      ledger,
		Position:    start,
		Destination: dest,
		Status:      VehicleStatusActive,
		TotalToll:   decimal.Zero,
		Path:        []Position{start},
		CreatedAt:   time.Now(),
	}
}

// Active reports whether the vehicle still takes part in scheduling rounds.
func (v *Vehicle) Active() bool {
	return v.Status == VehicleStatusActive
}
