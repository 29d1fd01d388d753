package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SettlementOutcome string

const (
	OutcomeSettled  SettlementOutcome = "SETTLED"
	OutcomeDeclined SettlementOutcome = "DECLINED"
)

// TollRecord is the audit line written for every settlement attempt,
// settled or declined. Exactly one record exists per attempt.
type TollRecord struct {
	ID         string
	VehicleID  uuid.UUID
	Owner      string
	Round      int
	DistanceKm float64
	Charge     decimal.Decimal
	Outcome    SettlementOutcome
	Balance    decimal.Decimal // balance after the attempt
	CreatedAt  time.Time
}

// TickEvent is the live-feed view of one completed tick cycle.
type TickEvent struct {
	Round      int
	VehicleID  uuid.UUID
	Owner      string
	Position   Position
	DistanceKm float64
	Charge     decimal.Decimal
	Outcome    SettlementOutcome
	Balance    decimal.Decimal
}
