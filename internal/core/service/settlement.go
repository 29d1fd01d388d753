package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"go.uber.org/zap"
)

// SettlementService is the payment gateway of the simulation: it attempts
// the debit, updates the vehicle's toll total and produces exactly one
// audit record per attempt. The engine persists records in per-round
// batches.
type SettlementService struct {
	logger *zap.Logger
}

func NewSettlementService(logger *zap.Logger) *SettlementService {
	return &SettlementService{logger: logger}
}

// Settle runs one debit attempt for v and returns the record of it.
func (s *SettlementService) Settle(round int, v *domain.Vehicle, distanceKm float64, charge decimal.Decimal) domain.TollRecord {
	outcome := domain.OutcomeDeclined
	if v.Ledger.TryDebit(charge) {
		outcome = domain.OutcomeSettled
		v.TotalToll = v.TotalToll.Add(charge)
	}

	rec := domain.TollRecord{
		ID:         uuid.NewString(),
		VehicleID:  v.ID,
		Owner:      v.Owner,
		Round:      round,
		DistanceKm: distanceKm,
		Charge:     charge,
		Outcome:    outcome,
		Balance:    v.Ledger.Balance(),
		CreatedAt:  time.Now(),
	}

	if outcome == domain.OutcomeSettled {
		s.logger.Info("toll settled",
			zap.String("vehicle_id", v.ID.String()),
			zap.String("owner", v.Owner),
			zap.String("charge", charge.StringFixed(2)),
			zap.String("balance", rec.Balance.StringFixed(2)),
		)
	} else {
		s.logger.Info("toll declined: insufficient balance",
			zap.String("vehicle_id", v.ID.String()),
			zap.String("owner", v.Owner),
			zap.String("charge", charge.StringFixed(2)),
			zap.String("balance", rec.Balance.StringFixed(2)),
		)
	}

	return rec
}
