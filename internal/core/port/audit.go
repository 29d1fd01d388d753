package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// AuditStore persists settlement records. SaveBatch writes one round's
// records as a unit.
type AuditStore interface {
	SaveBatch(ctx context.Context, recs []domain.TollRecord) error
	ListAll(ctx context.Context) ([]domain.TollRecord, error)
	ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.TollRecord, error)
}
