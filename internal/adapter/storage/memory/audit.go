package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
)

// AuditStore keeps toll records in memory, the default for a single-process
// run. Reads return copies so callers cannot mutate internal state.
type AuditStore struct {
	mu      sync.Mutex
	records []domain.TollRecord
}

func NewAuditStore() *AuditStore {
	return &AuditStore{
		records: make([]domain.TollRecord, 0),
	}
}

func (s *AuditStore) SaveBatch(_ context.Context, recs []domain.TollRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, recs...)
	return nil
}

func (s *AuditStore) ListAll(_ context.Context) ([]domain.TollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TollRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *AuditStore) ListByVehicle(_ context.Context, vehicleID uuid.UUID) ([]domain.TollRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TollRecord
	for _, r := range s.records {
		if r.VehicleID == vehicleID {
			out = append(out, r)
		}
	}
	return out, nil
}

var _ port.AuditStore = (*AuditStore)(nil)
