package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
)

const schema = `
CREATE TABLE IF NOT EXISTS toll_records (
	id          UUID PRIMARY KEY,
	vehicle_id  UUID NOT NULL,
	owner_name  TEXT NOT NULL,
	round       INT NOT NULL,
	distance_km DOUBLE PRECISION NOT NULL,
	charge      NUMERIC(12, 2) NOT NULL,
	outcome     TEXT NOT NULL,
	balance     NUMERIC(12, 2) NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_toll_records_vehicle ON toll_records (vehicle_id);
`

const insertRecord = `
INSERT INTO toll_records (id, vehicle_id, owner_name, round, distance_km, charge, outcome, balance, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

const selectAll = `
SELECT id, vehicle_id, owner_name, round, distance_km, charge::text, outcome, balance::text, created_at
FROM toll_records ORDER BY created_at, round
`

const selectByVehicle = `
SELECT id, vehicle_id, owner_name, round, distance_km, charge::text, outcome, balance::text, created_at
FROM toll_records WHERE vehicle_id = $1 ORDER BY round
`

// AuditStore persists toll records in postgres for deployments that want the
// audit trail to outlive the process.
type AuditStore struct {
	db    *pgxpool.Pool
	store *Store
}

func NewAuditStore(db *pgxpool.Pool) *AuditStore {
	return &AuditStore{
		db:    db,
		store: NewStore(db),
	}
}

// EnsureSchema creates the audit table; call once at boot.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schema)
	return err
}

// SaveBatch writes one round's records in a single transaction.
func (s *AuditStore) SaveBatch(ctx context.Context, recs []domain.TollRecord) error {
	return s.store.ExecTx(ctx, func(tx pgx.Tx) error {
		for _, rec := range recs {
			if _, err := tx.Exec(ctx, insertRecord,
				rec.ID, rec.VehicleID, rec.Owner, rec.Round, rec.DistanceKm,
				rec.Charge.StringFixed(2), string(rec.Outcome), rec.Balance.StringFixed(2), rec.CreatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *AuditStore) ListAll(ctx context.Context) ([]domain.TollRecord, error) {
	rows, err := s.db.Query(ctx, selectAll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (s *AuditStore) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.TollRecord, error) {
	rows, err := s.db.Query(ctx, selectByVehicle, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]domain.TollRecord, error) {
	var out []domain.TollRecord
	for rows.Next() {
		var (
			rec       domain.TollRecord
			charge    string
			balance   string
			outcome   string
			createdAt time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.VehicleID, &rec.Owner, &rec.Round, &rec.DistanceKm,
			&charge, &outcome, &balance, &createdAt); err != nil {
			return nil, err
		}
		c, err := decimal.NewFromString(charge)
		if err != nil {
			return nil, err
		}
		b, err := decimal.NewFromString(balance)
		if err != nil {
			return nil, err
		}
		rec.Charge = c
		rec.Balance = b
		rec.Outcome = domain.SettlementOutcome(outcome)
		rec.CreatedAt = createdAt
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ port.AuditStore = (*AuditStore)(nil)
