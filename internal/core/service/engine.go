package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
	"go.uber.org/zap"
)

// StopCondition reports whether the run should halt before scheduling the
// given round. active is the number of vehicles still producing ticks.
type StopCondition func(round, active int) bool

// AfterRounds halts once n full rounds have completed.
func AfterRounds(n int) StopCondition {
	return func(round, _ int) bool { return round >= n }
}

// AllArrived halts once no vehicle is active anymore.
func AllArrived() StopCondition {
	return func(_, active int) bool { return active == 0 }
}

// FirstOf halts as soon as any of the given conditions holds.
func FirstOf(conds ...StopCondition) StopCondition {
	return func(round, active int) bool {
		for _, c := range conds {
			if c(round, active) {
				return true
			}
		}
		return false
	}
}

type EngineConfig struct {
	Mode      domain.DistanceMode
	StepKm    float64
	EpsilonKm float64 // arrival threshold, directed mode
	Stop      StopCondition
	Pacing    time.Duration // real-time delay between rounds, zero in tests
}

type EngineOption func(*Engine)

func WithTelemetry(t port.TelemetryPublisher) EngineOption {
	return func(e *Engine) { e.telemetry = t }
}

func WithBroadcaster(b port.TickBroadcaster) EngineOption {
	return func(e *Engine) { e.feed = b }
}

// Engine is the discrete-event driver. Rounds are strictly sequential: each
// active vehicle's full Sensing-Measuring-Settling-Updated cycle runs to
// completion, in registration order, before the round counter advances.
// Audit records are written once per round, as a single batch.
type Engine struct {
	mu        sync.RWMutex
	provider  port.LocationProvider
	toll      domain.TollStrategy
	settle    *SettlementService
	audit     port.AuditStore
	telemetry port.TelemetryPublisher
	feed      port.TickBroadcaster
	logger    *zap.Logger

	mode      domain.DistanceMode
	stepKm    float64
	epsilonKm float64
	stop      StopCondition
	pacing    time.Duration

	vehicles  []*domain.Vehicle // registration order
	round     int
	startedAt time.Time
}

func NewEngine(cfg EngineConfig, provider port.LocationProvider, toll domain.TollStrategy, settle *SettlementService, audit port.AuditStore, logger *zap.Logger, opts ...EngineOption) (*Engine, error) {
	if cfg.StepKm <= 0 {
		return nil, domain.ErrInvalidStep
	}
	if cfg.Stop == nil {
		return nil, fmt.Errorf("engine: stop condition is required")
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeEuclidean
	}
	if cfg.EpsilonKm <= 0 {
		cfg.EpsilonKm = 1e-9
	}

	e := &Engine{
		provider:  provider,
		toll:      toll,
		settle:    settle,
		audit:     audit,
		logger:    logger,
		mode:      cfg.Mode,
		stepKm:    cfg.StepKm,
		epsilonKm: cfg.EpsilonKm,
		stop:      cfg.Stop,
		pacing:    cfg.Pacing,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Register adds a vehicle to the run. Registration order is the scheduling
// order within every round. Must be called before Run.
func (e *Engine) Register(v *domain.Vehicle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vehicles = append(e.vehicles, v)
}

// Run drives rounds until the stop condition holds or ctx is cancelled.
// Cancellation is honored only between tick cycles, so a settlement that
// has begun always completes and its record is still flushed to the audit
// store.
func (e *Engine) Run(ctx context.Context) error {
	e.mu.Lock()
	e.startedAt = time.Now()
	e.mu.Unlock()

	for {
		e.mu.RLock()
		round := e.round
		active := e.activeLocked()
		e.mu.RUnlock()

		if e.stop(round, active) {
			e.logger.Info("simulation stopped",
				zap.Int("rounds", round),
				zap.Int("active_vehicles", active),
			)
			return nil
		}

		records := make([]domain.TollRecord, 0, len(e.vehicles))
		for _, v := range e.vehicles {
			if err := ctx.Err(); err != nil {
				e.logger.Info("simulation aborted", zap.Int("round", round), zap.Error(err))
				e.flushAudit(context.WithoutCancel(ctx), round, records)
				return err
			}

			e.mu.Lock()
			var (
				rec     *domain.TollRecord
				settled *domain.Position
			)
			if v.Active() {
				rec, settled = e.tick(ctx, round, v)
			}
			e.mu.Unlock()

			// Telemetry is network I/O; keep it off the engine lock so
			// report reads never wait on it.
			if rec != nil {
				records = append(records, *rec)
			}
			if settled != nil {
				e.publishPosition(ctx, v, *settled)
			}
		}
		e.flushAudit(ctx, round, records)

		e.mu.Lock()
		if e.round != round {
			// The round counter is owned by this loop alone.
			panic(fmt.Sprintf("engine: round counter moved from %d to %d during tick processing", round, e.round))
		}
		e.round = round + 1
		e.mu.Unlock()

		if e.pacing > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(e.pacing):
			}
		}
	}
}

// tick runs one full Sensing-Measuring-Settling-Updated cycle for v.
// Caller holds e.mu. The returned record joins the round's audit batch and
// the returned position, when non-nil, is published to telemetry after the
// lock is released.
func (e *Engine) tick(ctx context.Context, round int, v *domain.Vehicle) (*domain.TollRecord, *domain.Position) {
	// A vehicle already within the arrival threshold has nothing left to
	// drive. Catches fleets registered at their destination, which the
	// directed provider would reject as an invalid route.
	if e.atDestination(v) {
		e.markArrived(round, v)
		return nil, nil
	}

	// Sensing
	next, err := e.provider.Next(ctx, v.Position, v.Destination, e.stepKm)
	if err != nil {
		v.Status = domain.VehicleStatusFailed
		e.logger.Error("location provider failed, vehicle removed from run",
			zap.String("vehicle_id", v.ID.String()),
			zap.String("owner", v.Owner),
			zap.Int("round", round),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrLocationUnavailable, err)),
		)
		return nil, nil
	}

	// Measuring
	dist := domain.Distance(v.Position, next, e.mode)
	charge, err := e.toll.Charge(ctx, domain.TollInput{DistanceKm: dist})
	if err != nil {
		v.Status = domain.VehicleStatusFailed
		e.logger.Error("toll strategy failed, vehicle removed from run",
			zap.String("vehicle_id", v.ID.String()),
			zap.Int("round", round),
			zap.Error(err),
		)
		return nil, nil
	}

	// Settling. A declined vehicle does not move on the books: it retries
	// from the same position next round.
	rec := e.settle.Settle(round, v, dist, charge)
	if rec.Outcome != domain.OutcomeSettled {
		e.broadcast(round, v, v.Position, 0, charge, rec.Outcome)
		return &rec, nil
	}

	// Updated
	v.Position = next
	v.TotalDistance += dist
	v.Path = append(v.Path, next)

	if e.atDestination(v) {
		e.markArrived(round, v)
	}

	e.broadcast(round, v, next, dist, charge, rec.Outcome)
	return &rec, &next
}

func (e *Engine) atDestination(v *domain.Vehicle) bool {
	return v.Destination != nil && domain.Distance(v.Position, *v.Destination, e.mode) <= e.epsilonKm
}

func (e *Engine) markArrived(round int, v *domain.Vehicle) {
	v.Status = domain.VehicleStatusArrived
	e.logger.Info("vehicle arrived",
		zap.String("vehicle_id", v.ID.String()),
		zap.String("owner", v.Owner),
		zap.Int("round", round),
	)
}

func (e *Engine) publishPosition(ctx context.Context, v *domain.Vehicle, p domain.Position) {
	if e.telemetry == nil {
		return
	}
	if err := e.telemetry.PublishPosition(ctx, v.ID.String(), p); err != nil {
		e.logger.Warn("telemetry publish failed", zap.String("vehicle_id", v.ID.String()), zap.Error(err))
	}
}

// flushAudit persists one round's records as a single batch. A failed write
// is logged and the run continues; settlement state lives on the ledgers,
// not in the store.
func (e *Engine) flushAudit(ctx context.Context, round int, recs []domain.TollRecord) {
	if len(recs) == 0 {
		return
	}
	if err := e.audit.SaveBatch(ctx, recs); err != nil {
		e.logger.Error("audit batch write failed",
			zap.Int("round", round),
			zap.Int("records", len(recs)),
			zap.Error(err),
		)
	}
}

func (e *Engine) broadcast(round int, v *domain.Vehicle, pos domain.Position, dist float64, charge decimal.Decimal, outcome domain.SettlementOutcome) {
	if e.feed == nil {
		return
	}
	e.feed.BroadcastTick(domain.TickEvent{
		Round:      round,
		VehicleID:  v.ID,
		Owner:      v.Owner,
		Position:   pos,
		DistanceKm: dist,
		Charge:     charge,
		Outcome:    outcome,
		Balance:    v.Ledger.Balance(),
	})
}

func (e *Engine) activeLocked() int {
	n := 0
	for _, v := range e.vehicles {
		if v.Active() {
			n++
		}
	}
	return n
}

// Round returns the index of the next round to be scheduled.
func (e *Engine) Round() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.round
}

type VehicleReport struct {
	ID            uuid.UUID            `json:"id"`
	Owner         string               `json:"owner"`
	Status        domain.VehicleStatus `json:"status"`
	TotalDistance float64              `json:"total_distance_km"`
	TotalToll     decimal.Decimal      `json:"total_toll"`
	FinalBalance  decimal.Decimal      `json:"final_balance"`
	Path          []domain.Position    `json:"path"`
}

type Report struct {
	StartedAt time.Time       `json:"started_at"`
	Rounds    int             `json:"rounds"`
	Vehicles  []VehicleReport `json:"vehicles"`
}

// Report snapshots the run. Safe to call while the run is live; it sees
// only fully settled ticks.
func (e *Engine) Report() Report {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rep := Report{
		StartedAt: e.startedAt,
		Rounds:    e.round,
		Vehicles:  make([]VehicleReport, 0, len(e.vehicles)),
	}
	for _, v := range e.vehicles {
		path := make([]domain.Position, len(v.Path))
		copy(path, v.Path)
		rep.Vehicles = append(rep.Vehicles, VehicleReport{
			ID:            v.ID,
			Owner:         v.Owner,
			Status:        v.Status,
			TotalDistance: v.TotalDistance,
			TotalToll:     v.TotalToll,
			FinalBalance:  v.Ledger.Balance(),
			Path:          path,
		})
	}
	return rep
}

// VehicleReport returns the snapshot for a single vehicle.
func (e *Engine) VehicleReport(id uuid.UUID) (VehicleReport, error) {
	rep := e.Report()
	for _, vr := range rep.Vehicles {
		if vr.ID == id {
			return vr, nil
		}
	}
	return VehicleReport{}, domain.ErrVehicleNotFound
}
