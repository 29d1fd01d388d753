package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vantutran2k1/tollfleet/internal/adapter/location"
	"github.com/vantutran2k1/tollfleet/internal/adapter/storage/memory"
	"github.com/vantutran2k1/tollfleet/internal/core/domain"
	"github.com/vantutran2k1/tollfleet/internal/core/port"
	"github.com/vantutran2k1/tollfleet/internal/core/service/tollrate"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type scriptedProvider struct {
	next func(current domain.Position) (domain.Position, error)
}

func (p *scriptedProvider) Next(_ context.Context, current domain.Position, _ *domain.Position, _ float64) (domain.Position, error) {
	return p.next(current)
}

func newTestEngine(t *testing.T, provider port.LocationProvider, stop StopCondition, audit port.AuditStore) *Engine {
	t.Helper()
	toll, err := tollStrategy()
	assert.NoError(t, err)

	engine, err := NewEngine(EngineConfig{
		Mode:      domain.ModeEuclidean,
		StepKm:    4,
		EpsilonKm: 0.001,
		Stop:      stop,
	}, provider, toll, NewSettlementService(zap.NewNop()), audit, zap.NewNop())
	assert.NoError(t, err)
	return engine
}

func tollStrategy() (domain.TollStrategy, error) {
	return tollrate.NewStandard(decimal.RequireFromString("0.05"))
}

func mustLedger(t *testing.T, balance string) *domain.Ledger {
	t.Helper()
	ledger, err := domain.NewLedger(decimal.RequireFromString(balance))
	assert.NoError(t, err)
	return ledger
}

func TestEngineRequiresPositiveStep(t *testing.T) {
	toll, err := tollStrategy()
	assert.NoError(t, err)

	_, err = NewEngine(EngineConfig{StepKm: 0, Stop: AfterRounds(1)}, &scriptedProvider{}, toll, nil, memory.NewAuditStore(), zap.NewNop())
	assert.ErrorIs(t, err, domain.ErrInvalidStep)
}

func TestEngine_SingleSettledTick(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 40, Y: current.Y}, nil
	}}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, provider, AfterRounds(1), audit)

	v := domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, "98.00", v.Ledger.Balance().StringFixed(2))
	assert.Equal(t, 40.0, v.TotalDistance)
	assert.Equal(t, "2.00", v.TotalToll.StringFixed(2))
	assert.Equal(t, []domain.Position{{X: 0, Y: 0}, {X: 40, Y: 0}}, v.Path)

	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, domain.OutcomeSettled, recs[0].Outcome)
}

func TestEngine_DeclinedTickDoesNotMoveVehicle(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 40, Y: current.Y}, nil
	}}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, provider, AfterRounds(1), audit)

	v := domain.NewVehicle("bob", domain.Position{}, nil, mustLedger(t, "1"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, "1.00", v.Ledger.Balance().StringFixed(2))
	assert.Equal(t, 0.0, v.TotalDistance)
	assert.Equal(t, "0.00", v.TotalToll.StringFixed(2))
	assert.Equal(t, domain.Position{}, v.Position)
	assert.Len(t, v.Path, 1)

	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, domain.OutcomeDeclined, recs[0].Outcome)
}

func TestEngine_DirectedVehicleReachesDestinationExactly(t *testing.T) {
	dest := domain.Position{X: 10, Y: 0}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, location.NewDirected(domain.ModeEuclidean), FirstOf(AfterRounds(10), AllArrived()), audit)

	v := domain.NewVehicle("carol", domain.Position{}, &dest, mustLedger(t, "100"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, domain.VehicleStatusArrived, v.Status)
	assert.Equal(t, []domain.Position{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 8, Y: 0}, {X: 10, Y: 0}}, v.Path)
	assert.Equal(t, 10.0, v.TotalDistance)
	assert.Equal(t, 3, engine.Round())

	// No tick after arrival.
	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestEngine_VehicleRegisteredAtDestinationArrives(t *testing.T) {
	dest := domain.Position{X: 0, Y: 0}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, location.NewDirected(domain.ModeEuclidean), FirstOf(AfterRounds(10), AllArrived()), audit)

	atDest := domain.NewVehicle("alice", domain.Position{}, &dest, mustLedger(t, "100"))
	withinEpsilon := domain.NewVehicle("bob", domain.Position{X: 0.0005, Y: 0}, &dest, mustLedger(t, "100"))
	engine.Register(atDest)
	engine.Register(withinEpsilon)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, domain.VehicleStatusArrived, atDest.Status)
	assert.Equal(t, domain.VehicleStatusArrived, withinEpsilon.Status)
	assert.Len(t, atDest.Path, 1)
	assert.Equal(t, 0.0, atDest.TotalDistance)
	assert.Equal(t, "100.00", atDest.Ledger.Balance().StringFixed(2))
	assert.Equal(t, 1, engine.Round())

	// Neither vehicle produced a debit attempt.
	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, recs)
}

func TestEngine_SharedLedgerSettlesInRegistrationOrder(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 40, Y: current.Y}, nil
	}}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, provider, AfterRounds(1), audit)

	shared := mustLedger(t, "3")
	a := domain.NewVehicle("alice", domain.Position{}, nil, shared)
	b := domain.NewVehicle("bob", domain.Position{}, nil, shared)
	engine.Register(a)
	engine.Register(b)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, "2.00", a.TotalToll.StringFixed(2))
	assert.Equal(t, "0.00", b.TotalToll.StringFixed(2))
	assert.Equal(t, "1.00", shared.Balance().StringFixed(2))

	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, a.ID, recs[0].VehicleID)
	assert.Equal(t, domain.OutcomeSettled, recs[0].Outcome)
	assert.Equal(t, b.ID, recs[1].VehicleID)
	assert.Equal(t, domain.OutcomeDeclined, recs[1].Outcome)
}

func TestEngine_FixedRoundStopHaltsBeforeArrival(t *testing.T) {
	dest := domain.Position{X: 1000, Y: 0}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, location.NewDirected(domain.ModeEuclidean), AfterRounds(10), audit)

	v := domain.NewVehicle("dave", domain.Position{}, &dest, mustLedger(t, "100"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, 10, engine.Round())
	assert.Equal(t, domain.VehicleStatusActive, v.Status)
	assert.Equal(t, domain.Position{X: 40, Y: 0}, v.Position)

	recs, err := audit.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, recs, 10)
}

func TestEngine_RandomizedRunsAreDeterministicForSeed(t *testing.T) {
	run := func() Report {
		audit := memory.NewAuditStore()
		engine := newTestEngine(t, location.NewRandom(42, 1000, 1000), AfterRounds(10), audit)
		engine.Register(domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100")))
		engine.Register(domain.NewVehicle("bob", domain.Position{}, nil, mustLedger(t, "100")))
		assert.NoError(t, engine.Run(context.Background()))
		return engine.Report()
	}

	first := run()
	second := run()

	assert.Equal(t, len(first.Vehicles), len(second.Vehicles))
	for i := range first.Vehicles {
		assert.Equal(t, first.Vehicles[i].Path, second.Vehicles[i].Path)
		assert.True(t, first.Vehicles[i].FinalBalance.Equal(second.Vehicles[i].FinalBalance))
		assert.Equal(t, first.Vehicles[i].TotalDistance, second.Vehicles[i].TotalDistance)
	}
}

func TestEngine_ProviderFailureIsIsolatedPerVehicle(t *testing.T) {
	bad := domain.NewVehicle("broken", domain.Position{}, nil, mustLedger(t, "100"))
	good := domain.NewVehicle("healthy", domain.Position{}, nil, mustLedger(t, "100"))

	provider := &scriptedProvider{next: nil}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, provider, AfterRounds(3), audit)
	engine.Register(bad)
	engine.Register(good)

	provider.next = func(current domain.Position) (domain.Position, error) {
		if current.Equal(bad.Position) && bad.Active() {
			return domain.Position{}, errors.New("gps fix unavailable")
		}
		return domain.Position{X: current.X + 1, Y: current.Y}, nil
	}

	assert.NoError(t, engine.Run(context.Background()))

	assert.Equal(t, domain.VehicleStatusFailed, bad.Status)
	assert.Equal(t, domain.VehicleStatusActive, good.Status)
	assert.Equal(t, 3.0, good.TotalDistance)
}

func TestEngine_ProviderFailureReportedAsLocationUnavailable(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	provider := &scriptedProvider{next: func(domain.Position) (domain.Position, error) {
		return domain.Position{}, errors.New("gps fix unavailable")
	}}
	toll, err := tollStrategy()
	assert.NoError(t, err)

	engine, err := NewEngine(EngineConfig{StepKm: 4, Stop: AfterRounds(1)},
		provider, toll, NewSettlementService(zap.NewNop()), memory.NewAuditStore(), zap.New(core))
	assert.NoError(t, err)

	v := domain.NewVehicle("broken", domain.Position{}, nil, mustLedger(t, "100"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))
	assert.Equal(t, domain.VehicleStatusFailed, v.Status)

	entries := logs.FilterMessage("location provider failed, vehicle removed from run").All()
	assert.Len(t, entries, 1)
	var logged error
	var ok bool
	for _, field := range entries[0].Context {
		if field.Key == "error" {
			logged, ok = field.Interface.(error)
		}
	}
	assert.True(t, ok)
	assert.ErrorIs(t, logged, domain.ErrLocationUnavailable)
}

func TestEngine_FlushesOneAuditBatchPerRound(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 40, Y: current.Y}, nil
	}}
	mockAudit := new(MockAuditStore)
	mockAudit.On("SaveBatch", mock.Anything, mock.MatchedBy(func(recs []domain.TollRecord) bool {
		return len(recs) == 2
	})).Return(nil)

	engine := newTestEngine(t, provider, AfterRounds(3), mockAudit)
	engine.Register(domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100")))
	engine.Register(domain.NewVehicle("bob", domain.Position{}, nil, mustLedger(t, "100")))

	assert.NoError(t, engine.Run(context.Background()))
	mockAudit.AssertNumberOfCalls(t, "SaveBatch", 3)
}

func TestEngine_AuditWriteFailureDoesNotStopRun(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 40, Y: current.Y}, nil
	}}
	mockAudit := new(MockAuditStore)
	mockAudit.On("SaveBatch", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	engine := newTestEngine(t, provider, AfterRounds(2), mockAudit)
	v := domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100"))
	engine.Register(v)

	assert.NoError(t, engine.Run(context.Background()))

	// Movement and debits continue; only the trail is lost.
	assert.Equal(t, 80.0, v.TotalDistance)
	assert.Equal(t, "96.00", v.Ledger.Balance().StringFixed(2))
	mockAudit.AssertNumberOfCalls(t, "SaveBatch", 2)
}

type reportingPublisher struct {
	engine *Engine
	calls  int
}

func (p *reportingPublisher) PublishPosition(context.Context, string, domain.Position) error {
	// Reading the engine from the publish path must not deadlock against
	// the round loop.
	p.engine.Report()
	p.calls++
	return nil
}

func TestEngine_TelemetryPublishRunsOffTheEngineLock(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 1, Y: current.Y}, nil
	}}
	pub := &reportingPublisher{}
	toll, err := tollStrategy()
	assert.NoError(t, err)

	engine, err := NewEngine(EngineConfig{StepKm: 1, Stop: AfterRounds(3)},
		provider, toll, NewSettlementService(zap.NewNop()), memory.NewAuditStore(), zap.NewNop(), WithTelemetry(pub))
	assert.NoError(t, err)
	pub.engine = engine

	engine.Register(domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100")))

	assert.NoError(t, engine.Run(context.Background()))
	assert.Equal(t, 3, pub.calls)
}

func TestEngine_CancellationStopsBetweenTicks(t *testing.T) {
	provider := &scriptedProvider{next: func(current domain.Position) (domain.Position, error) {
		return domain.Position{X: current.X + 1, Y: current.Y}, nil
	}}
	audit := memory.NewAuditStore()
	engine := newTestEngine(t, provider, AfterRounds(1000), audit)
	engine.Register(domain.NewVehicle("alice", domain.Position{}, nil, mustLedger(t, "100")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, engine.Round())
}

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) SaveBatch(ctx context.Context, recs []domain.TollRecord) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

func (m *MockAuditStore) ListAll(ctx context.Context) ([]domain.TollRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.TollRecord), args.Error(1)
}

func (m *MockAuditStore) ListByVehicle(ctx context.Context, vehicleID uuid.UUID) ([]domain.TollRecord, error) {
	args := m.Called(ctx, vehicleID)
	return args.Get(0).([]domain.TollRecord), args.Error(1)
}
