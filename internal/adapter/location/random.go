package location

import (
	"context"
	"math/rand"
	"sync"

	"github.com/vantutran2k1/tollfleet/internal/core/domain"
)

// Random draws every fix uniformly from a bounded region, ignoring the
// current position, the way the classic GPS demo feed behaves. The rng is
// seeded so runs are reproducible; the mutex keeps the provider safe to
// share between engines in tests.
type Random struct {
	mu   sync.Mutex
	rng  *rand.Rand
	maxX float64
	maxY float64
}

func NewRandom(seed int64, maxX, maxY float64) *Random {
	return &Random{
		rng:  rand.New(rand.NewSource(seed)),
		maxX: maxX,
		maxY: maxY,
	}
}

func (r *Random) Next(_ context.Context, _ domain.Position, _ *domain.Position, _ float64) (domain.Position, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.Position{
		X: r.rng.Float64() * r.maxX,
		Y: r.rng.Float64() * r.maxY,
	}, nil
}
