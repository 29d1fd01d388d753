package domain

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Ledger holds a prepaid toll balance. TryDebit is the only mutator; the
// mutex exists because the report API and the websocket feed read balances
// while a run is live, and because a ledger may be shared between vehicles.
type Ledger struct {
	mu      sync.Mutex
	balance decimal.Decimal
}

func NewLedger(initial decimal.Decimal) (*Ledger, error) {
	if initial.IsNegative() {
		return nil, ErrNegativeBalance
	}
	return &Ledger{balance: initial}, nil
}

// TryDebit deducts amount when the balance covers it and reports whether the
// debit was applied. An uncovered debit leaves the balance untouched; it is
// an expected outcome, not an error.
func (l *Ledger) TryDebit(amount decimal.Decimal) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balance.LessThan(amount) {
		return false
	}
	l.balance = l.balance.Sub(amount)
	return true
}

func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}
