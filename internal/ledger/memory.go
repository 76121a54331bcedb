package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger keeps balances in process. Charges are not refused for lack
// of funds; the balance may go negative, the gate is HasBalance.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]float64
	receipts map[string][]Receipt
	now      func() time.Time
}

func NewMemoryLedger(initial map[string]float64) *MemoryLedger {
	m := &MemoryLedger{
		balances: make(map[string]float64, len(initial)),
		receipts: make(map[string][]Receipt),
		now:      time.Now,
	}
	for k, v := range initial {
		m.balances[k] = v
	}
	return m
}

// Credit adds amount to a client's balance, opening the account if needed.
func (m *MemoryLedger) Credit(clientID string, amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[clientID] += amount
}

func (m *MemoryLedger) HasBalance(_ context.Context, clientID string, amount float64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[clientID] >= amount, nil
}

func (m *MemoryLedger) Balance(_ context.Context, clientID string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[clientID], nil
}

func (m *MemoryLedger) Charge(_ context.Context, clientID string, req ChargeRequest) (*Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[clientID] -= req.BaseCost
	r := newReceipt(clientID, req, m.balances[clientID], m.now())
	m.receipts[clientID] = append(m.receipts[clientID], *r)
	return r, nil
}

// Receipts returns the charges recorded for a client, oldest first.
func (m *MemoryLedger) Receipts(clientID string) []Receipt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Receipt, len(m.receipts[clientID]))
	copy(out, m.receipts[clientID])
	return out
}
