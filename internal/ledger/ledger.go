// Package ledger authorizes and records credit spend per client. The
// orchestrator only needs HasBalance and Charge; the backends differ in
// where balances live.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownClient is returned by Charge when the client has no account.
var ErrUnknownClient = errors.New("ledger: unknown client")

// Ledger is the spend gate used by the orchestrator. A Charge that returns a
// receipt together with an error has debited the balance but failed to
// record the receipt.
type Ledger interface {
	HasBalance(ctx context.Context, clientID string, amount float64) (bool, error)
	Charge(ctx context.Context, clientID string, req ChargeRequest) (*Receipt, error)
}

// BalanceReader is implemented by ledgers that can report a balance.
type BalanceReader interface {
	Balance(ctx context.Context, clientID string) (float64, error)
}

// ChargeRequest describes one spend. Source is the provider name, Operation
// the capability.
type ChargeRequest struct {
	BaseCost    float64 `json:"baseCost"`
	Source      string  `json:"source"`
	Operation   string  `json:"operation"`
	Description string  `json:"description,omitempty"`
}

type Receipt struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"clientId"`
	Amount       float64   `json:"amount"`
	Source       string    `json:"source"`
	Operation    string    `json:"operation"`
	Description  string    `json:"description,omitempty"`
	BalanceAfter float64   `json:"balanceAfter"`
	ChargedAt    time.Time `json:"chargedAt"`
}

func newReceipt(clientID string, req ChargeRequest, balanceAfter float64, at time.Time) *Receipt {
	return &Receipt{
		ID:           uuid.NewString(),
		ClientID:     clientID,
		Amount:       req.BaseCost,
		Source:       req.Source,
		Operation:    req.Operation,
		Description:  req.Description,
		BalanceAfter: balanceAfter,
		ChargedAt:    at.UTC(),
	}
}
