package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Schema creates the tables PostgresLedger expects.
const Schema = `
CREATE TABLE IF NOT EXISTS credit_accounts (
	client_id  TEXT PRIMARY KEY,
	balance    NUMERIC(14,4) NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS credit_charges (
	id            UUID PRIMARY KEY,
	client_id     TEXT NOT NULL REFERENCES credit_accounts(client_id),
	amount        NUMERIC(14,4) NOT NULL,
	source        TEXT NOT NULL,
	operation     TEXT NOT NULL,
	description   TEXT,
	balance_after NUMERIC(14,4) NOT NULL,
	charged_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_credit_charges_client ON credit_charges (client_id, charged_at DESC);
`

const (
	selectBalanceSQL = `SELECT balance FROM credit_accounts WHERE client_id = $1`
	debitSQL         = `UPDATE credit_accounts SET balance = balance - $2, updated_at = NOW() WHERE client_id = $1 RETURNING balance`
	insertChargeSQL  = `INSERT INTO credit_charges (id, client_id, amount, source, operation, description, balance_after, charged_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// PostgresLedger keeps balances in credit_accounts and an append-only
// charge history in credit_charges.
type PostgresLedger struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db, now: time.Now}
}

// EnsureSchema applies Schema.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("apply ledger schema: %w", err)
	}
	return nil
}

// Balance returns 0 for clients without an account.
func (l *PostgresLedger) Balance(ctx context.Context, clientID string) (float64, error) {
	var balance float64
	err := l.db.QueryRowContext(ctx, selectBalanceSQL, clientID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return balance, nil
}

func (l *PostgresLedger) HasBalance(ctx context.Context, clientID string, amount float64) (bool, error) {
	balance, err := l.Balance(ctx, clientID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// Charge debits the account and records the charge in one transaction.
func (l *PostgresLedger) Charge(ctx context.Context, clientID string, req ChargeRequest) (*Receipt, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin charge: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance float64
	err = tx.QueryRowContext(ctx, debitSQL, clientID, req.BaseCost).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClient, clientID)
	}
	if err != nil {
		return nil, fmt.Errorf("debit account: %w", err)
	}

	receipt := newReceipt(clientID, req, balance, l.now())
	_, err = tx.ExecContext(ctx, insertChargeSQL,
		receipt.ID,
		receipt.ClientID,
		receipt.Amount,
		receipt.Source,
		receipt.Operation,
		receipt.Description,
		receipt.BalanceAfter,
		receipt.ChargedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert charge: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit charge: %w", err)
	}
	return receipt, nil
}
