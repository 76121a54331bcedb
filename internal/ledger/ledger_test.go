package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"enrichment-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func charge(amount float64) ChargeRequest {
	return ChargeRequest{
		BaseCost:    amount,
		Source:      "apollo",
		Operation:   "company_enrich",
		Description: "enrich acme.com",
	}
}

// ==========================
// MemoryLedger
// ==========================

func TestMemoryLedger(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLedger(map[string]float64{"client-1": 2})
	m.now = func() time.Time { return fixedNow }

	ok, err := m.HasBalance(ctx, "client-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.HasBalance(ctx, "unknown", 1)
	assert.False(t, ok)

	r, err := m.Charge(ctx, "client-1", charge(1.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, r.BalanceAfter)
	assert.Equal(t, fixedNow, r.ChargedAt)
	_, err = uuid.Parse(r.ID)
	assert.NoError(t, err)

	ok, _ = m.HasBalance(ctx, "client-1", 1)
	assert.False(t, ok)

	// Charges are not refused; the gate is HasBalance.
	r, err = m.Charge(ctx, "client-1", charge(1))
	require.NoError(t, err)
	assert.Equal(t, -0.5, r.BalanceAfter)

	m.Credit("client-1", 10)
	balance, _ := m.Balance(ctx, "client-1")
	assert.Equal(t, 9.5, balance)
	assert.Len(t, m.Receipts("client-1"), 2)
}

// ==========================
// RedisLedger
// ==========================

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisLedger_ChargeAndBalance(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	l := NewRedisLedger(rdb, 2)
	l.now = func() time.Time { return fixedNow }

	ok, err := l.HasBalance(ctx, "client-1", 1)
	require.NoError(t, err)
	assert.False(t, ok, "missing key means zero balance")

	require.NoError(t, l.SetBalance(ctx, "client-1", 3))
	ok, err = l.HasBalance(ctx, "client-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	for _, amount := range []float64{1, 0.5, 0.25} {
		_, err := l.Charge(ctx, "client-1", charge(amount))
		require.NoError(t, err)
	}

	balance, err := l.Balance(ctx, "client-1")
	require.NoError(t, err)
	assert.InDelta(t, 1.25, balance, 1e-9)

	// The charge log is capped and newest first.
	receipts, err := l.Receipts(ctx, "client-1", 10)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, 0.25, receipts[0].Amount)
	assert.InDelta(t, 1.25, receipts[0].BalanceAfter, 1e-9)
	assert.Equal(t, 0.5, receipts[1].Amount)

	raw, err := mr.List(chargesKey("client-1"))
	require.NoError(t, err)
	var stored Receipt
	require.NoError(t, json.Unmarshal([]byte(raw[0]), &stored))
	assert.Equal(t, "apollo", stored.Source)
}

func TestRedisLedger_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("get failure propagates", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(balanceKey("client-1")).SetErr(errors.New("connection refused"))

		_, err := NewRedisLedger(db, 0).HasBalance(ctx, "client-1", 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt balance", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectGet(balanceKey("client-1")).SetVal("lots")

		_, err := NewRedisLedger(db, 0).Balance(ctx, "client-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a number")
	})

	t.Run("charge failure", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		mock.ExpectIncrByFloat(balanceKey("client-1"), -1).SetErr(errors.New("READONLY"))

		receipt, err := NewRedisLedger(db, 0).Charge(ctx, "client-1", charge(1))
		require.Error(t, err)
		assert.Nil(t, receipt)
	})

	t.Run("receipt log failure keeps the debit", func(t *testing.T) {
		mr, rdb := setupMiniredis(t)
		l := NewRedisLedger(rdb, 0)
		require.NoError(t, l.SetBalance(ctx, "client-1", 5))
		// A string under the list key makes LPUSH fail with WRONGTYPE.
		require.NoError(t, mr.Set(chargesKey("client-1"), "not-a-list"))

		receipt, err := l.Charge(ctx, "client-1", charge(1))
		require.Error(t, err)
		require.NotNil(t, receipt, "balance was debited so the receipt is returned")
		assert.InDelta(t, 4.0, receipt.BalanceAfter, 1e-9)

		balance, err := l.Balance(ctx, "client-1")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, balance, 1e-9)
	})
}

// ==========================
// PostgresLedger
// ==========================

func TestPostgresLedger_HasBalance(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewPostgresLedger(db)

	mock.ExpectQuery("SELECT balance FROM credit_accounts").
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(4.5))
	ok, err := l.HasBalance(context.Background(), "client-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery("SELECT balance FROM credit_accounts").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	ok, err = l.HasBalance(context.Background(), "ghost", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectQuery("SELECT balance FROM credit_accounts").
		WithArgs("client-1").
		WillReturnError(errors.New("connection reset"))
	_, err = l.HasBalance(context.Background(), "client-1", 1)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_Charge(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewPostgresLedger(db)
	l.now = func() time.Time { return fixedNow }

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE credit_accounts SET balance").
		WithArgs("client-1", 1.0).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(9.0))
	mock.ExpectExec("INSERT INTO credit_charges").
		WithArgs(sqlmock.AnyArg(), "client-1", 1.0, "apollo", "company_enrich", "enrich acme.com", 9.0, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	receipt, err := l.Charge(context.Background(), "client-1", charge(1))
	require.NoError(t, err)
	assert.Equal(t, 9.0, receipt.BalanceAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_ChargeFailures(t *testing.T) {
	t.Run("unknown client rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE credit_accounts SET balance").
			WithArgs("ghost", 1.0).
			WillReturnRows(sqlmock.NewRows([]string{"balance"}))
		mock.ExpectRollback()

		_, err = NewPostgresLedger(db).Charge(context.Background(), "ghost", charge(1))
		assert.ErrorIs(t, err, ErrUnknownClient)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE credit_accounts SET balance").
			WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(2.0))
		mock.ExpectExec("INSERT INTO credit_charges").
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err = NewPostgresLedger(db).Charge(context.Background(), "client-1", charge(1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert charge")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// ==========================
// AlertingLedger / SNSAlerter
// ==========================

type fakePublisher struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, in)
	return &sns.PublishOutput{}, f.err
}

func TestAlertingLedger_AlertsOnceWhenCrossingThreshold(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	inner := NewMemoryLedger(map[string]float64{"client-1": 12})
	l := NewAlertingLedger(inner, 10, NewSNSAlerter(pub, "arn:aws:sns:us-east-1:123:credits"), logger.NewTestLogger(t))

	_, err := l.Charge(ctx, "client-1", charge(1)) // 11
	require.NoError(t, err)
	assert.Empty(t, pub.inputs)

	_, err = l.Charge(ctx, "client-1", charge(2)) // 9, crosses
	require.NoError(t, err)
	require.Len(t, pub.inputs, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:123:credits", *pub.inputs[0].TopicArn)

	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(*pub.inputs[0].Message), &msg))
	assert.Equal(t, "credits.low_balance", msg["event"])
	assert.Equal(t, float64(9), msg["balance"])

	_, err = l.Charge(ctx, "client-1", charge(1)) // 8, already below
	require.NoError(t, err)
	assert.Len(t, pub.inputs, 1)

	ok, err := l.HasBalance(ctx, "client-1", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAlertingLedger_AlertFailureDoesNotFailCharge(t *testing.T) {
	pub := &fakePublisher{err: errors.New("throttled")}
	inner := NewMemoryLedger(map[string]float64{"client-1": 1})
	l := NewAlertingLedger(inner, 1, NewSNSAlerter(pub, "arn"), logger.NewNoOpLogger())

	receipt, err := l.Charge(context.Background(), "client-1", charge(0.5))
	require.NoError(t, err)
	assert.Equal(t, 0.5, receipt.BalanceAfter)
	assert.Len(t, pub.inputs, 1)
}
