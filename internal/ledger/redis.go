package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	balanceKeyPrefix = "credits:balance:"
	chargesKeyPrefix = "credits:charges:"
	defaultChargeLog = 1000
)

// RedisLedger keeps one float balance key per client and a capped list of
// JSON receipts, newest first.
type RedisLedger struct {
	rdb          redis.Cmdable
	chargeLogLen int64
	now          func() time.Time
}

func NewRedisLedger(rdb redis.Cmdable, chargeLogLen int64) *RedisLedger {
	if chargeLogLen <= 0 {
		chargeLogLen = defaultChargeLog
	}
	return &RedisLedger{rdb: rdb, chargeLogLen: chargeLogLen, now: time.Now}
}

func balanceKey(clientID string) string { return balanceKeyPrefix + clientID }
func chargesKey(clientID string) string { return chargesKeyPrefix + clientID }

func (l *RedisLedger) Balance(ctx context.Context, clientID string) (float64, error) {
	val, err := l.rdb.Get(ctx, balanceKey(clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get balance: %w", err)
	}
	balance, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("redis balance %q is not a number: %w", val, err)
	}
	return balance, nil
}

func (l *RedisLedger) HasBalance(ctx context.Context, clientID string, amount float64) (bool, error) {
	balance, err := l.Balance(ctx, clientID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// SetBalance overwrites a client's balance.
func (l *RedisLedger) SetBalance(ctx context.Context, clientID string, amount float64) error {
	return l.rdb.Set(ctx, balanceKey(clientID), strconv.FormatFloat(amount, 'f', -1, 64), 0).Err()
}

// Charge decrements the balance atomically, then appends the receipt to the
// capped charge log. If only the log write fails the charge stands and the
// receipt is returned together with the error.
func (l *RedisLedger) Charge(ctx context.Context, clientID string, req ChargeRequest) (*Receipt, error) {
	balance, err := l.rdb.IncrByFloat(ctx, balanceKey(clientID), -req.BaseCost).Result()
	if err != nil {
		return nil, fmt.Errorf("redis charge: %w", err)
	}

	receipt := newReceipt(clientID, req, balance, l.now())
	payload, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt: %w", err)
	}

	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, chargesKey(clientID), payload)
		pipe.LTrim(ctx, chargesKey(clientID), 0, l.chargeLogLen-1)
		return nil
	})
	if err != nil {
		return receipt, fmt.Errorf("redis record receipt: %w", err)
	}
	return receipt, nil
}

// Receipts returns up to limit receipts, newest first.
func (l *RedisLedger) Receipts(ctx context.Context, clientID string, limit int64) ([]Receipt, error) {
	raw, err := l.rdb.LRange(ctx, chargesKey(clientID), 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list receipts: %w", err)
	}
	out := make([]Receipt, 0, len(raw))
	for _, r := range raw {
		var receipt Receipt
		if err := json.Unmarshal([]byte(r), &receipt); err != nil {
			continue
		}
		out = append(out, receipt)
	}
	return out, nil
}
