package service

import (
	"context"
	"io"
	"testing"
	"time"

	"fxvps/platform/internal/model"
	"fxvps/platform/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testPolicy = Policy{
	MinWithdrawalCents: 5000,
	FeeCents:           200,
	FeeBPS:             100,
	PlatformPercent:    20,
	ReferralPercent:    10,
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func credit(t *testing.T, store *memory.Store, userID string, pool model.Pool, amount int64) {
	t.Helper()
	kind := model.KindSaleCredit
	if pool == model.PoolReferral {
		kind = model.KindReferralCredit
	}
	require.NoError(t, store.CreateTransaction(context.Background(), &model.Transaction{
		ID: uuid.New(), UserID: userID, Kind: kind, Pool: pool,
		AmountCents: amount, NetCents: amount, Status: model.TxCompleted,
	}))
}
