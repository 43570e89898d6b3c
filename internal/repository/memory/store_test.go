package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"fxvps/platform/internal/model"
	"fxvps/platform/internal/repository/memory"
	"fxvps/platform/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ service.LedgerRepository  = (*memory.Store)(nil)
	_ service.VPSRepository     = (*memory.Store)(nil)
	_ service.MarketRepository  = (*memory.Store)(nil)
	_ service.WebhookRepository = (*memory.Store)(nil)
)

func TestRunAtomic_RollsBackOnError(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.RunAtomic(ctx, func(ctx context.Context) error {
		require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{ID: uuid.New(), UserID: "u1"}))
		fresh, err := s.RecordEvent(ctx, "flutterwave", "charge.completed:1", "charge.completed", time.Now())
		require.NoError(t, err)
		require.True(t, fresh)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	txs, err := s.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, txs)

	fresh, err := s.RecordEvent(ctx, "flutterwave", "charge.completed:1", "charge.completed", time.Now())
	require.NoError(t, err)
	assert.True(t, fresh, "rolled back event must be recordable again")
}

func TestRunAtomic_Nested(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	err := s.RunAtomic(ctx, func(ctx context.Context) error {
		return s.RunAtomic(ctx, func(ctx context.Context) error {
			return s.LockAccount(ctx, "u1")
		})
	})
	assert.NoError(t, err)
}

func TestListTransactions_NewestFirst(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{ID: first, UserID: "u1"}))
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{ID: uuid.New(), UserID: "u2"}))
	require.NoError(t, s.CreateTransaction(ctx, &model.Transaction{ID: second, UserID: "u1"}))

	txs, err := s.ListTransactions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, second, txs[0].ID)
	assert.Equal(t, first, txs[1].ID)
}

func TestNotFound(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	id := uuid.New()

	_, err := s.GetPlan(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetTransactionForUpdate(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = s.GetOrderByTxRefForUpdate(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, s.SetAlgoVerified(ctx, id), model.ErrNotFound)
	assert.ErrorIs(t, s.UpdatePlanStatus(ctx, id, model.VPSRunning, time.Now()), model.ErrNotFound)
}

func TestRecordEvent_Dedup(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()

	fresh, err := s.RecordEvent(ctx, "flutterwave", "k", "charge.failed", time.Now())
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = s.RecordEvent(ctx, "flutterwave", "k", "charge.failed", time.Now())
	require.NoError(t, err)
	assert.False(t, fresh)
}
