package service

import (
	"math"
	"testing"

	"fxvps/platform/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(kind model.TxKind, pool model.Pool, status model.TxStatus, amount int64) model.Transaction {
	return model.Transaction{Kind: kind, Pool: pool, Status: status, AmountCents: amount}
}

func TestComputeBalance(t *testing.T) {
	entries := []model.Transaction{
		entry(model.KindSaleCredit, model.PoolSales, model.TxCompleted, 10000),
		entry(model.KindSaleCredit, model.PoolSales, model.TxCompleted, 5000),
		entry(model.KindSaleCredit, model.PoolSales, model.TxPending, 99999), // not yet earned
		entry(model.KindReferralCredit, model.PoolReferral, model.TxCompleted, 3000),
		entry(model.KindWithdrawal, model.PoolSales, model.TxCompleted, 6000),
		entry(model.KindWithdrawal, model.PoolSales, model.TxPending, 2000),
		entry(model.KindWithdrawal, model.PoolSales, model.TxFailed, 7000),
		entry(model.KindWithdrawal, model.PoolReferral, model.TxFailed, 3000),
	}

	b := ComputeBalance(entries)

	assert.Equal(t, PoolBalance{Earned: 15000, Withdrawn: 6000, Pending: 2000, Available: 7000}, b.Sales)
	assert.Equal(t, PoolBalance{Earned: 3000, Available: 3000}, b.Referral)
	assert.Equal(t, int64(10000), b.Total())
	assert.Equal(t, b.Referral, b.Pool(model.PoolReferral))
}

func TestComputeBalance_Empty(t *testing.T) {
	assert.Equal(t, Balance{}, ComputeBalance(nil))
}

func TestQuoteWithdrawal(t *testing.T) {
	p := Policy{MinWithdrawalCents: 5000, FeeCents: 200, FeeBPS: 150}

	q, err := QuoteWithdrawal(10000, p)
	require.NoError(t, err)
	assert.Equal(t, Quote{AmountCents: 10000, FeeCents: 350, NetCents: 9650}, q)
	assert.Equal(t, q.AmountCents-q.FeeCents, q.NetCents)

	_, err = QuoteWithdrawal(0, p)
	assert.ErrorIs(t, err, model.ErrInvalidAmount)

	_, err = QuoteWithdrawal(4999, p)
	assert.ErrorIs(t, err, model.ErrBelowMinimum)

	_, err = QuoteWithdrawal(200, Policy{FeeCents: 200})
	assert.ErrorIs(t, err, model.ErrFeeExceedsAmount)
}

func TestSplitSale(t *testing.T) {
	p := Policy{PlatformPercent: 20, ReferralPercent: 10}

	seller, referral := SplitSale(9999, p, true)
	assert.Equal(t, int64(7999), seller)
	assert.Equal(t, int64(999), referral)

	seller, referral = SplitSale(10000, p, false)
	assert.Equal(t, int64(8000), seller)
	assert.Zero(t, referral)

	// Large prices must not overflow the percentage math.
	seller, referral = SplitSale(2e17, p, true)
	assert.Equal(t, int64(16e16), seller)
	assert.Equal(t, int64(2e16), referral)

	big := int64(math.MaxInt64 / 50)
	seller, referral = SplitSale(big, p, true)
	assert.Positive(t, seller)
	assert.Equal(t, big/100*80+big%100*80/100, seller)
	assert.Equal(t, big/10, referral)
	assert.LessOrEqual(t, seller+referral, big)
}

func TestQuoteWithdrawal_LargeAmount(t *testing.T) {
	p := Policy{MinWithdrawalCents: 5000, FeeCents: 200, FeeBPS: 150}

	q, err := QuoteWithdrawal(math.MaxInt64/2, p)
	require.NoError(t, err)
	assert.Positive(t, q.FeeCents)
	assert.Equal(t, 200+int64(math.MaxInt64/2)/10000*150+int64(math.MaxInt64/2)%10000*150/10000, q.FeeCents)
	assert.Equal(t, q.AmountCents-q.FeeCents, q.NetCents)
}
