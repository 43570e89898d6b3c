package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"fxvps/platform/internal/model"
	"fxvps/platform/internal/repository/memory"
	"fxvps/platform/internal/retry"
	"fxvps/platform/internal/service/flutterwave"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	tx    *flutterwave.Transaction
	err   error
	calls int
}

func (f *fakeVerifier) VerifyTransaction(ctx context.Context, id string) (*flutterwave.Transaction, error) {
	f.calls++
	return f.tx, f.err
}

type paymentFixture struct {
	store    *memory.Store
	market   *MarketService
	ledger   *LedgerService
	payments *PaymentService
	order    *model.Order
}

func newPaymentFixture(t *testing.T, verifier ChargeVerifier) *paymentFixture {
	store := memory.NewStore()
	c := newClock()
	ledger := newLedger(store, c)
	market := NewMarketService(store, quietLogger())
	market.now = c.Now

	payments := NewPaymentService(store, store, ledger, verifier, quietLogger())
	payments.now = c.Now
	payments.retry = retry.Policy{Attempts: 2, Base: time.Millisecond}

	ctx := context.Background()
	algo, err := market.SubmitAlgo(ctx, AlgoSubmission{SellerID: "seller", Name: "Scalper EA", PriceCents: 15000, Currency: "usd"})
	require.NoError(t, err)
	require.NoError(t, market.VerifyAlgo(ctx, algo.ID))

	order, err := market.PlaceOrder(ctx, "buyer", algo.ID, "ref")
	require.NoError(t, err)

	return &paymentFixture{store: store, market: market, ledger: ledger, payments: payments, order: order}
}

func (f *paymentFixture) orderStatus(t *testing.T) model.OrderStatus {
	o, err := f.store.GetOrderByTxRefForUpdate(context.Background(), f.order.TxRef)
	require.NoError(t, err)
	return o.Status
}

func chargeCompleted(id, txRef string, amount float64, currency string) flutterwave.Event {
	return flutterwave.Event{
		Type: flutterwave.EventChargeCompleted, ID: id, Status: "successful",
		TxRef: txRef, Amount: amount, Currency: currency,
	}
}

func TestHandleEvent_ChargeCompleted(t *testing.T) {
	f := newPaymentFixture(t, nil)
	ctx := context.Background()

	out, err := f.payments.HandleEvent(ctx, chargeCompleted("1", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)
	assert.Equal(t, model.OrderPaid, f.orderStatus(t))

	seller, _ := f.ledger.Earnings(ctx, "seller")
	assert.Equal(t, int64(12000), seller.Sales.Available)
	ref, _ := f.ledger.Earnings(ctx, "ref")
	assert.Equal(t, int64(1500), ref.Referral.Available)

	// Redelivery of the same event.
	out, err = f.payments.HandleEvent(ctx, chargeCompleted("1", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, out)

	// A different event for an already paid order changes nothing.
	out, err = f.payments.HandleEvent(ctx, chargeCompleted("2", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)

	seller, _ = f.ledger.Earnings(ctx, "seller")
	assert.Equal(t, int64(12000), seller.Sales.Available)
}

func TestHandleEvent_LargeOrderCreditsSeller(t *testing.T) {
	f := newPaymentFixture(t, nil)
	ctx := context.Background()

	algo, err := f.market.SubmitAlgo(ctx, AlgoSubmission{SellerID: "whale", Name: "Fund EA", PriceCents: 2e17, Currency: "USD"})
	require.NoError(t, err)
	require.NoError(t, f.market.VerifyAlgo(ctx, algo.ID))
	order, err := f.market.PlaceOrder(ctx, "buyer", algo.ID, "ref")
	require.NoError(t, err)

	out, err := f.payments.HandleEvent(ctx, chargeCompleted("big-1", order.TxRef, 2e15, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)

	seller, err := f.ledger.Earnings(ctx, "whale")
	require.NoError(t, err)
	assert.Equal(t, int64(16e16), seller.Sales.Earned)
	ref, err := f.ledger.Earnings(ctx, "ref")
	require.NoError(t, err)
	assert.Equal(t, int64(2e16), ref.Referral.Earned)
}

func TestHandleEvent_ChargeRejected(t *testing.T) {
	tests := []struct {
		name string
		ev   func(txRef string) flutterwave.Event
	}{
		{"underpaid", func(ref string) flutterwave.Event { return chargeCompleted("1", ref, 149.99, "USD") }},
		{"wrong currency", func(ref string) flutterwave.Event { return chargeCompleted("1", ref, 150, "NGN") }},
		{"unknown order", func(string) flutterwave.Event { return chargeCompleted("1", "fxvps-missing", 150, "USD") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t, nil)
			out, err := f.payments.HandleEvent(context.Background(), tt.ev(f.order.TxRef))
			require.NoError(t, err)
			assert.Equal(t, OutcomeIgnored, out)
			assert.Equal(t, model.OrderPending, f.orderStatus(t))

			seller, _ := f.ledger.Earnings(context.Background(), "seller")
			assert.Zero(t, seller.Total())
		})
	}
}

func TestHandleEvent_ChargeFailed(t *testing.T) {
	f := newPaymentFixture(t, nil)

	out, err := f.payments.HandleEvent(context.Background(), flutterwave.Event{
		Type: flutterwave.EventChargeFailed, ID: "9", Status: "failed", TxRef: f.order.TxRef,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)
	assert.Equal(t, model.OrderFailed, f.orderStatus(t))
}

func TestHandleEvent_Verifier(t *testing.T) {
	v := &fakeVerifier{}
	f := newPaymentFixture(t, v)
	ctx := context.Background()

	// Provider says the payload lied about the amount.
	v.tx = &flutterwave.Transaction{ID: 1, TxRef: f.order.TxRef, Amount: 1, Currency: "USD", Status: "successful"}
	out, err := f.payments.HandleEvent(ctx, chargeCompleted("1", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)
	assert.Equal(t, model.OrderPending, f.orderStatus(t))

	// Unknown transaction at the provider.
	v.tx, v.err = nil, &flutterwave.APIError{StatusCode: http.StatusBadRequest, Message: "No transaction was found"}
	out, err = f.payments.HandleEvent(ctx, chargeCompleted("2", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)

	// Provider outage is surfaced so the delivery is retried later.
	v.err = errors.New("dial tcp: connection refused")
	v.calls = 0
	_, err = f.payments.HandleEvent(ctx, chargeCompleted("3", f.order.TxRef, 150, "USD"))
	assert.Error(t, err)
	assert.False(t, IsDomainError(err))
	assert.Equal(t, 1, v.calls, "verifier retries on its own")

	v.tx = &flutterwave.Transaction{ID: 4, TxRef: f.order.TxRef, Amount: 150, Currency: "USD", Status: "successful"}
	v.err = nil
	out, err = f.payments.HandleEvent(ctx, chargeCompleted("4", f.order.TxRef, 150, "USD"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)
	assert.Equal(t, model.OrderPaid, f.orderStatus(t))
}

func TestHandleEvent_TransferCompleted(t *testing.T) {
	f := newPaymentFixture(t, nil)
	ctx := context.Background()
	credit(t, f.store, "seller", model.PoolSales, 30000)

	ok, err := f.ledger.RequestWithdrawal(ctx, WithdrawalRequest{UserID: "seller", Pool: model.PoolSales, AmountCents: 10000})
	require.NoError(t, err)
	bad, err := f.ledger.RequestWithdrawal(ctx, WithdrawalRequest{UserID: "seller", Pool: model.PoolSales, AmountCents: 10000})
	require.NoError(t, err)

	out, err := f.payments.HandleEvent(ctx, flutterwave.Event{
		Type: flutterwave.EventTransferCompleted, ID: "t1", Status: "SUCCESSFUL", Reference: ok.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)

	out, err = f.payments.HandleEvent(ctx, flutterwave.Event{
		Type: flutterwave.EventTransferCompleted, ID: "t2", Status: "FAILED", Reference: bad.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeProcessed, out)

	// Late contradicting notice for a settled withdrawal.
	out, err = f.payments.HandleEvent(ctx, flutterwave.Event{
		Type: flutterwave.EventTransferCompleted, ID: "t3", Status: "FAILED", Reference: ok.Reference,
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)

	bal, err := f.ledger.Earnings(ctx, "seller")
	require.NoError(t, err)
	assert.Equal(t, PoolBalance{Earned: 30000, Withdrawn: 10000, Available: 20000}, bal.Sales)

	out, err = f.payments.HandleEvent(ctx, flutterwave.Event{
		Type: flutterwave.EventTransferCompleted, ID: "t4", Status: "SUCCESSFUL", Reference: "not-a-uuid",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)
}

func TestHandleEvent_UnknownType(t *testing.T) {
	f := newPaymentFixture(t, nil)
	out, err := f.payments.HandleEvent(context.Background(), flutterwave.Event{Type: "subscription.cancelled", ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, OutcomeIgnored, out)
}
