package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fxvps/platform/internal/metrics"
	"fxvps/platform/internal/model"
	"fxvps/platform/internal/retry"
	"fxvps/platform/internal/service/flutterwave"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const providerFlutterwave = "flutterwave"

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// ChargeVerifier re-reads a charge from the payment provider.
type ChargeVerifier interface {
	VerifyTransaction(ctx context.Context, id string) (*flutterwave.Transaction, error)
}

type PaymentService struct {
	market   MarketRepository
	events   WebhookRepository
	ledger   *LedgerService
	verifier ChargeVerifier
	retry    retry.Policy
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewPaymentService wires webhook settlement. verifier may be nil, in which
// case the webhook payload is trusted once its signature checks out.
func NewPaymentService(market MarketRepository, events WebhookRepository, ledger *LedgerService, verifier ChargeVerifier, log logrus.FieldLogger) *PaymentService {
	return &PaymentService{
		market:   market,
		events:   events,
		ledger:   ledger,
		verifier: verifier,
		retry:    retry.Default,
		log:      log,
		now:      time.Now,
	}
}

// HandleEvent applies a verified webhook delivery. Business rejections are
// reported as OutcomeIgnored with a nil error so the provider stops
// redelivering; infrastructure errors are returned.
func (s *PaymentService) HandleEvent(ctx context.Context, ev flutterwave.Event) (Outcome, error) {
	log := s.log.WithFields(logrus.Fields{"event": ev.Type, "event_id": ev.ID})

	var outcome Outcome
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		paid, err := s.confirmCharge(ctx, ev)
		if err != nil {
			return err
		}

		err = s.market.RunAtomic(ctx, func(ctx context.Context) error {
			fresh, err := s.events.RecordEvent(ctx, providerFlutterwave, ev.Key(), ev.Type, s.now().UTC())
			if err != nil {
				return err
			}
			if !fresh {
				outcome = OutcomeDuplicate
				return nil
			}
			outcome, err = s.apply(ctx, ev, paid)
			return err
		})
		if IsDomainError(err) {
			return retry.Permanent(err)
		}
		return err
	})

	if err != nil && IsDomainError(err) {
		log.WithError(err).Warn("webhook event rejected")
		outcome, err = OutcomeIgnored, nil
	}
	if err != nil {
		metrics.RecordWebhook(ev.Type, "error")
		return "", err
	}

	metrics.RecordWebhook(ev.Type, string(outcome))
	log.WithField("outcome", outcome).Info("webhook event handled")
	return outcome, nil
}

// charge is the paid amount the platform settles an order against.
type charge struct {
	successful  bool
	txRef       string
	amountCents int64
	currency    string
}

func (s *PaymentService) confirmCharge(ctx context.Context, ev flutterwave.Event) (charge, error) {
	c := charge{
		successful:  strings.EqualFold(ev.Status, "successful"),
		txRef:       ev.TxRef,
		amountCents: flutterwave.ToCents(ev.Amount),
		currency:    ev.Currency,
	}
	if ev.Type != flutterwave.EventChargeCompleted || !c.successful || s.verifier == nil {
		return c, nil
	}

	tx, err := s.verifier.VerifyTransaction(ctx, ev.ID)
	if err != nil {
		var apiErr *flutterwave.APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			return c, retry.Permanent(fmt.Errorf("charge %s: %w (%v)", ev.ID, model.ErrNotFound, apiErr))
		}
		// The client has already retried; the provider redelivers on a 500.
		return c, retry.Permanent(err)
	}

	return charge{
		successful:  strings.EqualFold(tx.Status, "successful"),
		txRef:       tx.TxRef,
		amountCents: flutterwave.ToCents(tx.Amount),
		currency:    tx.Currency,
	}, nil
}

func (s *PaymentService) apply(ctx context.Context, ev flutterwave.Event, c charge) (Outcome, error) {
	switch ev.Type {
	case flutterwave.EventChargeCompleted:
		if c.successful {
			return s.settleOrder(ctx, ev.TxRef, c)
		}
		return s.failOrder(ctx, ev.TxRef)
	case flutterwave.EventChargeFailed:
		return s.failOrder(ctx, ev.TxRef)
	case flutterwave.EventTransferCompleted:
		return s.settleTransfer(ctx, ev)
	}
	return OutcomeIgnored, nil
}

func (s *PaymentService) settleOrder(ctx context.Context, txRef string, c charge) (Outcome, error) {
	if c.txRef != txRef {
		return "", fmt.Errorf("%w: verified tx_ref %q does not match %q", model.ErrNotFound, c.txRef, txRef)
	}

	order, err := s.market.GetOrderByTxRefForUpdate(ctx, txRef)
	if err != nil {
		return "", err
	}
	if order.Status != model.OrderPending {
		return OutcomeIgnored, nil
	}
	if !strings.EqualFold(order.Currency, c.currency) {
		return "", fmt.Errorf("%w: order %s in %s, paid in %s", model.ErrCurrencyMismatch, order.ID, order.Currency, c.currency)
	}
	if c.amountCents < order.AmountCents {
		return "", fmt.Errorf("%w: order %s wants %d, paid %d", model.ErrAmountMismatch, order.ID, order.AmountCents, c.amountCents)
	}

	if err := s.market.UpdateOrderStatus(ctx, order.ID, model.OrderPaid, s.now().UTC()); err != nil {
		return "", err
	}
	if err := s.ledger.CreditSale(ctx, order); err != nil {
		return "", err
	}
	return OutcomeProcessed, nil
}

func (s *PaymentService) failOrder(ctx context.Context, txRef string) (Outcome, error) {
	order, err := s.market.GetOrderByTxRefForUpdate(ctx, txRef)
	if err != nil {
		return "", err
	}
	if order.Status != model.OrderPending {
		return OutcomeIgnored, nil
	}
	if err := s.market.UpdateOrderStatus(ctx, order.ID, model.OrderFailed, s.now().UTC()); err != nil {
		return "", err
	}
	return OutcomeProcessed, nil
}

func (s *PaymentService) settleTransfer(ctx context.Context, ev flutterwave.Event) (Outcome, error) {
	id, err := uuid.Parse(ev.Reference)
	if err != nil {
		return "", fmt.Errorf("transfer reference %q: %w", ev.Reference, model.ErrNotFound)
	}

	status := model.TxFailed
	if strings.EqualFold(ev.Status, "successful") {
		status = model.TxCompleted
	}

	if _, err := s.ledger.settleInTx(ctx, id, status); err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			return OutcomeIgnored, nil
		}
		return "", err
	}
	return OutcomeProcessed, nil
}
