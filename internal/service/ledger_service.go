package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"fxvps/platform/internal/metrics"
	"fxvps/platform/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LedgerService struct {
	repo   LedgerRepository
	policy Policy
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewLedgerService(repo LedgerRepository, policy Policy, log logrus.FieldLogger) *LedgerService {
	return &LedgerService{repo: repo, policy: policy, log: log, now: time.Now}
}

func (s *LedgerService) Policy() Policy {
	return s.policy
}

// Earnings returns the user's balance across both pools.
func (s *LedgerService) Earnings(ctx context.Context, userID string) (Balance, error) {
	entries, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return Balance{}, err
	}
	return ComputeBalance(entries), nil
}

func (s *LedgerService) Quote(amount int64) (Quote, error) {
	return QuoteWithdrawal(amount, s.policy)
}

type WithdrawalRequest struct {
	UserID      string
	Pool        model.Pool
	AmountCents int64
	Method      string
	Destination string
}

// RequestWithdrawal reserves funds from a pool as a pending withdrawal.
// The account row lock serializes concurrent requests from the same user.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, req WithdrawalRequest) (*model.Transaction, error) {
	if !req.Pool.Valid() {
		return nil, model.ErrInvalidPool
	}

	quote, err := QuoteWithdrawal(req.AmountCents, s.policy)
	if err != nil {
		metrics.RecordWithdrawal("rejected")
		return nil, err
	}

	var created *model.Transaction
	err = s.repo.RunAtomic(ctx, func(ctx context.Context) error {
		if err := s.repo.LockAccount(ctx, req.UserID); err != nil {
			return err
		}

		entries, err := s.repo.ListTransactions(ctx, req.UserID)
		if err != nil {
			return err
		}

		available := ComputeBalance(entries).Pool(req.Pool).Available
		if req.AmountCents > available {
			return fmt.Errorf("%w: requested %d, available %d", model.ErrInsufficientFunds, req.AmountCents, available)
		}

		now := s.now().UTC()
		id := uuid.New()
		tx := &model.Transaction{
			ID:          id,
			UserID:      req.UserID,
			Kind:        model.KindWithdrawal,
			Pool:        req.Pool,
			AmountCents: quote.AmountCents,
			FeeCents:    quote.FeeCents,
			NetCents:    quote.NetCents,
			Status:      model.TxPending,
			Reference:   id.String(),
			Method:      req.Method,
			Destination: req.Destination,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.CreateTransaction(ctx, tx); err != nil {
			return err
		}
		created = tx
		return nil
	})
	if err != nil {
		if IsDomainError(err) {
			metrics.RecordWithdrawal("rejected")
		}
		return nil, err
	}

	metrics.RecordWithdrawal("requested")
	s.log.WithFields(logrus.Fields{
		"user_id":    req.UserID,
		"withdrawal": created.ID,
		"pool":       req.Pool,
		"amount":     created.AmountCents,
		"fee":        created.FeeCents,
	}).Info("withdrawal requested")

	return created, nil
}

// ListWithdrawals returns the user's withdrawals, newest first.
func (s *LedgerService) ListWithdrawals(ctx context.Context, userID string) ([]model.Transaction, error) {
	entries, err := s.repo.ListTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.Transaction, 0, len(entries))
	for _, e := range entries {
		if e.Kind == model.KindWithdrawal {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *LedgerService) CompleteWithdrawal(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.settle(ctx, id, model.TxCompleted)
}

func (s *LedgerService) FailWithdrawal(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	return s.settle(ctx, id, model.TxFailed)
}

func (s *LedgerService) settle(ctx context.Context, id uuid.UUID, status model.TxStatus) (*model.Transaction, error) {
	var settled *model.Transaction
	err := s.repo.RunAtomic(ctx, func(ctx context.Context) error {
		var err error
		settled, err = s.settleInTx(ctx, id, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// settleInTx must run inside RunAtomic.
func (s *LedgerService) settleInTx(ctx context.Context, id uuid.UUID, status model.TxStatus) (*model.Transaction, error) {
	tx, err := s.repo.GetTransactionForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.Kind != model.KindWithdrawal {
		return nil, fmt.Errorf("withdrawal %s: %w", id, model.ErrNotFound)
	}
	if !tx.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: withdrawal %s is %s", model.ErrInvalidTransition, id, tx.Status)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateTransactionStatus(ctx, id, status, now); err != nil {
		return nil, err
	}
	tx.Status = status
	tx.UpdatedAt = now

	metrics.RecordWithdrawal(string(status))
	s.log.WithFields(logrus.Fields{
		"withdrawal": id,
		"user_id":    tx.UserID,
		"status":     status,
	}).Info("withdrawal settled")

	return tx, nil
}

// CreditSale books the seller and referrer shares of a paid order. It must
// run inside the caller's RunAtomic.
func (s *LedgerService) CreditSale(ctx context.Context, order *model.Order) error {
	referrer := order.ReferrerID
	if referrer == order.BuyerID || referrer == order.SellerID {
		referrer = ""
	}
	sellerShare, referralShare := SplitSale(order.AmountCents, s.policy, referrer != "")
	now := s.now().UTC()

	credit := func(userID string, kind model.TxKind, pool model.Pool, amount int64) error {
		if amount <= 0 {
			return nil
		}
		return s.repo.CreateTransaction(ctx, &model.Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			Kind:        kind,
			Pool:        pool,
			AmountCents: amount,
			NetCents:    amount,
			Status:      model.TxCompleted,
			Reference:   order.TxRef,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := credit(order.SellerID, model.KindSaleCredit, model.PoolSales, sellerShare); err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}
	if referrer != "" {
		if err := credit(referrer, model.KindReferralCredit, model.PoolReferral, referralShare); err != nil {
			return fmt.Errorf("credit referrer: %w", err)
		}
	}
	return nil
}
