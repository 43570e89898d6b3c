package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fxvps/platform/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const txRefPrefix = "fxvps-"

type MarketService struct {
	repo MarketRepository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewMarketService(repo MarketRepository, log logrus.FieldLogger) *MarketService {
	return &MarketService{repo: repo, log: log, now: time.Now}
}

type AlgoSubmission struct {
	SellerID    string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
}

// SubmitAlgo stores a listing awaiting verification.
func (s *MarketService) SubmitAlgo(ctx context.Context, in AlgoSubmission) (*model.Algo, error) {
	if in.PriceCents <= 0 {
		return nil, model.ErrInvalidAmount
	}

	algo := &model.Algo{
		ID:          uuid.New(),
		SellerID:    in.SellerID,
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Currency:    strings.ToUpper(in.Currency),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.CreateAlgo(ctx, algo); err != nil {
		return nil, err
	}
	return algo, nil
}

func (s *MarketService) VerifyAlgo(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetAlgoVerified(ctx, id); err != nil {
		return err
	}
	s.log.WithField("algo_id", id).Info("algo verified")
	return nil
}

func (s *MarketService) ListAlgos(ctx context.Context) ([]model.Algo, error) {
	return s.repo.ListVerifiedAlgos(ctx)
}

// PlaceOrder opens a pending order for a verified algo. The returned tx_ref
// is what the buyer pays against.
func (s *MarketService) PlaceOrder(ctx context.Context, buyerID string, algoID uuid.UUID, referrerID string) (*model.Order, error) {
	algo, err := s.repo.GetAlgo(ctx, algoID)
	if err != nil {
		return nil, err
	}
	if !algo.Verified {
		return nil, fmt.Errorf("algo %s: %w", algoID, model.ErrAlgoNotVerified)
	}
	if algo.SellerID == buyerID {
		return nil, model.ErrOwnAlgo
	}
	if referrerID == buyerID || referrerID == algo.SellerID {
		referrerID = ""
	}

	now := s.now().UTC()
	order := &model.Order{
		ID:          uuid.New(),
		TxRef:       txRefPrefix + uuid.NewString(),
		BuyerID:     buyerID,
		SellerID:    algo.SellerID,
		ReferrerID:  referrerID,
		AlgoID:      algo.ID,
		AmountCents: algo.PriceCents,
		Currency:    algo.Currency,
		Status:      model.OrderPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}
