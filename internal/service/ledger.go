package service

import (
	"fmt"

	"fxvps/platform/internal/model"
)

// Policy holds the money rules applied to withdrawals and sale credits.
type Policy struct {
	MinWithdrawalCents int64 `json:"min_withdrawal_cents"`
	FeeCents           int64 `json:"fee_cents"`
	FeeBPS             int64 `json:"fee_bps"`
	PlatformPercent    int64 `json:"platform_fee_percent"`
	ReferralPercent    int64 `json:"referral_percent"`
}

type PoolBalance struct {
	Earned    int64 `json:"earned_cents"`
	Withdrawn int64 `json:"withdrawn_cents"`
	Pending   int64 `json:"pending_cents"`
	Available int64 `json:"available_cents"`
}

type Balance struct {
	Referral PoolBalance `json:"referral"`
	Sales    PoolBalance `json:"sales"`
}

func (b Balance) Pool(p model.Pool) PoolBalance {
	if p == model.PoolReferral {
		return b.Referral
	}
	return b.Sales
}

func (b Balance) Total() int64 {
	return b.Referral.Available + b.Sales.Available
}

// ComputeBalance folds ledger entries into per-pool balances. Credits count
// once completed; pending withdrawals reserve funds; failed entries are ignored.
func ComputeBalance(entries []model.Transaction) Balance {
	var b Balance
	for _, e := range entries {
		var pb *PoolBalance
		switch e.Pool {
		case model.PoolReferral:
			pb = &b.Referral
		case model.PoolSales:
			pb = &b.Sales
		default:
			continue
		}

		switch {
		case e.IsCredit() && e.Status == model.TxCompleted:
			pb.Earned += e.AmountCents
		case e.Kind == model.KindWithdrawal && e.Status == model.TxCompleted:
			pb.Withdrawn += e.AmountCents
		case e.Kind == model.KindWithdrawal && e.Status == model.TxPending:
			pb.Pending += e.AmountCents
		}
	}
	b.Referral.Available = b.Referral.Earned - b.Referral.Withdrawn - b.Referral.Pending
	b.Sales.Available = b.Sales.Earned - b.Sales.Withdrawn - b.Sales.Pending
	return b
}

type Quote struct {
	AmountCents int64 `json:"amount_cents"`
	FeeCents    int64 `json:"fee_cents"`
	NetCents    int64 `json:"net_cents"`
}

// QuoteWithdrawal applies the minimum and fee rules to amount.
func QuoteWithdrawal(amount int64, p Policy) (Quote, error) {
	if amount <= 0 {
		return Quote{}, model.ErrInvalidAmount
	}
	if amount < p.MinWithdrawalCents {
		return Quote{}, fmt.Errorf("%w: %d < %d", model.ErrBelowMinimum, amount, p.MinWithdrawalCents)
	}

	fee := p.FeeCents + mulDiv(amount, p.FeeBPS, 10000)
	net := amount - fee
	if net <= 0 {
		return Quote{}, model.ErrFeeExceedsAmount
	}

	return Quote{AmountCents: amount, FeeCents: fee, NetCents: net}, nil
}

// SplitSale returns the seller and referrer shares of a paid order.
// The referral commission comes out of the platform's cut.
func SplitSale(amount int64, p Policy, hasReferrer bool) (seller, referral int64) {
	seller = mulDiv(amount, 100-p.PlatformPercent, 100)
	if hasReferrer {
		referral = mulDiv(amount, p.ReferralPercent, 100)
	}
	return seller, referral
}

// mulDiv returns floor(amount*num/den) for non-negative inputs with num <= den
// without overflowing int64.
func mulDiv(amount, num, den int64) int64 {
	return amount/den*num + amount%den*num/den
}
