package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrBelowMinimum      = errors.New("amount below minimum withdrawal")
	ErrFeeExceedsAmount  = errors.New("fee exceeds amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidPool       = errors.New("invalid pool")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidAction     = errors.New("invalid action")
	ErrPlanExpired       = errors.New("plan expired")
	ErrInvalidPlan       = errors.New("invalid plan")
	ErrAlgoNotVerified   = errors.New("algo not verified")
	ErrOwnAlgo           = errors.New("cannot buy own algo")
	ErrAmountMismatch    = errors.New("paid amount does not cover order")
	ErrCurrencyMismatch  = errors.New("currency mismatch")
)
