package service

import (
	"errors"

	"fxvps/platform/internal/model"
)

var domainErrors = []error{
	model.ErrNotFound,
	model.ErrInvalidAmount,
	model.ErrBelowMinimum,
	model.ErrFeeExceedsAmount,
	model.ErrInsufficientFunds,
	model.ErrInvalidPool,
	model.ErrInvalidTransition,
	model.ErrInvalidAction,
	model.ErrPlanExpired,
	model.ErrInvalidPlan,
	model.ErrAlgoNotVerified,
	model.ErrOwnAlgo,
	model.ErrAmountMismatch,
	model.ErrCurrencyMismatch,
}

// IsDomainError reports whether err is a business rule rejection rather
// than an infrastructure failure.
func IsDomainError(err error) bool {
	for _, d := range domainErrors {
		if errors.Is(err, d) {
			return true
		}
	}
	return false
}
