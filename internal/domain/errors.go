package domain

import "errors"

// Every store error is classified into one of these before it reaches a
// handler; raw gorm/driver errors stay below the service boundary.
var (
	ErrInvalidAmount         = errors.New("amount must be a positive value of at least 1000")
	ErrNotFound              = errors.New("user not found")
	ErrReferralLimitExceeded = errors.New("referrer already has 8 direct referrals")
	ErrPersistence           = errors.New("storage failure, operation rolled back")
)
