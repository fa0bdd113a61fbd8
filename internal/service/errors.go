package service

import "errors"

var (
	ErrAccountInUse       = errors.New("account has transactions")
	ErrCategoryInUse      = errors.New("category has transactions")
	ErrMemberInUse        = errors.New("member has transactions")
	ErrGoalInUse          = errors.New("goal has contributions")
	ErrDuplicate          = errors.New("name already exists")
	ErrNotFound           = errors.New("not found")
	ErrEmptyName          = errors.New("name must not be empty")
	ErrSameEndpoints      = errors.New("source and destination must differ")
	ErrInvalidPeriod      = errors.New("period start must be before its end")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("invalid transaction kind")
	ErrUnknownAccount     = errors.New("unknown account")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownDestination = errors.New("unknown destination")
	ErrEmptyImport        = errors.New("no valid rows in file")
	ErrAlreadyConfigured  = errors.New("household is already configured")
)
