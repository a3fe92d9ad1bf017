package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrDuplicateTransaction = errors.New("transaction already has a grant")
	ErrCapExceeded          = errors.New("monthly points cap exceeded")
	ErrAlreadyVested        = errors.New("grant already vested")
	ErrAlreadyCancelled     = errors.New("grant already cancelled")
	ErrNotApproved          = errors.New("change not approved by governance")
	ErrAlreadyImplemented   = errors.New("change already implemented")
)
