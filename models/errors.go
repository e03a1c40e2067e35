package models

import "errors"

// Domain errors returned by Account operations. Callers compare with errors.Is.
var (
	ErrInvalidAmount      = errors.New("amount must be positive with at most two decimal places")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrRecipientNotFound  = errors.New("recipient account not found")
	ErrSameAccount        = errors.New("cannot transfer to the same account")
	ErrInvalidPhoneNumber = errors.New("invalid phone number")
	ErrInvalidCategory    = errors.New("account category must be Personal or Business")
)
