package banking

import "errors"

var (
	// ErrAccountNotFound is returned for operations on an unknown account id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials covers both an unknown id and a wrong passcode.
	ErrInvalidCredentials = errors.New("account ID or passcode is incorrect")
	// ErrNoFreeIdentifier means every five-digit account id is taken.
	ErrNoFreeIdentifier = errors.New("no free account identifier")
)
