package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCallNotFound      = errors.New("call not found")
	ErrCallExists        = errors.New("call already exists")
	ErrBusy              = errors.New("busy")
	ErrEmptyTransaction  = errors.New("transaction has no actions")
	ErrInvalidHandle     = errors.New("handle value cannot be empty")
	ErrInvalidTransition = errors.New("invalid call state transition")
)

// RequestError reports that the call backend rejected a transaction.
type RequestError struct {
	Transaction TransactionID
	Err         error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Transaction, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
