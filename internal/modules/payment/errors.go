package payment

import "errors"

var (
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrAlreadyInProgress = errors.New("payment already in progress")
	ErrNotFound          = errors.New("payment session not found")
	ErrNotResettable     = errors.New("only a failed payment can be reset")
	ErrNotRetryable      = errors.New("only an idle payment can be retried")
)
