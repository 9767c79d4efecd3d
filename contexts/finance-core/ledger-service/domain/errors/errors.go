package errors

import (
	"errors"
	"fmt"
)

var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidAmount        = errors.New("amount must be a positive number of minor units")
	ErrInvalidBankDetails   = errors.New("bank name, account number and account name are required")
	ErrInvalidLedgerInput   = errors.New("invalid ledger input")
	ErrUnauthorizedActor    = errors.New("actor is not authorized")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrTransactionSettled   = errors.New("transaction is already settled")
	ErrInvalidSettlement    = errors.New("settlement outcome must be success or failed")
	ErrConcurrentWalletEdit = errors.New("wallet was modified concurrently")
)

// InsufficientFundsError carries the balance detail callers need to render
// a specific message. errors.Is(err, ErrInsufficientFunds) still matches.
type InsufficientFundsError struct {
	Required  int64
	Available int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %d, available %d", e.Required, e.Available)
}

func (e InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
