package entities

import (
	"strings"
	"time"
)

type TransactionType string
type TransactionStatus string

const (
	TransactionTypeDeposit       TransactionType = "deposit"
	TransactionTypeWithdrawal    TransactionType = "withdrawal"
	TransactionTypeEarning       TransactionType = "earning"
	TransactionTypeEscrowHold    TransactionType = "escrow_hold"
	TransactionTypeEscrowRelease TransactionType = "escrow_release"
	TransactionTypeRefund        TransactionType = "refund"

	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is an append-only ledger record. Rows are never rewritten;
// only a pending withdrawal may flip to success or failed once the external
// processor reports back.
type Transaction struct {
	TransactionID string
	WalletID      string
	UserID        string
	Amount        int64
	Type          TransactionType
	Status        TransactionStatus
	ReferenceID   string
	Description   string
	BankName      string
	AccountNumber string
	AccountName   string
	CreatedAt     time.Time
	SettledAt     *time.Time
}

type BankDetails struct {
	BankName      string
	AccountNumber string
	AccountName   string
}

func (b BankDetails) Valid() bool {
	return strings.TrimSpace(b.BankName) != "" &&
		strings.TrimSpace(b.AccountNumber) != "" &&
		strings.TrimSpace(b.AccountName) != ""
}

func IsSupportedTransactionType(value TransactionType) bool {
	switch value {
	case TransactionTypeDeposit,
		TransactionTypeWithdrawal,
		TransactionTypeEarning,
		TransactionTypeEscrowHold,
		TransactionTypeEscrowRelease,
		TransactionTypeRefund:
		return true
	default:
		return false
	}
}
