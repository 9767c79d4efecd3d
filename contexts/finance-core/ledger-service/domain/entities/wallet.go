package entities

import "time"

// Wallet balances are integer minor currency units. Balance is spendable;
// PendingBalance holds escrowed funds and payouts awaiting settlement.
type Wallet struct {
	WalletID       string
	UserID         string
	Balance        int64
	PendingBalance int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (w Wallet) CanSpend(amount int64) bool {
	return amount > 0 && w.Balance >= amount
}

func (w Wallet) CanReleasePending(amount int64) bool {
	return amount > 0 && w.PendingBalance >= amount
}
