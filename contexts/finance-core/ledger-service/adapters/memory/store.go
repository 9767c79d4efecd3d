package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"kolab/contexts/finance-core/ledger-service/domain/entities"
	domainerrors "kolab/contexts/finance-core/ledger-service/domain/errors"
	"kolab/contexts/finance-core/ledger-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory ledger used by tests. The single mutex stands in
// for the row locks the postgres adapter takes, so every Apply* call is
// atomic with respect to the others.
type Store struct {
	mu sync.Mutex

	wallets      map[string]entities.Wallet
	transactions map[string]entities.Transaction
	outbox       []ports.OutboxMessage
	published    map[string]bool
}

func NewStore() *Store {
	return &Store{
		wallets:      make(map[string]entities.Wallet),
		transactions: make(map[string]entities.Transaction),
		published:    make(map[string]bool),
	}
}

func (s *Store) EnsureWallet(_ context.Context, walletID string, userID string, now time.Time) (entities.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID = strings.TrimSpace(userID)
	if wallet, exists := s.wallets[userID]; exists {
		return wallet, nil
	}
	wallet := entities.Wallet{
		WalletID:  strings.TrimSpace(walletID),
		UserID:    userID,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	s.wallets[userID] = wallet
	return wallet, nil
}

func (s *Store) GetWallet(_ context.Context, userID string) (entities.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.walletLocked(userID)
}

func (s *Store) ApplyDeposit(_ context.Context, txn entities.Transaction) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := s.walletLocked(txn.UserID)
	if err != nil {
		return entities.Transaction{}, err
	}
	wallet.Balance += txn.Amount
	wallet.UpdatedAt = txn.CreatedAt
	s.wallets[wallet.UserID] = wallet
	s.transactions[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) ApplyEscrowHold(_ context.Context, txn entities.Transaction) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := s.walletLocked(txn.UserID)
	if err != nil {
		return entities.Transaction{}, err
	}
	if wallet.Balance < txn.Amount {
		return entities.Transaction{}, domainerrors.InsufficientFundsError{
			Required:  txn.Amount,
			Available: wallet.Balance,
		}
	}
	wallet.Balance -= txn.Amount
	wallet.PendingBalance += txn.Amount
	wallet.UpdatedAt = txn.CreatedAt
	s.wallets[wallet.UserID] = wallet
	s.transactions[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) ApplyEscrowRelease(_ context.Context, brandUserID string, txn entities.Transaction) (entities.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.transactions {
		if existing.Type == entities.TransactionTypeEarning &&
			existing.ReferenceID == txn.ReferenceID &&
			existing.WalletID == txn.WalletID {
			return existing, true, nil
		}
	}

	brand, err := s.walletLocked(brandUserID)
	if err != nil {
		return entities.Transaction{}, false, err
	}
	creator, err := s.walletLocked(txn.UserID)
	if err != nil {
		return entities.Transaction{}, false, err
	}
	if brand.PendingBalance < txn.Amount {
		return entities.Transaction{}, false, domainerrors.InsufficientFundsError{
			Required:  txn.Amount,
			Available: brand.PendingBalance,
		}
	}

	brand.PendingBalance -= txn.Amount
	brand.UpdatedAt = txn.CreatedAt
	creator.Balance += txn.Amount
	creator.UpdatedAt = txn.CreatedAt
	s.wallets[brand.UserID] = brand
	s.wallets[creator.UserID] = creator
	s.transactions[txn.TransactionID] = txn
	return txn, false, nil
}

func (s *Store) ApplyPayoutRequest(_ context.Context, txn entities.Transaction) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := s.walletLocked(txn.UserID)
	if err != nil {
		return entities.Transaction{}, err
	}
	if wallet.Balance < txn.Amount {
		return entities.Transaction{}, domainerrors.InsufficientFundsError{
			Required:  txn.Amount,
			Available: wallet.Balance,
		}
	}
	wallet.Balance -= txn.Amount
	wallet.PendingBalance += txn.Amount
	wallet.UpdatedAt = txn.CreatedAt
	s.wallets[wallet.UserID] = wallet
	s.transactions[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) ApplyPayoutSettlement(
	_ context.Context,
	transactionID string,
	outcome ports.PayoutSettlement,
	now time.Time,
) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, exists := s.transactions[strings.TrimSpace(transactionID)]
	if !exists {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	if txn.Type != entities.TransactionTypeWithdrawal {
		return entities.Transaction{}, domainerrors.ErrInvalidSettlement
	}
	if txn.Status != entities.TransactionStatusPending {
		return entities.Transaction{}, domainerrors.ErrTransactionSettled
	}

	wallet, err := s.walletLocked(txn.UserID)
	if err != nil {
		return entities.Transaction{}, err
	}
	if wallet.PendingBalance < txn.Amount {
		return entities.Transaction{}, domainerrors.ErrConcurrentWalletEdit
	}

	wallet.PendingBalance -= txn.Amount
	txn.Status = entities.TransactionStatusSuccess
	if outcome == ports.PayoutSettlementFailed {
		wallet.Balance += txn.Amount
		txn.Status = entities.TransactionStatusFailed
	}
	settledAt := now.UTC()
	txn.SettledAt = &settledAt
	wallet.UpdatedAt = settledAt

	s.wallets[wallet.UserID] = wallet
	s.transactions[txn.TransactionID] = txn
	return txn, nil
}

func (s *Store) GetTransaction(_ context.Context, transactionID string) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, exists := s.transactions[strings.TrimSpace(transactionID)]
	if !exists {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *Store) ListTransactions(_ context.Context, filter ports.TransactionFilter) ([]entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]entities.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		if txn.UserID != strings.TrimSpace(filter.UserID) {
			continue
		}
		if filter.Type != "" && txn.Type != filter.Type {
			continue
		}
		if filter.Status != "" && txn.Status != filter.Status {
			continue
		}
		items = append(items, txn)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.outbox = append(s.outbox, ports.OutboxMessage{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      append([]byte(nil), envelope.Data...),
		CreatedAt:    envelope.OccurredAt.UTC(),
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, message := range s.outbox {
		if s.published[message.OutboxID] {
			continue
		}
		items = append(items, message)
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published[strings.TrimSpace(outboxID)] = true
	return nil
}

// PendingOutboxTypes lists unpublished event types, oldest first. Test helper.
func (s *Store) PendingOutboxTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := make([]string, 0, len(s.outbox))
	for _, message := range s.outbox {
		if s.published[message.OutboxID] {
			continue
		}
		types = append(types, message.EventType)
	}
	return types
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) walletLocked(userID string) (entities.Wallet, error) {
	wallet, exists := s.wallets[strings.TrimSpace(userID)]
	if !exists {
		return entities.Wallet{}, domainerrors.ErrWalletNotFound
	}
	return wallet, nil
}
