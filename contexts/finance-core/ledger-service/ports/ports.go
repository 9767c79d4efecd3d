package ports

import (
	"context"
	"time"

	"kolab/contexts/finance-core/ledger-service/domain/entities"
)

type TransactionFilter struct {
	UserID string
	Type   entities.TransactionType
	Status entities.TransactionStatus
	Limit  int
	Offset int
}

type PayoutSettlement string

const (
	PayoutSettlementSuccess PayoutSettlement = "success"
	PayoutSettlementFailed  PayoutSettlement = "failed"
)

// Repository owns the atomic money moves. Every Apply* call must mutate the
// wallet balances and insert the matching transaction row as one unit, or
// leave both untouched on error.
type Repository interface {
	EnsureWallet(ctx context.Context, walletID string, userID string, now time.Time) (entities.Wallet, error)
	GetWallet(ctx context.Context, userID string) (entities.Wallet, error)
	ApplyDeposit(ctx context.Context, txn entities.Transaction) (entities.Transaction, error)
	ApplyEscrowHold(ctx context.Context, txn entities.Transaction) (entities.Transaction, error)
	// ApplyEscrowRelease debits the brand's pending balance and credits the
	// creator's spendable balance. The boolean reports a replayed release
	// that was skipped because the (type, reference, wallet) row already
	// exists.
	ApplyEscrowRelease(ctx context.Context, brandUserID string, txn entities.Transaction) (entities.Transaction, bool, error)
	ApplyPayoutRequest(ctx context.Context, txn entities.Transaction) (entities.Transaction, error)
	ApplyPayoutSettlement(ctx context.Context, transactionID string, outcome PayoutSettlement, now time.Time) (entities.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]entities.Transaction, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope struct {
	EventID       string
	EventType     string
	OccurredAt    time.Time
	SourceService string
	PartitionKey  string
	Data          []byte
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
