package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"kolab/contexts/finance-core/ledger-service/domain/entities"
	domainerrors "kolab/contexts/finance-core/ledger-service/domain/errors"
	"kolab/contexts/finance-core/ledger-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) EnsureWallet(ctx context.Context, walletID string, userID string, now time.Time) (entities.Wallet, error) {
	row := walletModel{
		WalletID:  strings.TrimSpace(walletID),
		UserID:    strings.TrimSpace(userID),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return entities.Wallet{}, createResult.Error
	}
	return r.GetWallet(ctx, userID)
}

func (r *Repository) GetWallet(ctx context.Context, userID string) (entities.Wallet, error) {
	var row walletModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Wallet{}, domainerrors.ErrWalletNotFound
		}
		return entities.Wallet{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ApplyDeposit(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, txn.WalletID)
		if err != nil {
			return err
		}
		if err := updateWalletBalances(tx, wallet.WalletID, wallet.Balance+txn.Amount, wallet.PendingBalance, txn.CreatedAt); err != nil {
			return err
		}
		return insertTransaction(tx, txn)
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return txn, nil
}

func (r *Repository) ApplyEscrowHold(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, txn.WalletID)
		if err != nil {
			return err
		}
		if wallet.Balance < txn.Amount {
			return domainerrors.InsufficientFundsError{
				Required:  txn.Amount,
				Available: wallet.Balance,
			}
		}
		if err := updateWalletBalances(tx, wallet.WalletID, wallet.Balance-txn.Amount, wallet.PendingBalance+txn.Amount, txn.CreatedAt); err != nil {
			return err
		}
		return insertTransaction(tx, txn)
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return txn, nil
}

func (r *Repository) ApplyEscrowRelease(ctx context.Context, brandUserID string, txn entities.Transaction) (entities.Transaction, bool, error) {
	applied := txn
	replayed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var brandRow walletModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", strings.TrimSpace(brandUserID)).
			First(&brandRow).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrWalletNotFound
			}
			return err
		}
		creatorRow, err := lockWallet(tx, txn.WalletID)
		if err != nil {
			return err
		}

		// Both wallet rows are now locked, so the replay check below
		// cannot race with a concurrent release of the same reference.
		var existing transactionModel
		err = tx.Where("type = ?", string(entities.TransactionTypeEarning)).
			Where("reference_id = ?", txn.ReferenceID).
			Where("wallet_id = ?", txn.WalletID).
			First(&existing).
			Error
		if err == nil {
			applied = existing.toEntity()
			replayed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if brandRow.PendingBalance < txn.Amount {
			return domainerrors.InsufficientFundsError{
				Required:  txn.Amount,
				Available: brandRow.PendingBalance,
			}
		}
		if err := updateWalletBalances(tx, brandRow.WalletID, brandRow.Balance, brandRow.PendingBalance-txn.Amount, txn.CreatedAt); err != nil {
			return err
		}
		if err := updateWalletBalances(tx, creatorRow.WalletID, creatorRow.Balance+txn.Amount, creatorRow.PendingBalance, txn.CreatedAt); err != nil {
			return err
		}
		if err := insertTransaction(tx, txn); err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrConcurrentWalletEdit
			}
			return err
		}
		return nil
	})
	if err != nil {
		return entities.Transaction{}, false, err
	}
	return applied, replayed, nil
}

func (r *Repository) ApplyPayoutRequest(ctx context.Context, txn entities.Transaction) (entities.Transaction, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallet, err := lockWallet(tx, txn.WalletID)
		if err != nil {
			return err
		}
		if wallet.Balance < txn.Amount {
			return domainerrors.InsufficientFundsError{
				Required:  txn.Amount,
				Available: wallet.Balance,
			}
		}
		if err := updateWalletBalances(tx, wallet.WalletID, wallet.Balance-txn.Amount, wallet.PendingBalance+txn.Amount, txn.CreatedAt); err != nil {
			return err
		}
		return insertTransaction(tx, txn)
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return txn, nil
}

func (r *Repository) ApplyPayoutSettlement(
	ctx context.Context,
	transactionID string,
	outcome ports.PayoutSettlement,
	now time.Time,
) (entities.Transaction, error) {
	var applied entities.Transaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row transactionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("transaction_id = ?", strings.TrimSpace(transactionID)).
			First(&row).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTransactionNotFound
			}
			return err
		}
		if row.Type != string(entities.TransactionTypeWithdrawal) {
			return domainerrors.ErrInvalidSettlement
		}
		if row.Status != string(entities.TransactionStatusPending) {
			return domainerrors.ErrTransactionSettled
		}

		wallet, err := lockWallet(tx, row.WalletID)
		if err != nil {
			return err
		}
		if wallet.PendingBalance < row.Amount {
			return domainerrors.ErrConcurrentWalletEdit
		}

		balance := wallet.Balance
		status := entities.TransactionStatusSuccess
		if outcome == ports.PayoutSettlementFailed {
			balance += row.Amount
			status = entities.TransactionStatusFailed
		}
		if err := updateWalletBalances(tx, wallet.WalletID, balance, wallet.PendingBalance-row.Amount, now); err != nil {
			return err
		}

		settledAt := now.UTC()
		result := tx.Model(&transactionModel{}).
			Where("transaction_id = ?", row.TransactionID).
			Where("status = ?", string(entities.TransactionStatusPending)).
			Updates(map[string]any{
				"status":     string(status),
				"settled_at": settledAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrTransactionSettled
		}

		row.Status = string(status)
		row.SettledAt = &settledAt
		applied = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.Transaction{}, err
	}
	return applied, nil
}

func (r *Repository) GetTransaction(ctx context.Context, transactionID string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", strings.TrimSpace(transactionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]entities.Transaction, error) {
	tx := r.db.WithContext(ctx).Model(&transactionModel{}).
		Where("user_id = ?", strings.TrimSpace(filter.UserID))
	if filter.Type != "" {
		tx = tx.Where("type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var rows []transactionModel
	if err := tx.Order("created_at DESC").Limit(limit).Offset(filter.Offset).Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      append([]byte(nil), envelope.Data...),
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "outbox_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidLedgerInput
	}
	return nil
}

func lockWallet(tx *gorm.DB, walletID string) (walletModel, error) {
	var row walletModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("wallet_id = ?", strings.TrimSpace(walletID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return walletModel{}, domainerrors.ErrWalletNotFound
		}
		return walletModel{}, err
	}
	return row, nil
}

func updateWalletBalances(tx *gorm.DB, walletID string, balance int64, pending int64, now time.Time) error {
	if balance < 0 || pending < 0 {
		return domainerrors.ErrConcurrentWalletEdit
	}
	return tx.Model(&walletModel{}).
		Where("wallet_id = ?", walletID).
		Updates(map[string]any{
			"balance":         balance,
			"pending_balance": pending,
			"updated_at":      now.UTC(),
		}).
		Error
}

func insertTransaction(tx *gorm.DB, txn entities.Transaction) error {
	row := transactionModelFromEntity(txn)
	return tx.Create(&row).Error
}

type walletModel struct {
	WalletID       string    `gorm:"column:wallet_id;primaryKey"`
	UserID         string    `gorm:"column:user_id;uniqueIndex"`
	Balance        int64     `gorm:"column:balance"`
	PendingBalance int64     `gorm:"column:pending_balance"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (walletModel) TableName() string {
	return "wallets"
}

func (m walletModel) toEntity() entities.Wallet {
	return entities.Wallet{
		WalletID:       m.WalletID,
		UserID:         m.UserID,
		Balance:        m.Balance,
		PendingBalance: m.PendingBalance,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type transactionModel struct {
	TransactionID string     `gorm:"column:transaction_id;primaryKey"`
	WalletID      string     `gorm:"column:wallet_id;index"`
	UserID        string     `gorm:"column:user_id;index"`
	Amount        int64      `gorm:"column:amount"`
	Type          string     `gorm:"column:type"`
	Status        string     `gorm:"column:status"`
	ReferenceID   string     `gorm:"column:reference_id;index"`
	ReleaseKey    *string    `gorm:"column:release_key;uniqueIndex"`
	Description   string     `gorm:"column:description"`
	BankName      string     `gorm:"column:bank_name"`
	AccountNumber string     `gorm:"column:account_number"`
	AccountName   string     `gorm:"column:account_name"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	SettledAt     *time.Time `gorm:"column:settled_at"`
}

func (transactionModel) TableName() string {
	return "ledger_transactions"
}

func transactionModelFromEntity(item entities.Transaction) transactionModel {
	row := transactionModel{
		TransactionID: strings.TrimSpace(item.TransactionID),
		WalletID:      strings.TrimSpace(item.WalletID),
		UserID:        strings.TrimSpace(item.UserID),
		Amount:        item.Amount,
		Type:          string(item.Type),
		Status:        string(item.Status),
		ReferenceID:   strings.TrimSpace(item.ReferenceID),
		Description:   strings.TrimSpace(item.Description),
		BankName:      strings.TrimSpace(item.BankName),
		AccountNumber: strings.TrimSpace(item.AccountNumber),
		AccountName:   strings.TrimSpace(item.AccountName),
		CreatedAt:     item.CreatedAt.UTC(),
		SettledAt:     normalizeOptionalTime(item.SettledAt),
	}
	// One earning row per (reference, wallet); the nullable key keeps the
	// constraint off deposits, holds, and withdrawals.
	if item.Type == entities.TransactionTypeEarning && row.ReferenceID != "" {
		key := row.ReferenceID + ":" + row.WalletID
		row.ReleaseKey = &key
	}
	return row
}

func (m transactionModel) toEntity() entities.Transaction {
	return entities.Transaction{
		TransactionID: m.TransactionID,
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          entities.TransactionType(m.Type),
		Status:        entities.TransactionStatus(m.Status),
		ReferenceID:   m.ReferenceID,
		Description:   m.Description,
		BankName:      m.BankName,
		AccountNumber: m.AccountNumber,
		AccountName:   m.AccountName,
		CreatedAt:     m.CreatedAt.UTC(),
		SettledAt:     normalizeOptionalTime(m.SettledAt),
	}
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "ledger_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
