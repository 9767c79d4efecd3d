package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"kolab/contexts/finance-core/ledger-service/domain/entities"
	domainerrors "kolab/contexts/finance-core/ledger-service/domain/errors"
	"kolab/contexts/finance-core/ledger-service/ports"
)

// Service exposes the ledger operations. All balance arithmetic happens
// inside the repository so that the wallet mutation and its transaction row
// commit as one unit; this layer validates input, shapes the transaction
// record, and emits outbox events.
type Service struct {
	Repo   ports.Repository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

type HoldEscrowCommand struct {
	BrandUserID string
	CampaignID  string
	Amount      int64
}

type ReleaseEscrowCommand struct {
	CampaignID    string
	BrandUserID   string
	CreatorUserID string
	Amount        int64
	Description   string
}

type RequestPayoutCommand struct {
	UserID string
	Amount int64
	Bank   entities.BankDetails
}

func (s Service) EnsureWallet(ctx context.Context, userID string) (entities.Wallet, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Wallet{}, domainerrors.ErrInvalidLedgerInput
	}
	walletID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Wallet{}, err
	}
	return s.Repo.EnsureWallet(ctx, walletID, userID, s.now())
}

func (s Service) Deposit(ctx context.Context, userID string, amount int64) (entities.Transaction, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return entities.Transaction{}, domainerrors.ErrInvalidLedgerInput
	}
	if amount <= 0 {
		return entities.Transaction{}, domainerrors.ErrInvalidAmount
	}

	wallet, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn, err := s.newTransaction(ctx, wallet, amount, entities.TransactionTypeDeposit, entities.TransactionStatusSuccess)
	if err != nil {
		return entities.Transaction{}, err
	}

	applied, err := s.Repo.ApplyDeposit(ctx, txn)
	if err != nil {
		return entities.Transaction{}, err
	}

	ResolveLogger(s.Logger).Info("deposit recorded",
		"event", "ledger_deposit_recorded",
		"module", "finance-core/ledger-service",
		"layer", "application",
		"user_id", userID,
		"transaction_id", applied.TransactionID,
		"amount", applied.Amount,
	)
	return applied, nil
}

func (s Service) HoldEscrow(ctx context.Context, cmd HoldEscrowCommand) (entities.Transaction, error) {
	brandID := strings.TrimSpace(cmd.BrandUserID)
	campaignID := strings.TrimSpace(cmd.CampaignID)
	if brandID == "" || campaignID == "" {
		return entities.Transaction{}, domainerrors.ErrInvalidLedgerInput
	}
	if cmd.Amount <= 0 {
		return entities.Transaction{}, domainerrors.ErrInvalidAmount
	}

	wallet, err := s.EnsureWallet(ctx, brandID)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn, err := s.newTransaction(ctx, wallet, cmd.Amount, entities.TransactionTypeEscrowHold, entities.TransactionStatusSuccess)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn.ReferenceID = campaignID

	applied, err := s.Repo.ApplyEscrowHold(ctx, txn)
	if err != nil {
		return entities.Transaction{}, err
	}

	if err := s.appendOutbox(ctx, "ledger.escrow_held", campaignID, map[string]any{
		"campaign_id":    campaignID,
		"brand_user_id":  brandID,
		"amount":         applied.Amount,
		"transaction_id": applied.TransactionID,
	}); err != nil {
		return entities.Transaction{}, err
	}

	ResolveLogger(s.Logger).Info("escrow held",
		"event", "ledger_escrow_held",
		"module", "finance-core/ledger-service",
		"layer", "application",
		"campaign_id", campaignID,
		"brand_user_id", brandID,
		"amount", applied.Amount,
	)
	return applied, nil
}

// ReleaseEscrow moves held brand funds to the creator's spendable balance.
// The call is idempotent per (campaign, creator wallet): a replay returns
// the original transaction without crediting twice.
func (s Service) ReleaseEscrow(ctx context.Context, cmd ReleaseEscrowCommand) (entities.Transaction, error) {
	campaignID := strings.TrimSpace(cmd.CampaignID)
	brandID := strings.TrimSpace(cmd.BrandUserID)
	creatorID := strings.TrimSpace(cmd.CreatorUserID)
	if campaignID == "" || brandID == "" || creatorID == "" {
		return entities.Transaction{}, domainerrors.ErrInvalidLedgerInput
	}
	if cmd.Amount <= 0 {
		return entities.Transaction{}, domainerrors.ErrInvalidAmount
	}

	if _, err := s.EnsureWallet(ctx, brandID); err != nil {
		return entities.Transaction{}, err
	}
	wallet, err := s.EnsureWallet(ctx, creatorID)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn, err := s.newTransaction(ctx, wallet, cmd.Amount, entities.TransactionTypeEarning, entities.TransactionStatusSuccess)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn.ReferenceID = campaignID
	txn.Description = strings.TrimSpace(cmd.Description)

	applied, replayed, err := s.Repo.ApplyEscrowRelease(ctx, brandID, txn)
	if err != nil {
		return entities.Transaction{}, err
	}
	if replayed {
		ResolveLogger(s.Logger).Info("escrow release replayed",
			"event", "ledger_escrow_release_replayed",
			"module", "finance-core/ledger-service",
			"layer", "application",
			"campaign_id", campaignID,
			"creator_user_id", creatorID,
		)
		return applied, nil
	}

	if err := s.appendOutbox(ctx, "ledger.escrow_released", campaignID, map[string]any{
		"campaign_id":     campaignID,
		"brand_user_id":   brandID,
		"creator_user_id": creatorID,
		"amount":          applied.Amount,
		"transaction_id":  applied.TransactionID,
	}); err != nil {
		return entities.Transaction{}, err
	}

	ResolveLogger(s.Logger).Info("escrow released",
		"event", "ledger_escrow_released",
		"module", "finance-core/ledger-service",
		"layer", "application",
		"campaign_id", campaignID,
		"brand_user_id", brandID,
		"creator_user_id", creatorID,
		"amount", applied.Amount,
	)
	return applied, nil
}

func (s Service) RequestPayout(ctx context.Context, cmd RequestPayoutCommand) (entities.Transaction, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.Transaction{}, domainerrors.ErrInvalidLedgerInput
	}
	if cmd.Amount <= 0 {
		return entities.Transaction{}, domainerrors.ErrInvalidAmount
	}
	if !cmd.Bank.Valid() {
		return entities.Transaction{}, domainerrors.ErrInvalidBankDetails
	}

	wallet, err := s.EnsureWallet(ctx, userID)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn, err := s.newTransaction(ctx, wallet, cmd.Amount, entities.TransactionTypeWithdrawal, entities.TransactionStatusPending)
	if err != nil {
		return entities.Transaction{}, err
	}
	txn.BankName = strings.TrimSpace(cmd.Bank.BankName)
	txn.AccountNumber = strings.TrimSpace(cmd.Bank.AccountNumber)
	txn.AccountName = strings.TrimSpace(cmd.Bank.AccountName)

	applied, err := s.Repo.ApplyPayoutRequest(ctx, txn)
	if err != nil {
		return entities.Transaction{}, err
	}

	if err := s.appendOutbox(ctx, "ledger.payout_requested", userID, map[string]any{
		"user_id":        userID,
		"amount":         applied.Amount,
		"transaction_id": applied.TransactionID,
	}); err != nil {
		return entities.Transaction{}, err
	}

	ResolveLogger(s.Logger).Info("payout requested",
		"event", "ledger_payout_requested",
		"module", "finance-core/ledger-service",
		"layer", "application",
		"user_id", userID,
		"transaction_id", applied.TransactionID,
		"amount", applied.Amount,
	)
	return applied, nil
}

// SettlePayout records the external processor's verdict on a pending
// withdrawal. A failed settlement restores the amount to the spendable
// balance; both outcomes clear the pending hold.
func (s Service) SettlePayout(ctx context.Context, transactionID string, outcome ports.PayoutSettlement) (entities.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return entities.Transaction{}, domainerrors.ErrInvalidLedgerInput
	}
	if outcome != ports.PayoutSettlementSuccess && outcome != ports.PayoutSettlementFailed {
		return entities.Transaction{}, domainerrors.ErrInvalidSettlement
	}

	applied, err := s.Repo.ApplyPayoutSettlement(ctx, transactionID, outcome, s.now())
	if err != nil {
		return entities.Transaction{}, err
	}

	if err := s.appendOutbox(ctx, "ledger.payout_settled", applied.UserID, map[string]any{
		"user_id":        applied.UserID,
		"transaction_id": applied.TransactionID,
		"outcome":        string(outcome),
		"amount":         applied.Amount,
	}); err != nil {
		return entities.Transaction{}, err
	}

	ResolveLogger(s.Logger).Info("payout settled",
		"event", "ledger_payout_settled",
		"module", "finance-core/ledger-service",
		"layer", "application",
		"transaction_id", applied.TransactionID,
		"outcome", string(outcome),
	)
	return applied, nil
}

func (s Service) GetWallet(ctx context.Context, userID string) (entities.Wallet, error) {
	return s.EnsureWallet(ctx, userID)
}

func (s Service) ListTransactions(ctx context.Context, filter ports.TransactionFilter) ([]entities.Transaction, error) {
	if strings.TrimSpace(filter.UserID) == "" {
		return nil, domainerrors.ErrInvalidLedgerInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Repo.ListTransactions(ctx, filter)
}

func (s Service) newTransaction(
	ctx context.Context,
	wallet entities.Wallet,
	amount int64,
	txnType entities.TransactionType,
	status entities.TransactionStatus,
) (entities.Transaction, error) {
	transactionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Transaction{}, err
	}
	return entities.Transaction{
		TransactionID: transactionID,
		WalletID:      wallet.WalletID,
		UserID:        wallet.UserID,
		Amount:        amount,
		Type:          txnType,
		Status:        status,
		CreatedAt:     s.now(),
	}, nil
}

func (s Service) appendOutbox(ctx context.Context, eventType string, partitionKey string, payload map[string]any) error {
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    s.now(),
		SourceService: "ledger-service",
		PartitionKey:  partitionKey,
		Data:          data,
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
