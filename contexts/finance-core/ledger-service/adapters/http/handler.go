package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"kolab/contexts/finance-core/ledger-service/application"
	"kolab/contexts/finance-core/ledger-service/domain/entities"
	"kolab/contexts/finance-core/ledger-service/ports"
	httptransport "kolab/contexts/finance-core/ledger-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetWalletHandler(ctx context.Context, userID string) (httptransport.GetWalletResponse, error) {
	wallet, err := h.Service.GetWallet(ctx, userID)
	if err != nil {
		return httptransport.GetWalletResponse{}, err
	}
	return httptransport.GetWalletResponse{Wallet: mapWallet(wallet)}, nil
}

func (h Handler) ListTransactionsHandler(
	ctx context.Context,
	userID string,
	txnType string,
	status string,
	limit int,
	offset int,
) (httptransport.ListTransactionsResponse, error) {
	items, err := h.Service.ListTransactions(ctx, ports.TransactionFilter{
		UserID: userID,
		Type:   entities.TransactionType(txnType),
		Status: entities.TransactionStatus(status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httptransport.ListTransactionsResponse{}, err
	}
	result := make([]httptransport.TransactionDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapTransaction(item))
	}
	return httptransport.ListTransactionsResponse{Items: result}, nil
}

func (h Handler) DepositHandler(ctx context.Context, userID string, req httptransport.DepositRequest) (httptransport.TransactionResponse, error) {
	txn, err := h.Service.Deposit(ctx, userID, req.Amount)
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return httptransport.TransactionResponse{Transaction: mapTransaction(txn)}, nil
}

func (h Handler) HoldEscrowHandler(ctx context.Context, brandUserID string, req httptransport.HoldEscrowRequest) (httptransport.TransactionResponse, error) {
	txn, err := h.Service.HoldEscrow(ctx, application.HoldEscrowCommand{
		BrandUserID: brandUserID,
		CampaignID:  req.CampaignID,
		Amount:      req.Amount,
	})
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return httptransport.TransactionResponse{Transaction: mapTransaction(txn)}, nil
}

func (h Handler) ReleaseEscrowHandler(ctx context.Context, req httptransport.ReleaseEscrowRequest) (httptransport.TransactionResponse, error) {
	txn, err := h.Service.ReleaseEscrow(ctx, application.ReleaseEscrowCommand{
		CampaignID:    req.CampaignID,
		BrandUserID:   req.BrandUserID,
		CreatorUserID: req.CreatorUserID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return httptransport.TransactionResponse{Transaction: mapTransaction(txn)}, nil
}

func (h Handler) RequestPayoutHandler(ctx context.Context, userID string, req httptransport.RequestPayoutRequest) (httptransport.TransactionResponse, error) {
	txn, err := h.Service.RequestPayout(ctx, application.RequestPayoutCommand{
		UserID: userID,
		Amount: req.Amount,
		Bank: entities.BankDetails{
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
		},
	})
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return httptransport.TransactionResponse{Transaction: mapTransaction(txn)}, nil
}

func (h Handler) SettlePayoutHandler(ctx context.Context, transactionID string, req httptransport.SettlePayoutRequest) (httptransport.TransactionResponse, error) {
	txn, err := h.Service.SettlePayout(ctx, transactionID, ports.PayoutSettlement(req.Outcome))
	if err != nil {
		return httptransport.TransactionResponse{}, err
	}
	return httptransport.TransactionResponse{Transaction: mapTransaction(txn)}, nil
}

func mapWallet(item entities.Wallet) httptransport.WalletDTO {
	return httptransport.WalletDTO{
		WalletID:       item.WalletID,
		UserID:         item.UserID,
		Balance:        item.Balance,
		PendingBalance: item.PendingBalance,
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      item.UpdatedAt.Format(time.RFC3339),
	}
}

func mapTransaction(item entities.Transaction) httptransport.TransactionDTO {
	dto := httptransport.TransactionDTO{
		TransactionID: item.TransactionID,
		WalletID:      item.WalletID,
		UserID:        item.UserID,
		Amount:        item.Amount,
		Type:          string(item.Type),
		Status:        string(item.Status),
		ReferenceID:   item.ReferenceID,
		Description:   item.Description,
		BankName:      item.BankName,
		AccountNumber: item.AccountNumber,
		AccountName:   item.AccountName,
		CreatedAt:     item.CreatedAt.Format(time.RFC3339),
	}
	if item.SettledAt != nil {
		dto.SettledAt = item.SettledAt.Format(time.RFC3339)
	}
	return dto
}
