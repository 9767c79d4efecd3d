package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type WalletDTO struct {
	WalletID       string `json:"wallet_id"`
	UserID         string `json:"user_id"`
	Balance        int64  `json:"balance"`
	PendingBalance int64  `json:"pending_balance"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type TransactionDTO struct {
	TransactionID string `json:"transaction_id"`
	WalletID      string `json:"wallet_id"`
	UserID        string `json:"user_id"`
	Amount        int64  `json:"amount"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	ReferenceID   string `json:"reference_id,omitempty"`
	Description   string `json:"description,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	CreatedAt     string `json:"created_at"`
	SettledAt     string `json:"settled_at,omitempty"`
}

type GetWalletResponse struct {
	Wallet WalletDTO `json:"wallet"`
}

type ListTransactionsResponse struct {
	Items []TransactionDTO `json:"items"`
}

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

type HoldEscrowRequest struct {
	CampaignID string `json:"campaign_id"`
	Amount     int64  `json:"amount"`
}

type ReleaseEscrowRequest struct {
	CampaignID    string `json:"campaign_id"`
	BrandUserID   string `json:"brand_user_id"`
	CreatorUserID string `json:"creator_user_id"`
	Amount        int64  `json:"amount"`
	Description   string `json:"description"`
}

type RequestPayoutRequest struct {
	Amount        int64  `json:"amount"`
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

type SettlePayoutRequest struct {
	Outcome string `json:"outcome"`
}

type TransactionResponse struct {
	Transaction TransactionDTO `json:"transaction"`
}

type InsufficientFundsDetail struct {
	Required  int64 `json:"required"`
	Available int64 `json:"available"`
}
