package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

type SettlementReportResponse struct {
	CampaignID     string   `json:"campaign_id"`
	ReleasedCount  int      `json:"released_count"`
	TransactionIDs []string `json:"transaction_ids,omitempty"`
}
