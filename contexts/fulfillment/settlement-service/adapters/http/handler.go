package httpadapter

import (
	"context"
	"log/slog"

	"kolab/contexts/fulfillment/settlement-service/application"
	httptransport "kolab/contexts/fulfillment/settlement-service/transport/http"
)

type Handler struct {
	Settlement application.SettlementUseCase
	Logger     *slog.Logger
}

func (h Handler) CompleteCampaignHandler(ctx context.Context, actorID string, campaignID string) (httptransport.SettlementReportResponse, error) {
	report, err := h.Settlement.CompleteCampaign(ctx, application.CompleteCampaignCommand{
		ActorID:    actorID,
		CampaignID: campaignID,
	})
	if err != nil {
		return httptransport.SettlementReportResponse{}, err
	}
	return httptransport.SettlementReportResponse{
		CampaignID:     report.CampaignID,
		ReleasedCount:  report.ReleasedCount,
		TransactionIDs: report.TransactionIDs,
	}, nil
}
