package settlementservice

import (
	"log/slog"

	httpadapter "kolab/contexts/fulfillment/settlement-service/adapters/http"
	"kolab/contexts/fulfillment/settlement-service/application"
	"kolab/contexts/fulfillment/settlement-service/application/workers"
	"kolab/contexts/fulfillment/settlement-service/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Settlement application.SettlementUseCase
	Consumer   workers.SettlementConsumer
}

type Dependencies struct {
	Campaigns    ports.CampaignDirectory
	Submissions  ports.Submissions
	Applications ports.Applications
	Escrow       ports.Escrow
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	settlement := application.SettlementUseCase{
		Campaigns:    deps.Campaigns,
		Submissions:  deps.Submissions,
		Applications: deps.Applications,
		Escrow:       deps.Escrow,
		Logger:       deps.Logger,
	}
	return Module{
		Settlement: settlement,
		Consumer: workers.SettlementConsumer{
			Settlement: settlement,
			Logger:     deps.Logger,
		},
		Handler: httpadapter.Handler{
			Settlement: settlement,
			Logger:     deps.Logger,
		},
	}
}
