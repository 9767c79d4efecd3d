package submissionservice

import (
	"log/slog"

	httpadapter "kolab/contexts/fulfillment/submission-service/adapters/http"
	"kolab/contexts/fulfillment/submission-service/adapters/memory"
	"kolab/contexts/fulfillment/submission-service/application/commands"
	"kolab/contexts/fulfillment/submission-service/application/queries"
	"kolab/contexts/fulfillment/submission-service/domain/entities"
	"kolab/contexts/fulfillment/submission-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Create  commands.CreateSubmissionUseCase
	Review  commands.ReviewSubmissionUseCase
	Queries queries.QueryUseCase
	Store   *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Gate       ports.FulfillmentGate
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	create := commands.CreateSubmissionUseCase{
		Repository: deps.Repository,
		Campaigns:  deps.Campaigns,
		Gate:       deps.Gate,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	review := commands.ReviewSubmissionUseCase{
		Repository: deps.Repository,
		Campaigns:  deps.Campaigns,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.QueryUseCase{
		Repository: deps.Repository,
		Campaigns:  deps.Campaigns,
		Logger:     deps.Logger,
	}

	return Module{
		Create:  create,
		Review:  review,
		Queries: queryUseCase,
		Handler: httpadapter.Handler{
			Create:  create,
			Review:  review,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(campaigns []entities.Campaign, gate ports.FulfillmentGate, logger *slog.Logger) Module {
	store := memory.NewStore(campaigns)
	module := NewModule(Dependencies{
		Repository: store,
		Campaigns:  store,
		Gate:       gate,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
