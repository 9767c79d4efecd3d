package applicationservice

import (
	"log/slog"

	httpadapter "kolab/contexts/fulfillment/application-service/adapters/http"
	"kolab/contexts/fulfillment/application-service/adapters/memory"
	"kolab/contexts/fulfillment/application-service/application/commands"
	"kolab/contexts/fulfillment/application-service/application/queries"
	"kolab/contexts/fulfillment/application-service/domain/entities"
	"kolab/contexts/fulfillment/application-service/ports"
)

type Module struct {
	Handler   httpadapter.Handler
	Lifecycle commands.LifecycleUseCase
	Queries   queries.QueryUseCase
	Store     *memory.Store
}

type Dependencies struct {
	Repository ports.Repository
	Campaigns  ports.CampaignDirectory
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	lifecycle := commands.LifecycleUseCase{
		Repository: deps.Repository,
		Campaigns:  deps.Campaigns,
		Outbox:     deps.Outbox,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	updateShipping := commands.UpdateShippingUseCase{
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
		Lifecycle: lifecycle,
		Queries:   queryUseCase,
		Handler: httpadapter.Handler{
			Lifecycle:      lifecycle,
			UpdateShipping: updateShipping,
			Queries:        queryUseCase,
			Logger:         deps.Logger,
		},
	}
}

func NewInMemoryModule(campaigns []entities.Campaign, logger *slog.Logger) Module {
	store := memory.NewStore(campaigns)
	module := NewModule(Dependencies{
		Repository: store,
		Campaigns:  store,
		Outbox:     store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
