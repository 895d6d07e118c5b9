package order

import (
	"go.uber.org/zap"

	"mytrade/internal/backend"
	"mytrade/internal/config"
	"mytrade/internal/order/controller"
	"mytrade/internal/order/service"
	"mytrade/internal/order/usecase"
)

// Audit is the order action trail: the MySQL repository or its no-op
// stand-in.
type Audit interface {
	usecase.AuditRecorder
	usecase.AuditReader
}

func NewModule(
	client *backend.Client,
	presence usecase.PresenceReader,
	audit Audit,
	publisher usecase.EventPublisher,
	expirer controller.SessionExpirer,
	cfg *config.Config,
	logger *zap.Logger,
) *controller.OrdersController {
	// The first read plus the configured retries.
	list := usecase.NewListOrdersUseCase(
		client,
		presence,
		logger,
		cfg.Backend.FetchRetryAttempts+1,
		cfg.Demo.Enabled,
	)

	dispatcher := service.NewMutationDispatcher(client, logger)

	perform := usecase.NewPerformActionUseCase(
		list,
		dispatcher,
		audit,
		publisher,
		logger,
	)

	history := usecase.NewOrderHistoryUseCase(list, audit, logger)

	return controller.NewOrdersController(list, perform, history, expirer, logger)
}
