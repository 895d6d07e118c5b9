package product

import (
	"go.uber.org/zap"
)

func NewModule(catalog Catalog, expirer SessionExpirer, logger *zap.Logger) *Controller {
	svc := NewService(catalog)
	uc := NewSearchUseCase(svc)
	return NewController(uc, expirer, logger)
}
