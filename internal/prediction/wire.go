package prediction

import (
	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/prediction/controller"
	"storepulse/internal/prediction/service"
)

func NewModule(sales service.DailySales, c *cache.Cache, cfg *config.Config, logger *zap.Logger) *controller.Controller {
	svc := service.NewService(sales, c, cfg.Cache.PredictionTTL, logger.Named("prediction"))
	return controller.NewController(svc, logger)
}
