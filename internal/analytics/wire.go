package analytics

import (
	"go.uber.org/zap"

	"storepulse/internal/analytics/controller"
	"storepulse/internal/analytics/service"
	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/eventbus"
)

type Module struct {
	Service    *service.AnalyticsService
	Controller *controller.Controller
}

func NewModule(sales service.Sales, inventory service.Inventory, c *cache.Cache, bus *eventbus.Bus, cfg *config.Config, logger *zap.Logger) *Module {
	svc := service.NewService(sales, inventory, service.NoopTracker{}, c, bus, service.Options{
		DashboardTTL: cfg.Cache.DashboardTTL,
		AnalyticsTTL: cfg.Cache.AnalyticsTTL,
	}, logger.Named("analytics"))
	return &Module{
		Service:    svc,
		Controller: controller.NewController(svc, logger),
	}
}
