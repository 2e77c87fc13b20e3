package sales

import (
	"database/sql"

	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/eventbus"
	"storepulse/internal/infrastructure/mysql"
	productrepo "storepulse/internal/product/repository"
	"storepulse/internal/sales/controller"
	"storepulse/internal/sales/repository"
	"storepulse/internal/sales/service"
)

type Module struct {
	Service    *service.SalesService
	Controller *controller.Controller
}

func NewModule(db *sql.DB, txm *mysql.TxManager, c *cache.Cache, bus *eventbus.Bus, inventory service.Inventory, cfg *config.Config, logger *zap.Logger) *Module {
	svc := service.NewService(
		txm,
		repository.NewMySQLRepository(db),
		productrepo.NewMySQLRepository(db),
		inventory,
		c,
		bus,
		service.Options{
			MetricsTTL:   cfg.Cache.MetricsTTL,
			QueryTimeout: cfg.Database.QueryTimeout,
			GrowthFloor:  cfg.Sales.GrowthFloor,
		},
		logger.Named("sales"),
	)
	return &Module{
		Service:    svc,
		Controller: controller.NewController(svc, logger),
	}
}
