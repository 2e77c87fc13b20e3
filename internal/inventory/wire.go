package inventory

import (
	"database/sql"

	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/eventbus"
	"storepulse/internal/infrastructure/mysql"
	"storepulse/internal/inventory/controller"
	"storepulse/internal/inventory/repository"
	"storepulse/internal/inventory/service"
)

type Module struct {
	Service    *service.InventoryService
	Controller *controller.Controller
}

func NewModule(db *sql.DB, txm *mysql.TxManager, c *cache.Cache, bus *eventbus.Bus, cfg *config.Config, logger *zap.Logger) *Module {
	repo := repository.NewMySQLRepository(db)
	svc := service.NewService(txm, repo, c, bus, service.Options{
		SummaryTTL:   cfg.Cache.SummaryTTL,
		QueryTimeout: cfg.Database.QueryTimeout,
	}, logger.Named("inventory"))
	return &Module{
		Service:    svc,
		Controller: controller.NewController(svc, logger),
	}
}
