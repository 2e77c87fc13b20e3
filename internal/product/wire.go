package product

import (
	"database/sql"

	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/mysql"
	inventoryrepo "storepulse/internal/inventory/repository"
	"storepulse/internal/product/controller"
	"storepulse/internal/product/repository"
	"storepulse/internal/product/service"
	"storepulse/internal/product/usecase"
)

func NewModule(db *sql.DB, txm *mysql.TxManager, c *cache.Cache, cfg *config.Config, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLRepository(db)
	invRepo := inventoryrepo.NewMySQLRepository(db)
	svc := service.NewService(txm, repo, invRepo, c, cfg.Database.QueryTimeout, logger)
	uc := usecase.NewProductsUseCase(svc)
	return controller.NewController(uc, logger)
}
