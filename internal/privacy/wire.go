package privacy

import (
	"database/sql"

	"go.uber.org/zap"

	"storepulse/internal/config"
	"storepulse/internal/infrastructure/mysql"
	"storepulse/internal/privacy/controller"
	"storepulse/internal/privacy/repository"
	"storepulse/internal/privacy/service"
)

func NewModule(db *sql.DB, txm *mysql.TxManager, cfg *config.Config, logger *zap.Logger) *controller.Controller {
	svc := service.NewService(txm, repository.NewMySQLRepository(db), cfg.Database.QueryTimeout, logger.Named("privacy"))
	return controller.NewController(svc, logger)
}
