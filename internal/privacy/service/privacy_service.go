package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storepulse/internal/domain"
	"storepulse/internal/infrastructure/mysql"
)

type Repository interface {
	FindByCustomerEmail(ctx context.Context, email string) ([]domain.Sale, error)
	AnonymizeCustomer(ctx context.Context, tx mysql.DBTX, email string) (int, error)
}

type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx mysql.DBTX) error) error
}

type PrivacyService struct {
	txm          TxManager
	repo         Repository
	queryTimeout time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewService(txm TxManager, repo Repository, queryTimeout time.Duration, logger *zap.Logger) *PrivacyService {
	return &PrivacyService{txm: txm, repo: repo, queryTimeout: queryTimeout, logger: logger, now: time.Now}
}

// ExportCustomerSales returns the customer's sales without the email itself.
func (s *PrivacyService) ExportCustomerSales(ctx context.Context, email string) (*domain.CustomerExport, error) {
	sales, err := mysql.Read(ctx, s.queryTimeout, func(ctx context.Context) ([]domain.Sale, error) {
		return s.repo.FindByCustomerEmail(ctx, email)
	})
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].CustomerEmail = nil
	}

	s.logger.Info("customer data exported", zap.Int("sales", len(sales)))
	return &domain.CustomerExport{Sales: sales, ExportedAt: s.now().UTC()}, nil
}

// AnonymizeCustomer keeps the sales for reporting but drops every link to
// the customer. Aggregates do not read customer fields, so no cache is touched.
func (s *PrivacyService) AnonymizeCustomer(ctx context.Context, email string) (int, error) {
	var affected int
	err := s.txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		var err error
		affected, err = s.repo.AnonymizeCustomer(ctx, tx, email)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("customer data anonymized", zap.Int("sales", affected))
	return affected, nil
}
