package service

import (
	"context"

	"storepulse/internal/domain"
)

// TrafficTracker reports storefront traffic. Visitor counts and funnel
// stages come from outside the sales ledger.
type TrafficTracker interface {
	CurrentVisitors(ctx context.Context) (int, error)
	Funnel(ctx context.Context) (domain.ConversionFunnel, error)
}

// NoopTracker is used when no traffic source is configured; it reports no
// traffic at all.
type NoopTracker struct{}

func (NoopTracker) CurrentVisitors(context.Context) (int, error) {
	return 0, nil
}

func (NoopTracker) Funnel(context.Context) (domain.ConversionFunnel, error) {
	return domain.ConversionFunnel{}, nil
}
