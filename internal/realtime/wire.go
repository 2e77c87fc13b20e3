package realtime

import (
	"go.uber.org/zap"

	"storepulse/internal/config"
)

type Module struct {
	Broadcaster *Broadcaster
	Bridge      *Bridge
	Handler     *Handler
}

func NewModule(bus Subscriber, dashboard DashboardSource, cfg *config.Config, logger *zap.Logger) *Module {
	logger = logger.Named("realtime")
	b := NewBroadcaster(cfg.Bus.ClientBuffer, logger)
	return &Module{
		Broadcaster: b,
		Bridge:      NewBridge(bus, b, logger),
		Handler:     NewHandler(b, dashboard, cfg.Server.AllowedOrigins, logger),
	}
}
