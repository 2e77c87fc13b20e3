package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storepulse/internal/analytics"
	"storepulse/internal/config"
	"storepulse/internal/infrastructure/cache"
	"storepulse/internal/infrastructure/eventbus"
	"storepulse/internal/infrastructure/logger"
	"storepulse/internal/infrastructure/mysql"
	"storepulse/internal/inventory"
	"storepulse/internal/prediction"
	"storepulse/internal/privacy"
	"storepulse/internal/product"
	"storepulse/internal/realtime"
	"storepulse/internal/sales"
	"storepulse/internal/server"
)

func main() {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	if cfg.Database.AutoMigrate {
		if err := mysql.Migrate(ctx, db); err != nil {
			zapLogger.Fatal("running migrations", zap.Error(err))
		}
	}
	txm := mysql.NewTxManager(db, cfg.Database.TxTimeout, cfg.Database.MaxRetryAttempts, zapLogger.Named("tx"))

	store, err := cache.OpenBadgerStore(cfg.Cache.Path)
	if err != nil {
		zapLogger.Fatal("opening cache", zap.Error(err))
	}
	defer store.Close()
	c := cache.New(store, cfg.Cache, zapLogger.Named("cache"))

	bus, err := eventbus.New(cfg.Bus, zapLogger.Named("bus"))
	if err != nil {
		zapLogger.Fatal("creating event bus", zap.Error(err))
	}
	defer bus.Close()

	inventoryMod := inventory.NewModule(db, txm, c, bus, cfg, zapLogger)
	salesMod := sales.NewModule(db, txm, c, bus, inventoryMod.Service, cfg, zapLogger)
	productCtrl := product.NewModule(db, txm, c, cfg, zapLogger)
	analyticsMod := analytics.NewModule(salesMod.Service, inventoryMod.Service, c, bus, cfg, zapLogger)
	predictionCtrl := prediction.NewModule(salesMod.Service, c, cfg, zapLogger)
	privacyCtrl := privacy.NewModule(db, txm, cfg, zapLogger)
	realtimeMod := realtime.NewModule(bus, analyticsMod.Service, cfg, zapLogger)

	router := server.NewRouter(cfg.Server, server.Dependencies{
		Health:    db,
		WebSocket: realtimeMod.Handler,
		Mounts: []server.Mount{
			{Path: "products", Routes: productCtrl.Routes},
			{Path: "inventory", Routes: inventoryMod.Controller.Routes},
			{Path: "sales", Routes: salesMod.Controller.Routes},
			{Path: "analytics", Routes: analyticsMod.Controller.Routes},
			{Path: "predictions", Routes: predictionCtrl.Routes},
			{Path: "privacy", Routes: privacyCtrl.Routes},
		},
	}, zapLogger)

	sup := server.NewSupervisor(cfg.Server.ShutdownTimeout, zapLogger.Named("supervisor"))
	sup.Add(realtimeMod.Bridge)
	sup.Add(server.New(cfg.Server, router, zapLogger))

	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("supervisor stopped", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
