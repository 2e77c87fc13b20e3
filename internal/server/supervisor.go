package server

import (
	"time"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
)

// NewSupervisor builds the root supervisor for the long-running services.
// Restarts back off after five failures inside the decay window.
func NewSupervisor(shutdownTimeout time.Duration, logger *zap.Logger) *suture.Supervisor {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return suture.New("storepulse", suture.Spec{
		EventHook:        eventHook(logger),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          shutdownTimeout,
	})
}

func eventHook(logger *zap.Logger) suture.EventHook {
	return func(e suture.Event) {
		fields := make([]zap.Field, 0, len(e.Map()))
		for k, v := range e.Map() {
			fields = append(fields, zap.Any(k, v))
		}
		switch e.Type() {
		case suture.EventTypeServicePanic, suture.EventTypeBackoff:
			logger.Error(e.String(), fields...)
		case suture.EventTypeServiceTerminate, suture.EventTypeStopTimeout:
			logger.Warn(e.String(), fields...)
		default:
			logger.Info(e.String(), fields...)
		}
	}
}
