package http

import (
	"context"

	"clientops_backend/internal/events"
	"clientops_backend/platform/config"
	"clientops_backend/platform/logger"
)

// RouterConfig is the slice of configuration the router actually reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness endpoint, typically a DB ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the initialized dependencies the router needs. main populates
// it and hands it to router.New.
type App struct {
	Config RouterConfig
	// Logger is the structured logger shared with middleware.
	Logger *logger.Logger
	// Health answers /ready.
	Health HealthChecker
	// EventBus is exposed to modules that subscribe handlers at startup.
	EventBus events.Bus
	// Modules are registered in order.
	Modules []Module
}
