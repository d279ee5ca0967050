// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"github.com/Dina02092005/crm-sub000/internal/events"
	"github.com/Dina02092005/crm-sub000/platform/config"
	"github.com/Dina02092005/crm-sub000/platform/logger"

	"github.com/gin-gonic/gin"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterContext carries the route groups handed to each module.
type RouterContext struct {
	// Public routes require no authentication (login, inbound lead capture).
	Public *gin.RouterGroup
	// Protected routes sit behind the JWT middleware.
	Protected *gin.RouterGroup
}

// Module is an HTTP-facing domain module.
type Module interface {
	// Name returns the module identifier.
	Name() string
	// RegisterRoutes mounts the module's routes.
	RegisterRoutes(ctx *RouterContext)
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
