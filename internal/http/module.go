// Package http provides the HTTP server scaffolding: the Module interface
// domain modules implement to register routes, and the shared router setup.
package http

import (
	"clientops_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own HTTP routes. The router
// iterates over registered modules so it never references concrete
// endpoints.
type Module interface {
	// Name identifies the module in logs.
	Name() string
	// RegisterRoutes mounts the module's routes using the shared context.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext bundles the route groups and shared middleware a module
// needs during registration.
type RouterContext struct {
	// Engine is the root gin engine, for modules needing engine-level access.
	Engine *gin.Engine
	// V1 is the public /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is the JWT-authenticated group under /api/v1.
	Protected *gin.RouterGroup
	// Admin is the admin-role group under /api/v1/admin.
	Admin *gin.RouterGroup
	// Config exposes JWT settings to modules that build their own guards.
	Config config.JWTConfig
	// AuthMiddleware is the shared authentication middleware.
	AuthMiddleware gin.HandlerFunc
}
