package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/switchboard/pkg/api/handlers"
	"github.com/urmzd/switchboard/pkg/db"
	"github.com/urmzd/switchboard/pkg/device/schema"
)

// Router holds the Gin engine and dependencies of the backend simulator
type Router struct {
	engine    *gin.Engine
	database  *db.DB
	validator *schema.Validator
	hub       *handlers.Hub
}

// NewRouter creates a new simulator router
func NewRouter(database *db.DB, validator *schema.Validator) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:    engine,
		database:  database,
		validator: validator,
		hub:       handlers.NewHub(),
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all routes. Paths match what panels expect from
// the real backend, so there is no version prefix.
func (r *Router) setupRoutes() {
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(301, "/swagger/index.html")
	})

	healthHandler := handlers.NewHealthHandler(r.database, r.hub)
	r.engine.GET("/health", healthHandler.Health)

	socketHandler := handlers.NewSocketHandler(r.hub)
	r.engine.GET("/ws", socketHandler.Serve)

	devicesHandler := handlers.NewDevicesHandler(r.database.Devices(), r.validator)
	devices := r.engine.Group("/device")
	{
		devices.GET("/all", devicesHandler.ListDevices)
		devices.GET("/:id", devicesHandler.GetDevice)
		devices.PATCH("/:id", devicesHandler.UpdateDevice)
	}
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() *gin.Engine {
	return r.engine
}

// Hub returns the push channel hub.
func (r *Router) Hub() *handlers.Hub {
	return r.hub
}
