// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kerb/internal/http/handlers"
	"kerb/internal/http/middleware"
	"kerb/internal/infra"
	"kerb/internal/modules/location"
	"kerb/internal/modules/lot"
	"kerb/internal/modules/position"
	"kerb/internal/modules/session"
	"kerb/internal/modules/vehicle"
)

type RouterDeps struct {
	Sessions  *session.Service
	Locations *location.Service
	Lots      *lot.Service
	Vehicles  *vehicle.Service
	Positions *position.Store
	Walker    handlers.WalkEstimator
	Verifier  infra.TokenVerifier
	Logger    zerolog.Logger
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(
		middleware.Recovery(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.Metrics(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api", middleware.Auth(deps.Verifier))

	sessionHandler := handlers.NewSessionHandler(deps.Sessions)
	api.POST("/sessions", sessionHandler.Create)
	api.GET("/sessions/active", sessionHandler.Active)
	api.POST("/sessions/:id/extend", sessionHandler.Extend)
	api.POST("/sessions/:id/end", sessionHandler.End)
	api.POST("/sessions/:id/cancel", sessionHandler.Cancel)

	locationHandler := handlers.NewLocationHandler(deps.Locations, deps.Walker)
	api.GET("/locations/active", locationHandler.Active)
	api.POST("/locations", locationHandler.Save)
	api.PATCH("/locations/:id", locationHandler.Update)
	api.DELETE("/locations/:id", locationHandler.Delete)

	positionHandler := handlers.NewPositionHandler(deps.Positions)
	api.POST("/position/fixes", positionHandler.RecordFix)
	api.GET("/position/fixes/last", positionHandler.LastFix)

	lotHandler := handlers.NewLotHandler(deps.Lots)
	api.GET("/lots", lotHandler.List)
	api.GET("/lots/:id", lotHandler.Get)

	vehicleHandler := handlers.NewVehicleHandler(deps.Vehicles)
	api.GET("/vehicles", vehicleHandler.List)
	api.POST("/vehicles", vehicleHandler.Add)
	api.DELETE("/vehicles/:id", vehicleHandler.Delete)

	return r
}
