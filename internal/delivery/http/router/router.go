// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"dispatch/config"
	"dispatch/internal/delivery/http/router/handler"
	"dispatch/internal/delivery/realtime"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config            *config.Config
	TrackingHandler   *handler.TrackingHandler
	RoutingHandler    *handler.RoutingHandler
	ComplianceHandler *handler.ComplianceHandler
	Realtime          *realtime.Adapter
}

// router holds all the handlers that need to be registered.
type router struct {
	cfg               *config.Config
	trackingHandler   *handler.TrackingHandler
	routingHandler    *handler.RoutingHandler
	complianceHandler *handler.ComplianceHandler
	realtime          *realtime.Adapter
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		cfg:               params.Config,
		trackingHandler:   params.TrackingHandler,
		routingHandler:    params.RoutingHandler,
		complianceHandler: params.ComplianceHandler,
		realtime:          params.Realtime,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	trackingGroup := e.Group("/tracking")
	{
		trackingGroup.GET("/drivers", r.trackingHandler.ListActiveDrivers)
		trackingGroup.GET("/drivers/:driverId", r.trackingHandler.GetDriverLocation)
		trackingGroup.PUT("/drivers/:driverId/location", r.trackingHandler.UpdateDriverLocation)
		trackingGroup.DELETE("/drivers/:driverId", r.trackingHandler.RemoveDriver)
		trackingGroup.GET("/stats", r.trackingHandler.Stats)

		trackingGroup.PUT("/orders/:orderId/driver", r.trackingHandler.AssignDriver)
		trackingGroup.GET("/orders/:orderId", r.trackingHandler.GetOrderLocation)
		trackingGroup.GET("/orders/:orderId/eta", r.trackingHandler.GetOrderETA)
		trackingGroup.GET("/orders/:orderId/qrcode", r.trackingHandler.GetOrderQRCode)
		trackingGroup.POST("/qrcode/resolve", r.trackingHandler.ResolveQRCode)
	}

	routingGroup := e.Group("/routing")
	{
		routingGroup.POST("/eta", r.routingHandler.EstimateETA)
		routingGroup.POST("/eta/batch", r.routingHandler.EstimateBatchETA)
	}

	complianceGroup := e.Group("/compliance")
	{
		complianceGroup.POST("/alcohol/evaluate", r.complianceHandler.Evaluate)
		complianceGroup.GET("/alcohol/requirements", r.complianceHandler.Requirements)
		complianceGroup.GET("/alcohol/audits/:orderReference", r.complianceHandler.AuditTrail)
		complianceGroup.POST("/licenses/verify", r.complianceHandler.VerifyLicense)
	}

	if r.realtime != nil {
		e.GET(r.cfg.Realtime.Path, echo.WrapHandler(http.HandlerFunc(r.realtime.ServeWS)))
	}
}
