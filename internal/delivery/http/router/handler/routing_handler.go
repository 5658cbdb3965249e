package handler

import (
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

// RoutingHandler exposes distance and ETA estimation
type RoutingHandler struct {
	routing usecase.RoutingUsecase
}

// NewRoutingHandler is the constructor for RoutingHandler
func NewRoutingHandler(routing usecase.RoutingUsecase) *RoutingHandler {
	return &RoutingHandler{routing: routing}
}

// ETARequest is a single origin/destination pair
type ETARequest struct {
	Origin      *usecase.Coordinate `json:"origin" validate:"required"`
	Destination *usecase.Coordinate `json:"destination" validate:"required"`
}

// BatchETARequest estimates from one origin to several destinations
type BatchETARequest struct {
	Origin       *usecase.Coordinate  `json:"origin" validate:"required"`
	Destinations []usecase.Coordinate `json:"destinations" validate:"required,min=1,max=25,dive"`
}

// BatchETAResponse lists results in destination order
type BatchETAResponse struct {
	Results []*entity.ETAResult `json:"results"`
}

// EstimateETA returns the route estimate between two points. It never fails
// once the input is valid.
func (h *RoutingHandler) EstimateETA(c echo.Context) error {
	var req ETARequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	result := h.routing.GetRoute(c.Request().Context(), *req.Origin, *req.Destination)

	return response.Success(c, http.StatusOK, result, "")
}

// EstimateBatchETA returns one estimate per destination
func (h *RoutingHandler) EstimateBatchETA(c echo.Context) error {
	var req BatchETARequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid route input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	results := h.routing.GetRoutes(c.Request().Context(), *req.Origin, req.Destinations)

	return response.Success(c, http.StatusOK, BatchETAResponse{Results: results}, "")
}
