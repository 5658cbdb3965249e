package handler

import (
	"log/slog"
	"net/http"

	"dispatch/internal/delivery/http/response"
	"dispatch/internal/domain/entity"
	domainerrors "dispatch/internal/domain/errors"
	"dispatch/internal/domain/service"
	"dispatch/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/fx"
)

// TrackingHandlerParams holds dependencies for TrackingHandler, injected by Fx.
type TrackingHandlerParams struct {
	fx.In

	Tracking  usecase.TrackingUsecase
	Routing   usecase.RoutingUsecase
	QRCode    service.QRCodeService
	Publisher usecase.LocationPublisher `optional:"true"`
	Logger    *slog.Logger
}

// TrackingHandler exposes the position registry over REST
type TrackingHandler struct {
	tracking  usecase.TrackingUsecase
	routing   usecase.RoutingUsecase
	qrcode    service.QRCodeService
	publisher usecase.LocationPublisher
	logger    *slog.Logger
}

// NewTrackingHandler is the constructor for TrackingHandler
func NewTrackingHandler(params TrackingHandlerParams) *TrackingHandler {
	return &TrackingHandler{
		tracking:  params.Tracking,
		routing:   params.Routing,
		qrcode:    params.QRCode,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

// UpdateLocationRequest is the REST form of a driver:location event
type UpdateLocationRequest struct {
	Lat     *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng     *float64 `json:"lng" validate:"required,min=-180,max=180"`
	Heading *float64 `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	Speed   *float64 `json:"speed,omitempty" validate:"omitempty,min=0"`
	OrderID string   `json:"order_id,omitempty"`
}

// AssignDriverRequest associates a driver with an order
type AssignDriverRequest struct {
	DriverID string `json:"driver_id" validate:"required"`
}

// ResolveQRCodeRequest carries the scanned content of a tracking QR code
type ResolveQRCodeRequest struct {
	Data string `json:"data" validate:"required"`
}

// ResolveQRCodeResponse is the order behind a tracking QR code
type ResolveQRCodeResponse struct {
	OrderID  string                 `json:"order_id"`
	DriverID string                 `json:"driver_id,omitempty"`
	Location *entity.DriverLocation `json:"location,omitempty"`
}

// StatsResponse reports registry size
type StatsResponse struct {
	ActiveCount int `json:"active_count"`
}

// GetDriverLocation returns the driver's current location
func (h *TrackingHandler) GetDriverLocation(c echo.Context) error {
	location, ok := h.tracking.Get(c.Param("driverId"))
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrDriverNotTracked)
	}

	return response.Success(c, http.StatusOK, location, "")
}

// UpdateDriverLocation stores a location update and fans it out to the order's trackers
func (h *TrackingHandler) UpdateDriverLocation(c echo.Context) error {
	var req UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid location input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	update := entity.LocationUpdate{
		Lat:     *req.Lat,
		Lng:     *req.Lng,
		Heading: req.Heading,
		Speed:   req.Speed,
		OrderID: req.OrderID,
	}

	var location *entity.DriverLocation
	if h.publisher != nil {
		location = h.publisher.PublishLocation(c.Param("driverId"), update)
	} else {
		location = h.tracking.Update(c.Param("driverId"), update)
	}

	return response.Success(c, http.StatusOK, location, "Location updated")
}

// RemoveDriver deletes the driver's location and order associations
func (h *TrackingHandler) RemoveDriver(c echo.Context) error {
	h.tracking.Remove(c.Param("driverId"))

	return c.NoContent(http.StatusNoContent)
}

// ListActiveDrivers returns fresh driver locations as a GeoJSON FeatureCollection
func (h *TrackingHandler) ListActiveDrivers(c echo.Context) error {
	return response.Success(c, http.StatusOK, activeDriversToGeoJSON(h.tracking.ListActive()), "")
}

// Stats returns the registry size
func (h *TrackingHandler) Stats(c echo.Context) error {
	return response.Success(c, http.StatusOK, StatsResponse{ActiveCount: h.tracking.ActiveCount()}, "")
}

// AssignDriver sets or overwrites the order's driver
func (h *TrackingHandler) AssignDriver(c echo.Context) error {
	var req AssignDriverRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid assignment input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	orderID := c.Param("orderId")
	h.tracking.Assign(orderID, req.DriverID)

	return response.Success(c, http.StatusOK, map[string]string{
		"order_id":  orderID,
		"driver_id": req.DriverID,
	}, "Driver assigned")
}

// GetOrderLocation returns the current location of the order's driver
func (h *TrackingHandler) GetOrderLocation(c echo.Context) error {
	location, ok := h.tracking.GetForOrder(c.Param("orderId"))
	if !ok {
		return response.HandleAppError(c, domainerrors.ErrOrderNotTracked)
	}

	return response.Success(c, http.StatusOK, location, "")
}

// GetOrderETA estimates the time from the order's driver to ?lat=&lng=
func (h *TrackingHandler) GetOrderETA(c echo.Context) error {
	var destination usecase.Coordinate
	err := echo.QueryParamsBinder(c).
		MustFloat64("lat", &destination.Lat).
		MustFloat64("lng", &destination.Lng).
		BindError()
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "lat and lng query parameters are required")
	}

	if err := c.Validate(&destination); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.routing.GetOrderETA(c.Request().Context(), c.Param("orderId"), destination)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "")
}

// GetOrderQRCode renders the order's tracking link as a PNG
func (h *TrackingHandler) GetOrderQRCode(c echo.Context) error {
	png, err := h.qrcode.GenerateTrackingQR(c.Param("orderId"))
	if err != nil {
		return err
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// ResolveQRCode maps scanned QR content back to its order and current location
func (h *TrackingHandler) ResolveQRCode(c echo.Context) error {
	var req ResolveQRCodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid QR code input")
	}

	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, err)
	}

	orderID, err := h.qrcode.ParseTrackingQR(req.Data)
	if err != nil {
		return response.HandleAppError(c, domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	resp := ResolveQRCodeResponse{OrderID: orderID}
	// The assignment outlives a stale location
	if driverID, ok := h.tracking.DriverForOrder(orderID); ok {
		resp.DriverID = driverID
	}
	if location, ok := h.tracking.GetForOrder(orderID); ok {
		resp.Location = location
	}

	return response.Success(c, http.StatusOK, resp, "")
}

func activeDriversToGeoJSON(drivers []entity.ActiveDriver) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, driver := range drivers {
		location := driver.Location
		feature := geojson.NewFeature(location.Point())
		feature.ID = driver.DriverID
		feature.Properties["driver_id"] = driver.DriverID
		feature.Properties["observed_at"] = location.ObservedAt
		if location.Heading != nil {
			feature.Properties["heading"] = *location.Heading
		}
		if location.Speed != nil {
			feature.Properties["speed"] = *location.Speed
		}
		if location.OrderID != "" {
			feature.Properties["order_id"] = location.OrderID
		}
		fc.Append(feature)
	}

	return fc
}
