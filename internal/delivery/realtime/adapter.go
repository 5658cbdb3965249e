package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"dispatch/config"
	"dispatch/internal/delivery/http/validator"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"

	"go.uber.org/fx"
)

// Inbound events
const (
	EventDriverLocation = "driver:location"
	EventTrackOrder     = "track:order"
	EventDriverOnline   = "driver:online"
	EventDriverOffline  = "driver:offline"
)

// Outbound events
const (
	EventDriverLocationUpdate = "driver:location:update"
	EventError                = "error"
)

type driverLocationPayload struct {
	DriverID string   `json:"driverId" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng      *float64 `json:"lng" validate:"required,min=-180,max=180"`
	Heading  *float64 `json:"heading,omitempty" validate:"omitempty,min=0,max=360"`
	Speed    *float64 `json:"speed,omitempty" validate:"omitempty,min=0"`
	OrderID  string   `json:"orderId,omitempty"`
}

type trackOrderPayload struct {
	OrderID string `json:"orderId" validate:"required"`
}

type driverOnlinePayload struct {
	DriverID string   `json:"driverId" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng      *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

type driverOfflinePayload struct {
	DriverID string `json:"driverId" validate:"required"`
}

// LocationUpdatePayload is the body of driver:location:update
type LocationUpdatePayload struct {
	Lat     float64  `json:"lat"`
	Lng     float64  `json:"lng"`
	Heading *float64 `json:"heading,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
}

type errorPayload struct {
	Event   string `json:"event,omitempty"`
	Message string `json:"message"`
}

// OrderRoom is the room of clients tracking an order
func OrderRoom(orderID string) string {
	return "order:" + orderID
}

// DriverRoom is the room a driver's own connection joins
func DriverRoom(driverID string) string {
	return "driver:" + driverID
}

// AdapterParams holds dependencies for Adapter, injected by Fx
type AdapterParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Tracking usecase.TrackingUsecase
	Logger   *slog.Logger
}

// Adapter bridges realtime events and the position registry
type Adapter struct {
	hub       *Hub
	tracking  usecase.TrackingUsecase
	validator *validator.CustomValidator
	logger    *slog.Logger

	// publishMu keeps registry writes and their broadcasts in the same order
	publishMu sync.Mutex
}

// NewAdapter creates the hub and wires inbound events to the registry
func NewAdapter(params AdapterParams) *Adapter {
	sendBuffer := 0
	if params.Config.Realtime != nil {
		sendBuffer = params.Config.Realtime.SendBuffer
	}

	adapter := newAdapter(NewHub(sendBuffer, params.Logger), params.Tracking, params.Logger)

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing realtime connections", slog.Int("clients", adapter.hub.ClientCount()))
			adapter.hub.Close()

			return nil
		},
	})

	return adapter
}

func newAdapter(hub *Hub, tracking usecase.TrackingUsecase, logger *slog.Logger) *Adapter {
	adapter := &Adapter{
		hub:       hub,
		tracking:  tracking,
		validator: validator.New(),
		logger:    logger,
	}
	hub.SetMessageHandler(adapter.HandleMessage)

	return adapter
}

// ServeWS upgrades an HTTP request into a realtime connection
func (a *Adapter) ServeWS(w http.ResponseWriter, r *http.Request) {
	a.hub.ServeWS(w, r)
}

// Hub exposes the underlying hub
func (a *Adapter) Hub() *Hub {
	return a.hub
}

// HandleMessage dispatches one inbound event
func (a *Adapter) HandleMessage(client *Client, event string, data json.RawMessage) {
	switch event {
	case EventDriverLocation:
		var payload driverLocationPayload
		if a.decode(client, event, data, &payload) {
			a.onDriverLocation(payload)
		}

	case EventTrackOrder:
		var payload trackOrderPayload
		if a.decode(client, event, data, &payload) {
			a.onTrackOrder(client, payload)
		}

	case EventDriverOnline:
		var payload driverOnlinePayload
		if a.decode(client, event, data, &payload) {
			a.onDriverOnline(client, payload)
		}

	case EventDriverOffline:
		var payload driverOfflinePayload
		if a.decode(client, event, data, &payload) {
			a.onDriverOffline(payload)
		}

	default:
		a.reject(client, event, "unknown event")
	}
}

func (a *Adapter) onDriverLocation(payload driverLocationPayload) {
	a.PublishLocation(payload.DriverID, entity.LocationUpdate{
		Lat:     *payload.Lat,
		Lng:     *payload.Lng,
		Heading: payload.Heading,
		Speed:   payload.Speed,
		OrderID: payload.OrderID,
	})
}

func (a *Adapter) onTrackOrder(client *Client, payload trackOrderPayload) {
	a.hub.Join(client, OrderRoom(payload.OrderID))

	if location, ok := a.tracking.GetForOrder(payload.OrderID); ok {
		client.Emit(EventDriverLocationUpdate, toLocationUpdatePayload(location))
	}
}

func (a *Adapter) onDriverOnline(client *Client, payload driverOnlinePayload) {
	a.tracking.Update(payload.DriverID, entity.LocationUpdate{
		Lat: *payload.Lat,
		Lng: *payload.Lng,
	})
	a.hub.Join(client, DriverRoom(payload.DriverID))

	client.logger.Debug("Driver online", slog.String("driver_id", payload.DriverID))
}

func (a *Adapter) onDriverOffline(payload driverOfflinePayload) {
	a.tracking.Remove(payload.DriverID)

	a.logger.Debug("Driver offline", slog.String("driver_id", payload.DriverID))
}

// PublishLocation writes update to the registry and broadcasts the result.
// Concurrent publishers from websocket and REST reach subscribers in the
// order their writes landed.
func (a *Adapter) PublishLocation(driverID string, update entity.LocationUpdate) *entity.DriverLocation {
	a.publishMu.Lock()
	defer a.publishMu.Unlock()

	location := a.tracking.Update(driverID, update)
	a.broadcast(location)

	return location
}

// broadcast sends the location to the driver's room and, when it is
// tied to an order, to the order's room. The caller must have completed the
// registry write that produced location.
func (a *Adapter) broadcast(location *entity.DriverLocation) {
	if location == nil {
		return
	}

	payload := toLocationUpdatePayload(location)

	a.hub.EmitToRoom(DriverRoom(location.DriverID), EventDriverLocationUpdate, payload)
	if location.OrderID != "" {
		a.hub.EmitToRoom(OrderRoom(location.OrderID), EventDriverLocationUpdate, payload)
	}
}

func (a *Adapter) decode(client *Client, event string, data json.RawMessage, payload any) bool {
	if len(data) == 0 {
		a.reject(client, event, "missing data")

		return false
	}

	if err := json.Unmarshal(data, payload); err != nil {
		a.reject(client, event, "invalid data: "+err.Error())

		return false
	}

	if err := a.validator.Validate(payload); err != nil {
		a.reject(client, event, err.Error())

		return false
	}

	return true
}

func (a *Adapter) reject(client *Client, event, message string) {
	client.logger.Warn("Rejected realtime message",
		slog.String("event", event),
		slog.String("reason", message),
	)

	client.Emit(EventError, errorPayload{Event: event, Message: message})
}

func toLocationUpdatePayload(location *entity.DriverLocation) LocationUpdatePayload {
	return LocationUpdatePayload{
		Lat:     location.Lat,
		Lng:     location.Lng,
		Heading: location.Heading,
		Speed:   location.Speed,
	}
}
