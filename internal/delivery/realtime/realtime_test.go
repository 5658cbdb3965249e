package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dispatch/config"
	"dispatch/internal/domain/entity"
	"dispatch/internal/usecase"
	"dispatch/internal/usecase/impl"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testServer struct {
	adapter  *Adapter
	tracking usecase.TrackingUsecase
	server   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := discardLogger()
	tracking := impl.NewTrackingService(&config.Config{}, logger)
	adapter := newAdapter(NewHub(16, logger), tracking, logger)
	server := httptest.NewServer(http.HandlerFunc(adapter.ServeWS))

	t.Cleanup(func() {
		adapter.Hub().Close()
		server.Close()
	})

	return &testServer{adapter: adapter, tracking: tracking, server: server}
}

func (s *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(s.server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Event: event, Data: payload}))
}

func receive(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var envelope Envelope
	require.NoError(t, conn.ReadJSON(&envelope))

	return envelope
}

func TestAdapter_TrackerReceivesDriverUpdates(t *testing.T) {
	srv := newTestServer(t)
	tracker := srv.dial(t)
	driver := srv.dial(t)

	send(t, tracker, EventTrackOrder, map[string]string{"orderId": "o1"})
	require.Eventually(t, func() bool {
		return srv.adapter.Hub().RoomSize(OrderRoom("o1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	send(t, driver, EventDriverLocation, map[string]any{
		"driverId": "d1",
		"lat":      40.7128,
		"lng":      -74.006,
		"heading":  180,
		"orderId":  "o1",
	})

	envelope := receive(t, tracker)
	assert.Equal(t, EventDriverLocationUpdate, envelope.Event)

	var update LocationUpdatePayload
	require.NoError(t, json.Unmarshal(envelope.Data, &update))
	assert.InDelta(t, 40.7128, update.Lat, 1e-9)
	assert.InDelta(t, -74.006, update.Lng, 1e-9)
	require.NotNil(t, update.Heading)
	assert.InDelta(t, 180.0, *update.Heading, 1e-9)
	assert.Nil(t, update.Speed)

	location, ok := srv.tracking.GetForOrder("o1")
	require.True(t, ok)
	assert.Equal(t, "d1", location.DriverID)
}

func TestAdapter_TrackOrderRepliesWithCurrentLocation(t *testing.T) {
	srv := newTestServer(t)
	srv.tracking.Update("d1", entity.LocationUpdate{Lat: 1.5, Lng: 2.5, OrderID: "o1"})

	tracker := srv.dial(t)
	send(t, tracker, EventTrackOrder, map[string]string{"orderId": "o1"})

	envelope := receive(t, tracker)
	assert.Equal(t, EventDriverLocationUpdate, envelope.Event)

	var update LocationUpdatePayload
	require.NoError(t, json.Unmarshal(envelope.Data, &update))
	assert.InDelta(t, 1.5, update.Lat, 1e-9)
	assert.InDelta(t, 2.5, update.Lng, 1e-9)
}

func TestAdapter_DriverOnlineAndOffline(t *testing.T) {
	srv := newTestServer(t)
	driver := srv.dial(t)

	send(t, driver, EventDriverOnline, map[string]any{"driverId": "d1", "lat": 10, "lng": 20})
	require.Eventually(t, func() bool {
		return srv.adapter.Hub().RoomSize(DriverRoom("d1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, ok := srv.tracking.Get("d1")
	assert.True(t, ok)

	send(t, driver, EventDriverOffline, map[string]string{"driverId": "d1"})
	require.Eventually(t, func() bool {
		_, ok := srv.tracking.Peek("d1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAdapter_RejectsBadMessages(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantEvent   string
		wantMessage string
	}{
		{"not json", `hello`, "", "event field"},
		{"missing event", `{"data":{}}`, "", "event field"},
		{"unknown event", `{"event":"driver:teleport","data":{}}`, "driver:teleport", "unknown event"},
		{"missing data", `{"event":"track:order"}`, EventTrackOrder, "missing data"},
		{"latitude out of range", `{"event":"driver:location","data":{"driverId":"d1","lat":91,"lng":0}}`, EventDriverLocation, "lat"},
		{"missing driver", `{"event":"driver:location","data":{"lat":1,"lng":1}}`, EventDriverLocation, "driverId"},
		{"heading out of range", `{"event":"driver:location","data":{"driverId":"d1","lat":1,"lng":1,"heading":400}}`, EventDriverLocation, "heading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t)
			conn := srv.dial(t)

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)))

			envelope := receive(t, conn)
			assert.Equal(t, EventError, envelope.Event)

			var payload errorPayload
			require.NoError(t, json.Unmarshal(envelope.Data, &payload))
			assert.Equal(t, tt.wantEvent, payload.Event)
			assert.Contains(t, payload.Message, tt.wantMessage)
			assert.Zero(t, srv.tracking.ActiveCount())
		})
	}
}

func TestAdapter_ZeroCoordinatesAreValid(t *testing.T) {
	srv := newTestServer(t)
	driver := srv.dial(t)

	send(t, driver, EventDriverLocation, map[string]any{"driverId": "d1", "lat": 0, "lng": 0})
	require.Eventually(t, func() bool {
		_, ok := srv.tracking.Peek("d1")
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAdapter_DriverRoomReceivesOwnUpdates(t *testing.T) {
	srv := newTestServer(t)
	driver := srv.dial(t)

	send(t, driver, EventDriverOnline, map[string]any{"driverId": "d1", "lat": 10, "lng": 20})
	require.Eventually(t, func() bool {
		return srv.adapter.Hub().RoomSize(DriverRoom("d1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	send(t, driver, EventDriverLocation, map[string]any{"driverId": "d1", "lat": 10.5, "lng": 20.5, "orderId": "o1"})

	envelope := receive(t, driver)
	assert.Equal(t, EventDriverLocationUpdate, envelope.Event)

	var update LocationUpdatePayload
	require.NoError(t, json.Unmarshal(envelope.Data, &update))
	assert.InDelta(t, 10.5, update.Lat, 1e-9)
	assert.InDelta(t, 20.5, update.Lng, 1e-9)
}

func TestAdapter_BroadcastRooms(t *testing.T) {
	logger := discardLogger()
	hub := NewHub(4, logger)
	adapter := newAdapter(hub, impl.NewTrackingService(&config.Config{}, logger), logger)

	driver := newClient("driver", nil, hub)
	tracker := newClient("tracker", nil, hub)
	bystander := newClient("bystander", nil, hub)
	for _, client := range []*Client{driver, tracker, bystander} {
		hub.register(client)
	}
	hub.Join(driver, DriverRoom("d1"))
	hub.Join(tracker, OrderRoom("o1"))
	hub.Join(bystander, OrderRoom("o2"))

	adapter.PublishLocation("d1", entity.LocationUpdate{Lat: 1, Lng: 2, OrderID: "o1"})
	adapter.PublishLocation("d1", entity.LocationUpdate{Lat: 3, Lng: 4})

	first := `{"event":"driver:location:update","data":{"lat":1,"lng":2}}`
	second := `{"event":"driver:location:update","data":{"lat":3,"lng":4}}`

	require.Len(t, driver.send, 2)
	assert.JSONEq(t, first, string(<-driver.send))
	assert.JSONEq(t, second, string(<-driver.send))

	require.Len(t, tracker.send, 1, "updates without an order reach the driver room only")
	assert.JSONEq(t, first, string(<-tracker.send))

	assert.Empty(t, bystander.send)

	assert.NotPanics(t, func() { adapter.broadcast(nil) })
}

func TestAdapter_PublishLocationKeepsWriteOrder(t *testing.T) {
	const writers = 32

	logger := discardLogger()
	hub := NewHub(writers, logger)
	tracking := impl.NewTrackingService(&config.Config{}, logger)
	adapter := newAdapter(hub, tracking, logger)

	watcher := newClient("watcher", nil, hub)
	hub.register(watcher)
	hub.Join(watcher, DriverRoom("d1"))

	var wg sync.WaitGroup
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapter.PublishLocation("d1", entity.LocationUpdate{Lat: float64(i), Lng: 0})
		}()
	}
	wg.Wait()

	require.Len(t, watcher.send, writers)

	var last LocationUpdatePayload
	for range writers {
		var envelope Envelope
		require.NoError(t, json.Unmarshal(<-watcher.send, &envelope))
		require.NoError(t, json.Unmarshal(envelope.Data, &last))
	}

	stored, ok := tracking.Peek("d1")
	require.True(t, ok)
	assert.InDelta(t, stored.Lat, last.Lat, 1e-9, "last broadcast matches the registry")
}

func TestHub_DisconnectDropsRoomMembership(t *testing.T) {
	srv := newTestServer(t)
	tracker := srv.dial(t)

	send(t, tracker, EventTrackOrder, map[string]string{"orderId": "o1"})
	require.Eventually(t, func() bool {
		return srv.adapter.Hub().RoomSize(OrderRoom("o1")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, tracker.Close())
	require.Eventually(t, func() bool {
		return srv.adapter.Hub().RoomSize(OrderRoom("o1")) == 0 && srv.adapter.Hub().ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	hub := NewHub(1, discardLogger())
	slow := newClient("slow", nil, hub)
	fast := newClient("fast", nil, hub)
	hub.register(slow)
	hub.register(fast)
	hub.Join(slow, "room")
	hub.Join(fast, "room")

	hub.EmitToRoom("room", "tick", 1)
	<-fast.send

	hub.EmitToRoom("room", "tick", 2)

	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.RoomSize("room"))

	first, ok := <-slow.send
	require.True(t, ok)
	assert.JSONEq(t, `{"event":"tick","data":1}`, string(first))

	_, ok = <-slow.send
	assert.False(t, ok, "send queue is closed after disconnect")

	message := <-fast.send
	assert.JSONEq(t, `{"event":"tick","data":2}`, string(message))
}

func TestHub_JoinAfterUnregisterIsIgnored(t *testing.T) {
	hub := NewHub(1, discardLogger())
	client := newClient("c1", nil, hub)
	hub.register(client)
	hub.unregister(client)
	hub.unregister(client)

	hub.Join(client, "room")
	assert.Zero(t, hub.RoomSize("room"))
}
