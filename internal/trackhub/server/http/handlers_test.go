package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetglass/fleetglass/internal/trackhub/core/hub"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/model"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/relay"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/service"
	"github.com/fleetglass/fleetglass/internal/trackhub/core/store"
	"github.com/fleetglass/fleetglass/pkg/log"
	"github.com/fleetglass/fleetglass/pkg/options"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	svc := service.New(store.New(), hub.New(hub.WithLogger(log.NewNopLogger())),
		relay.New(), service.WithLogger(log.NewNopLogger()))
	srv := NewServer(options.NewHttpOptions(), svc)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestSubmitTelemetryEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
		"vehicle_id": "V001",
		"lat":        37.7749,
		"lon":        -122.4194,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	state := decode[model.VehicleState](t, resp)
	assert.Equal(t, "V001", state.VehicleID)
	assert.Equal(t, 100.0, state.BatteryLevel)
	assert.Equal(t, model.StatusActive, state.Status)
}

func TestSubmitTelemetryValidationError(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
		"vehicle_id": "V001",
		"lat":        91.0,
		"lon":        0.0,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSubmitTelemetryStaleConflict(t *testing.T) {
	_, ts := newTestServer(t)

	now := time.Now().UTC()
	resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
		"vehicle_id": "V001", "lat": 1.0, "lon": 2.0,
		"timestamp": now.Format(time.RFC3339Nano),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
		"vehicle_id": "V001", "lat": 3.0, "lon": 4.0,
		"timestamp": now.Add(-time.Minute).Format(time.RFC3339Nano),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestVehicleQueries(t *testing.T) {
	_, ts := newTestServer(t)

	for _, id := range []string{"V002", "V001"} {
		resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
			"vehicle_id": id, "lat": 1.0, "lon": 2.0,
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/v1/vehicles")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	states := decode[[]model.VehicleState](t, resp)
	require.Len(t, states, 2)
	assert.Equal(t, "V001", states[0].VehicleID)
	assert.Equal(t, "V002", states[1].VehicleID)

	resp, err = http.Get(ts.URL + "/api/v1/vehicles/V001")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decode[model.VehicleState](t, resp)
	assert.Equal(t, "V001", state.VehicleID)

	resp, err = http.Get(ts.URL + "/api/v1/vehicles/ghost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestVehicleHistoryEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
			"vehicle_id": "V001", "lat": float64(i), "lon": 0.0,
			"timestamp": base.Add(time.Duration(i) * time.Second).Format(time.RFC3339Nano),
		})
		resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp, err := http.Get(ts.URL + "/api/v1/vehicles/V001/history?limit=2")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	samples := decode[[]model.LocationSample](t, resp)
	require.Len(t, samples, 2)
	assert.Equal(t, 2.0, samples[0].Lat)

	resp, err = http.Get(ts.URL + "/api/v1/vehicles/V001/history?limit=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCommandLifecycle(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/vehicles/V001/commands", map[string]any{
		"command":    "stop",
		"parameters": map[string]string{"reason": "maintenance"},
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	cmd := decode[model.Command](t, resp)
	assert.NotEmpty(t, cmd.ID)
	assert.Equal(t, "stop", cmd.Name)

	resp, err := http.Get(ts.URL + "/api/v1/vehicles/V001/commands/next")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	polled := decode[model.Command](t, resp)
	assert.Equal(t, cmd.ID, polled.ID)

	resp, err = http.Get(ts.URL + "/api/v1/vehicles/V001/commands/next")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestIssueCommandRejectsEmptyName(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/vehicles/V001/commands", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketReceivesLocationUpdates(t *testing.T) {
	_, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the handler a moment to register the observer before publishing.
	time.Sleep(100 * time.Millisecond)

	resp := postJSON(t, ts.URL+"/api/v1/telemetry", map[string]any{
		"vehicle_id": "V001", "lat": 1.0, "lon": 2.0,
	})
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var event struct {
		Type string              `json:"type"`
		Data model.VehicleState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &event))
	assert.Equal(t, "location_update", event.Type)
	assert.Equal(t, "V001", event.Data.VehicleID)
}
