package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/service"
)

func newThermostatRouter() (*mockThermostat, *mockMonitoring, http.Handler) {
	th := &mockThermostat{target: 22, min: 10, max: 35}
	mon := &mockMonitoring{state: models.ThermostatState{
		CurrentTemperature: 21,
		TargetTemperature:  22,
		Active:             true,
		ActuatorState:      models.ActuatorHigh,
	}}
	s := &service.Service{
		Authorization: &mockAuth{parseID: 7},
		Thermostat:    th,
		Monitoring:    mon,
	}
	return th, mon, newTestRouter(s)
}

func doJSON(r http.Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer valid")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	_, _, r := newThermostatRouter()
	w := doJSON(r, http.MethodGet, "/health", "", false)
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}

func TestThermostatHandlers_GetState(t *testing.T) {
	_, _, r := newThermostatRouter()

	if w := doJSON(r, http.MethodGet, "/api/v1/thermostat/state", "", false); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w := doJSON(r, http.MethodGet, "/api/v1/thermostat/state", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.ThermostatState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.CurrentTemperature != 21 || st.ActuatorState != models.ActuatorHigh {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestThermostatHandlers_GetStateError(t *testing.T) {
	_, mon, r := newThermostatRouter()
	mon.err = errors.New("boom")

	if w := doJSON(r, http.MethodGet, "/api/v1/thermostat/state", "", true); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestThermostatHandlers_SetActive(t *testing.T) {
	th, _, r := newThermostatRouter()

	w := doJSON(r, http.MethodPost, "/api/v1/thermostat/active", `{"active":false}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("active status=%d, body=%s", w.Code, w.Body.String())
	}
	if th.setActiveCalls != 1 || th.active {
		t.Fatalf("SetActive not applied: calls=%d active=%v", th.setActiveCalls, th.active)
	}
	var resp struct {
		Active bool                   `json:"active"`
		State  models.ThermostatState `json:"state"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Active || resp.State.TargetTemperature != 22 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if w := doJSON(r, http.MethodPost, "/api/v1/thermostat/active", `{}`, true); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing field, got %d", w.Code)
	}
}

func TestThermostatHandlers_SetTargetClamps(t *testing.T) {
	th, _, r := newThermostatRouter()

	w := doJSON(r, http.MethodPost, "/api/v1/thermostat/target", `{"target_temperature":40}`, true)
	if w.Code != http.StatusOK {
		t.Fatalf("target status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		TargetTemperature float64 `json:"target_temperature"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.TargetTemperature != 35 || th.target != 35 {
		t.Fatalf("expected clamped 35, got resp=%v stored=%v", resp.TargetTemperature, th.target)
	}

	if w := doJSON(r, http.MethodPost, "/api/v1/thermostat/target", `{"target_temperature":"hot"}`, true); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad body, got %d", w.Code)
	}
}

func TestThermostatHandlers_SetMode(t *testing.T) {
	th, _, r := newThermostatRouter()

	if w := doJSON(r, http.MethodPost, "/api/v1/thermostat/mode", `{"mode":1}`, true); w.Code != http.StatusOK {
		t.Fatalf("mode status=%d, body=%s", w.Code, w.Body.String())
	}
	if th.lastMode != models.TargetModeHeat {
		t.Fatalf("lastMode = %d", th.lastMode)
	}

	th.modeErr = service.ErrUnsupportedMode
	if w := doJSON(r, http.MethodPost, "/api/v1/thermostat/mode", `{"mode":2}`, true); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported mode, got %d", w.Code)
	}

	th.modeErr = errors.New("boom")
	if w := doJSON(r, http.MethodPost, "/api/v1/thermostat/mode", `{"mode":1}`, true); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unexpected error, got %d", w.Code)
	}
}
