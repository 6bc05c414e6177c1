package handlers

import (
	"context"
	"net/http"
	"time"

	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(ctx context.Context, username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockThermostat struct {
	active  bool
	target  float64
	min     float64
	max     float64
	modeErr error

	setActiveCalls int
	lastMode       int
}

func (m *mockThermostat) SetActive(ctx context.Context, active bool) {
	m.setActiveCalls++
	m.active = active
}
func (m *mockThermostat) Active() bool { return m.active }
func (m *mockThermostat) SetTargetTemperature(ctx context.Context, temp float64) float64 {
	m.target = service.ClampTemperature(temp, m.min, m.max)
	return m.target
}
func (m *mockThermostat) TargetTemperature() float64 { return m.target }
func (m *mockThermostat) SetTargetHeaterCoolerState(ctx context.Context, mode int) error {
	m.lastMode = mode
	return m.modeErr
}
func (m *mockThermostat) TargetHeaterCoolerState() int                   { return models.TargetModeHeat }
func (m *mockThermostat) CurrentHeaterCoolerState() int                  { return models.HeaterCoolerHeating }
func (m *mockThermostat) CurrentTemperature(ctx context.Context) float64 { return 21 }
func (m *mockThermostat) CurrentHumidity(ctx context.Context) float64    { return 40 }

type mockMonitoring struct {
	state models.ThermostatState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ThermostatState, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.ThermostatEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.ThermostatEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
