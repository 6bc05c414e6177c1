package service

import (
	"context"
	"time"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Thermostat exposes the host-facing characteristic accessors.
type Thermostat interface {
	SetActive(ctx context.Context, active bool)
	Active() bool
	SetTargetTemperature(ctx context.Context, temp float64) float64
	TargetTemperature() float64
	SetTargetHeaterCoolerState(ctx context.Context, mode int) error
	TargetHeaterCoolerState() int
	CurrentHeaterCoolerState() int
	CurrentTemperature(ctx context.Context) float64
	CurrentHumidity(ctx context.Context) float64
}

// Monitoring exposes the read-only snapshot.
type Monitoring interface {
	GetState(ctx context.Context) (models.ThermostatState, error)
}

// EventLog exposes the audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.ThermostatEvent, error)
}

// Controller runs the reconcile loop. Stop it by cancelling ctx.
type Controller interface {
	Run(ctx context.Context, tick time.Duration)
	Tick(ctx context.Context) TickResult
}

// SensorFetcher reads one temperature/humidity sample.
type SensorFetcher interface {
	Fetch(ctx context.Context) (models.Reading, error)
}

// ActuatorCommander drives the heater.
type ActuatorCommander interface {
	Command(ctx context.Context, state models.ActuatorState) error
}

// Devices groups the remote endpoints the services talk to.
type Devices struct {
	Sensor   SensorFetcher
	Actuator ActuatorCommander
}

// Options carries the tuning knobs from config.
type Options struct {
	MinTemperature  float64
	MaxTemperature  float64
	FreshnessWindow time.Duration
	SigningKey      string
	TokenTTL        time.Duration
}

type Service struct {
	Thermostat
	Monitoring
	EventLog
	Controller
	Authorization

	// Publishers receives every state change; adapters subscribe after wiring.
	Publishers *Broadcaster
}

func NewService(repos *repository.Repository, devices Devices, opts Options, log *logger.Logger) *Service {
	events := newRecorder(repos.EventRepo, log)
	pub := NewBroadcaster()
	cache := NewSensorCache(devices.Sensor, repos.StateStore, opts.FreshnessWindow, events, log)

	return &Service{
		Thermostat:    NewThermostatService(repos.StateStore, cache, events, pub, opts, log),
		Monitoring:    NewMonitoringService(repos.StateStore),
		EventLog:      NewEventLogService(repos.EventRepo),
		Controller:    NewControllerService(cache, repos.StateStore, devices.Actuator, events, pub, log),
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Publishers:    pub,
	}
}
