package service

import (
	"context"
	"errors"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
)

// Default set-point bounds (°C).
const (
	DefaultMinTemperature = 10.0
	DefaultMaxTemperature = 35.0
	DefaultTarget         = 22.0
)

// ErrUnsupportedMode is returned for any target mode other than heating.
var ErrUnsupportedMode = errors.New("unsupported mode: only HEAT is available")

// ThermostatService backs the host platform characteristics.
type ThermostatService struct {
	store  repository.StateStore
	cache  *SensorCache
	events *recorder
	pub    Publisher
	log    *logger.Logger

	min, max float64
}

func NewThermostatService(store repository.StateStore, cache *SensorCache, events *recorder, pub Publisher, opts Options, log *logger.Logger) *ThermostatService {
	if log == nil {
		log = logger.Nop()
	}
	if pub == nil {
		pub = NewBroadcaster()
	}
	min, max := opts.MinTemperature, opts.MaxTemperature
	if min >= max {
		min, max = DefaultMinTemperature, DefaultMaxTemperature
	}
	return &ThermostatService{store: store, cache: cache, events: events, pub: pub, log: log, min: min, max: max}
}

func (s *ThermostatService) SetActive(ctx context.Context, active bool) {
	var was bool
	st := s.store.Update(func(st *models.ThermostatState) {
		was = st.Active
		st.Active = active
	})
	s.log.Debugw("set_active", "from", was, "to", active)
	if was == active {
		return
	}
	if active && s.cache != nil {
		// Heating decisions after re-enabling use a fresh reading.
		s.cache.Invalidate()
	}
	s.events.record(ctx, models.EventActiveChange, activeLabel(active), map[string]any{"active": active})
	s.pub.Publish(st)
}

func (s *ThermostatService) Active() bool {
	return s.store.Load().Active
}

// SetTargetTemperature stores temp clamped to the configured range and returns
// the stored value. Out-of-range values are clamped, never rejected.
func (s *ThermostatService) SetTargetTemperature(ctx context.Context, temp float64) float64 {
	clamped := ClampTemperature(temp, s.min, s.max)
	if clamped != temp {
		s.log.Infow("target_clamped", "requested", temp, "stored", clamped, "min", s.min, "max", s.max)
	}

	var was float64
	st := s.store.Update(func(st *models.ThermostatState) {
		was = st.TargetTemperature
		st.TargetTemperature = clamped
	})
	if was != clamped {
		s.events.record(ctx, models.EventTargetChange, "target temperature changed", map[string]any{
			"from":      was,
			"to":        clamped,
			"requested": temp,
		})
	}
	s.pub.Publish(st)
	return clamped
}

func (s *ThermostatService) TargetTemperature() float64 {
	return s.store.Load().TargetTemperature
}

// SetTargetHeaterCoolerState accepts only heating.
func (s *ThermostatService) SetTargetHeaterCoolerState(ctx context.Context, mode int) error {
	if mode != models.TargetModeHeat {
		s.log.Warnw("target_mode_rejected", "mode", mode)
		return ErrUnsupportedMode
	}
	return nil
}

func (s *ThermostatService) TargetHeaterCoolerState() int {
	return models.TargetModeHeat
}

// CurrentHeaterCoolerState is HEATING while the thermostat is enabled.
func (s *ThermostatService) CurrentHeaterCoolerState() int {
	if s.Active() {
		return models.HeaterCoolerHeating
	}
	return models.HeaterCoolerInactive
}

// CurrentTemperature polls the sensor first when no temperature is known yet.
func (s *ThermostatService) CurrentTemperature(ctx context.Context) float64 {
	if st := s.store.Load(); st.CurrentTemperature != 0 {
		return st.CurrentTemperature
	}
	s.log.Debugw("initializing_temperature")
	r, _ := s.cache.Current(ctx)
	return r.Temperature
}

// CurrentHumidity polls the sensor first when no humidity is known yet.
func (s *ThermostatService) CurrentHumidity(ctx context.Context) float64 {
	if st := s.store.Load(); st.CurrentHumidity != 0 {
		return st.CurrentHumidity
	}
	s.log.Debugw("initializing_humidity")
	r, _ := s.cache.Current(ctx)
	return r.Humidity
}

func activeLabel(active bool) string {
	if active {
		return "thermostat enabled"
	}
	return "thermostat disabled"
}
