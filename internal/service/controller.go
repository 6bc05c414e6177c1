package service

import (
	"context"
	"sync"
	"time"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
)

// DefaultPollInterval is the reconcile period.
const DefaultPollInterval = 5 * time.Second

// TickResult describes one reconcile pass.
type TickResult struct {
	Reading    models.Reading
	Diff       float64
	Previous   models.ActuatorState
	Next       models.ActuatorState
	Commanded  bool
	SensorErr  error
	CommandErr error
}

// ControllerService reconciles the measured temperature against the set-point
// and drives the actuator through the hysteresis rule.
type ControllerService struct {
	cache    *SensorCache
	store    repository.StateStore
	actuator ActuatorCommander
	events   *recorder
	pub      Publisher
	log      *logger.Logger

	mu     sync.Mutex
	synced bool // the physical actuator has been told our state at least once
}

func NewControllerService(cache *SensorCache, store repository.StateStore, actuator ActuatorCommander, events *recorder, pub Publisher, log *logger.Logger) *ControllerService {
	if log == nil {
		log = logger.Nop()
	}
	if pub == nil {
		pub = NewBroadcaster()
	}
	return &ControllerService{
		cache:    cache,
		store:    store,
		actuator: actuator,
		events:   events,
		pub:      pub,
		log:      log,
	}
}

// Run reconciles once immediately, then on every tick until ctx is cancelled.
func (c *ControllerService) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = DefaultPollInterval
	}
	c.Tick(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.Tick(ctx)
		}
	}
}

// Tick performs a single reconcile pass. Device errors are logged and
// reported in the result, never returned or panicked.
func (c *ControllerService) Tick(ctx context.Context) TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	reading, sensorErr := c.cache.Current(ctx)
	st := c.store.Load()
	c.pub.Publish(st)

	// Without any reading the temperature is unknown; hold the previous state.
	var diff float64
	if st.HasReading() {
		diff = st.TargetTemperature - st.CurrentTemperature
	}
	next := NextActuatorState(st.ActuatorState, diff, st.Active)

	res := TickResult{
		Reading:   reading,
		Diff:      diff,
		Previous:  st.ActuatorState,
		Next:      next,
		SensorErr: sensorErr,
	}
	c.log.Debugw("actuator_decision",
		"target", st.TargetTemperature,
		"current", st.CurrentTemperature,
		"diff", diff,
		"active", st.Active,
		"previous", st.ActuatorState,
		"next", next,
	)

	if next == st.ActuatorState && c.synced {
		return res
	}

	if err := c.actuator.Command(ctx, next); err != nil {
		// Keep the last confirmed state so the next tick retries.
		c.log.Errorw("actuator_command_failed", "state", next, "err", err)
		c.events.record(ctx, models.EventActuatorError, "actuator command failed", map[string]any{
			"command": next.Command(),
			"error":   err.Error(),
		})
		res.CommandErr = err
		return res
	}

	initial := !c.synced
	c.synced = true
	st = c.store.Update(func(s *models.ThermostatState) { s.ActuatorState = next })
	res.Commanded = true

	c.log.Infow("actuator_commanded", "from", res.Previous, "to", next, "initial_sync", initial)
	c.events.record(ctx, models.EventActuatorCommand, "actuator "+string(next), map[string]any{
		"command":      next.Command(),
		"from":         string(res.Previous),
		"target":       st.TargetTemperature,
		"current":      st.CurrentTemperature,
		"initial_sync": initial,
	})
	c.pub.Publish(st)
	return res
}
