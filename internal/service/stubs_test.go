package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
)

// fakeEventRepo is a minimal stub that satisfies the repository.EventRepo interface.
type fakeEventRepo struct {
	mu sync.Mutex

	// captured inputs
	gotCtx   context.Context
	gotFrom  time.Time
	gotTo    time.Time
	gotType  string
	appended []models.ThermostatEvent

	// configured outputs
	events    []models.ThermostatEvent
	err       error
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.ThermostatEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ThermostatEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) countType(typ string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.appended {
		if e.Type == typ {
			n++
		}
	}
	return n
}

var errSensorDown = errors.New("sensor down")

// stubSensor returns the configured reading; set err to simulate an outage.
type stubSensor struct {
	mu    sync.Mutex
	temp  float64
	hum   float64
	err   error
	calls int
	delay time.Duration
}

func (s *stubSensor) Fetch(ctx context.Context) (models.Reading, error) {
	s.mu.Lock()
	s.calls++
	temp, hum, err, delay := s.temp, s.hum, s.err, s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if cerr := ctx.Err(); cerr != nil {
		return models.Reading{}, cerr
	}
	if err != nil {
		return models.Reading{}, err
	}
	return models.Reading{Temperature: temp, Humidity: hum, FetchedAt: time.Now()}, nil
}

func (s *stubSensor) set(temp float64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.temp, s.err = temp, err
}

func (s *stubSensor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// stubActuator records every command sent.
type stubActuator struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (a *stubActuator) Command(ctx context.Context, st models.ActuatorState) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.sent = append(a.sent, st.Command())
	return nil
}

func (a *stubActuator) setErr(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

func (a *stubActuator) commands() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.sent...)
}

// recordingPublisher keeps every published snapshot.
type recordingPublisher struct {
	mu   sync.Mutex
	seen []models.ThermostatState
}

func (p *recordingPublisher) Publish(st models.ThermostatState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, st)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.seen)
}

// fakeClock is advanced manually by tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store    *repository.StateMemory
	events   *fakeEventRepo
	sensor   *stubSensor
	actuator *stubActuator
	pub      *recordingPublisher
	clock    *fakeClock
	cache    *SensorCache
}

func newFixture(target float64, active bool) *fixture {
	f := &fixture{
		store:    repository.NewStateMemory(models.ThermostatState{TargetTemperature: target, Active: active}),
		events:   &fakeEventRepo{},
		sensor:   &stubSensor{hum: 40},
		actuator: &stubActuator{},
		pub:      &recordingPublisher{},
		clock:    newFakeClock(),
	}
	rec := newRecorder(f.events, nil)
	rec.now = f.clock.Now
	f.cache = NewSensorCache(f.sensor, f.store, DefaultFreshnessWindow, rec, nil)
	f.cache.now = f.clock.Now
	return f
}

func (f *fixture) recorder() *recorder {
	rec := newRecorder(f.events, nil)
	rec.now = f.clock.Now
	return rec
}

func (f *fixture) controller() *ControllerService {
	return NewControllerService(f.cache, f.store, f.actuator, f.recorder(), f.pub, nil)
}

func (f *fixture) thermostat() *ThermostatService {
	return NewThermostatService(f.store, f.cache, f.recorder(), f.pub, Options{MinTemperature: 10, MaxTemperature: 35}, nil)
}
