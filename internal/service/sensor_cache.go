package service

import (
	"context"
	"sync/atomic"
	"time"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"

	"golang.org/x/sync/singleflight"
)

// DefaultFreshnessWindow is how long a sensor reading is served without refetching.
const DefaultFreshnessWindow = 2 * time.Second

const sensorFlightKey = "sensor"

// SensorCache debounces sensor polling. The cached reading lives in the state store.
type SensorCache struct {
	fetcher SensorFetcher
	store   repository.StateStore
	window  time.Duration
	events  *recorder
	log     *logger.Logger
	now     func() time.Time

	group   singleflight.Group
	failing atomic.Bool
}

func NewSensorCache(fetcher SensorFetcher, store repository.StateStore, window time.Duration, events *recorder, log *logger.Logger) *SensorCache {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SensorCache{
		fetcher: fetcher,
		store:   store,
		window:  window,
		events:  events,
		log:     log,
		now:     time.Now,
	}
}

type fetchOutcome struct {
	reading models.Reading
	err     error
}

// Current returns the cached reading while it is fresh, otherwise polls the
// sensor. On failure the previous reading is returned together with the error
// and the poll timestamp still advances, so a dead sensor is hit at most once
// per window. Concurrent stale reads share a single request.
func (c *SensorCache) Current(ctx context.Context) (models.Reading, error) {
	st := c.store.Load()
	if !st.LastFetchedAt.IsZero() && c.now().Sub(st.LastFetchedAt) < c.window {
		return readingOf(st), nil
	}

	// The flight is shared, so one caller's cancellation must not fail the others.
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(sensorFlightKey, func() (interface{}, error) {
		return c.refresh(flightCtx), nil
	})
	out := v.(fetchOutcome)
	return out.reading, out.err
}

// Invalidate forces the next Current call to poll.
func (c *SensorCache) Invalidate() {
	c.store.Update(func(s *models.ThermostatState) { s.LastFetchedAt = time.Time{} })
}

func (c *SensorCache) refresh(ctx context.Context) fetchOutcome {
	now := c.now()
	c.log.Debugw("sensor_fetch_start")

	r, err := c.fetcher.Fetch(ctx)
	if err != nil {
		st := c.store.Update(func(s *models.ThermostatState) { s.LastFetchedAt = now })
		c.log.Errorw("sensor_fetch_failed", "err", err)
		if c.failing.CompareAndSwap(false, true) {
			c.events.record(ctx, models.EventSensorError, "sensor fetch failed", map[string]any{"error": err.Error()})
		}
		return fetchOutcome{reading: readingOf(st), err: err}
	}

	st := c.store.Update(func(s *models.ThermostatState) {
		s.CurrentTemperature = r.Temperature
		s.CurrentHumidity = r.Humidity
		s.LastFetchedAt = now
		s.LastReadingAt = now
	})
	if c.failing.CompareAndSwap(true, false) {
		c.events.record(ctx, models.EventSensorRecovered, "sensor answering again", nil)
	}
	c.log.Debugw("sensor_fetch_ok", "temperature", r.Temperature, "humidity", r.Humidity)
	return fetchOutcome{reading: readingOf(st)}
}

func readingOf(st models.ThermostatState) models.Reading {
	return models.Reading{
		Temperature: st.CurrentTemperature,
		Humidity:    st.CurrentHumidity,
		FetchedAt:   st.LastReadingAt,
	}
}
