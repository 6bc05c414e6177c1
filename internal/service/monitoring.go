package service

import (
	"context"

	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
)

type MonitoringService struct {
	store repository.StateStore
}

func NewMonitoringService(store repository.StateStore) *MonitoringService {
	return &MonitoringService{store: store}
}

// GetState returns the live in-memory snapshot with timestamps in UTC.
func (s *MonitoringService) GetState(ctx context.Context) (models.ThermostatState, error) {
	if err := ctx.Err(); err != nil {
		return models.ThermostatState{}, err
	}
	st := s.store.Load()
	st.LastFetchedAt = normalizeToUTC(st.LastFetchedAt)
	st.LastReadingAt = normalizeToUTC(st.LastReadingAt)
	return st, nil
}
