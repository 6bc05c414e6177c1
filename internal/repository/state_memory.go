package repository

import (
	"sync"

	"thermostat_bridge/internal/models"
)

// StateMemory is a mutex-guarded in-process StateStore.
type StateMemory struct {
	mu    sync.RWMutex
	state models.ThermostatState
}

func NewStateMemory(initial models.ThermostatState) *StateMemory {
	if initial.ActuatorState == "" {
		initial.ActuatorState = models.ActuatorLow
	}
	return &StateMemory{state: initial}
}

// Load returns a copy of the current state.
func (m *StateMemory) Load() models.ThermostatState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Update applies fn under the write lock and returns the resulting state.
func (m *StateMemory) Update(fn func(s *models.ThermostatState)) models.ThermostatState {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.state)
	return m.state
}
