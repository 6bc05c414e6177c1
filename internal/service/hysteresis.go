package service

import "thermostat_bridge/internal/models"

// DeadBand is the half-width (°C) of the band around the set-point in which
// the actuator keeps its previous state.
const DeadBand = 0.5

// NextActuatorState decides the heater state from diff = target - current.
// An inactive thermostat always drives LOW. A NaN diff keeps the previous state.
func NextActuatorState(previous models.ActuatorState, diff float64, active bool) models.ActuatorState {
	switch {
	case !active:
		return models.ActuatorLow
	case diff >= DeadBand:
		return models.ActuatorHigh
	case diff <= -DeadBand:
		return models.ActuatorLow
	default:
		return previous
	}
}

// ClampTemperature bounds t to [min, max].
func ClampTemperature(t, min, max float64) float64 {
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return t
}
