package models

import "time"

// ActuatorState is the physical state commanded to the heater motor.
type ActuatorState string

const (
	ActuatorHigh ActuatorState = "HIGH"
	ActuatorLow  ActuatorState = "LOW"
)

// Command returns the path token the actuator endpoint expects ("H" or "L").
func (s ActuatorState) Command() string {
	if s == ActuatorHigh {
		return "H"
	}
	return "L"
}

// HomeKit heater-cooler characteristic values.
const (
	HeaterCoolerInactive = 0
	HeaterCoolerHeating  = 2

	TargetModeHeat = 1
)

// Reading is one sensor sample.
type Reading struct {
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %
	FetchedAt   time.Time `json:"fetched_at"`
}

// ThermostatState is the in-memory snapshot of the accessory.
type ThermostatState struct {
	CurrentTemperature float64       `json:"current_temperature"` // °C, 0 = unknown
	CurrentHumidity    float64       `json:"current_humidity"`    // %
	TargetTemperature  float64       `json:"target_temperature"`  // °C
	Active             bool          `json:"active"`
	ActuatorState      ActuatorState `json:"actuator_state"`  // last successfully commanded
	LastFetchedAt      time.Time     `json:"last_fetched_at"` // last poll attempt
	LastReadingAt      time.Time     `json:"last_reading_at"` // last successful poll
}

// HasReading reports whether the sensor has answered at least once.
func (s ThermostatState) HasReading() bool { return !s.LastReadingAt.IsZero() }
