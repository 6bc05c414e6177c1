package models

import "time"

// Event types written to the audit log.
const (
	EventActuatorCommand = "ACTUATOR_COMMAND"
	EventActuatorError   = "ACTUATOR_ERROR"
	EventSensorError     = "SENSOR_ERROR"
	EventSensorRecovered = "SENSOR_RECOVERED"
	EventTargetChange    = "TARGET_CHANGE"
	EventActiveChange    = "ACTIVE_CHANGE"
)

// EventTypes lists every type the audit log can hold.
var EventTypes = []string{
	EventActuatorCommand,
	EventActuatorError,
	EventSensorError,
	EventSensorRecovered,
	EventTargetChange,
	EventActiveChange,
}

// IsEventType reports whether t names a known event type.
func IsEventType(t string) bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ThermostatEvent is a single log entry.
type ThermostatEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ACTUATOR_COMMAND | SENSOR_ERROR | ...
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
