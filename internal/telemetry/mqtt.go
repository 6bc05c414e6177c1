// Package telemetry mirrors thermostat readings and actuator commands to MQTT.
package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qosAtMostOnce  = 0
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second

	// milliseconds granted to in-flight publishes on Close
	disconnectQuiesce = 250
)

// Config selects the broker. An empty Broker disables the mirror.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
}

// brokerClient is the subset of mqtt.Client the mirror uses.
type brokerClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// ReadingMessage is published to <topic>/reading.
type ReadingMessage struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Target      float64   `json:"target_temperature"`
	Active      bool      `json:"active"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ActuatorMessage is published to <topic>/actuator.
type ActuatorMessage struct {
	State     models.ActuatorState `json:"state"`
	Command   string               `json:"command"`
	Timestamp time.Time            `json:"timestamp"`
}

// Mirror publishes new readings and actuator changes. Publish failures are
// logged and dropped. Close disconnects from the broker.
type Mirror struct {
	client brokerClient
	topic  string
	log    *logger.Logger
	now    func() time.Time

	mu          sync.Mutex
	lastReading time.Time
	lastState   models.ActuatorState
	closed      bool
}

func newMirror(client brokerClient, topic string, log *logger.Logger) *Mirror {
	if log == nil {
		log = logger.Nop()
	}
	if topic == "" {
		topic = "thermostat"
	}
	return &Mirror{client: client, topic: topic, log: log, now: time.Now}
}

// Connect dials the broker and returns a ready Mirror.
func Connect(cfg Config, log *logger.Logger) (*Mirror, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, err)
	}
	return newMirror(client, cfg.Topic, log), nil
}

// Close stops mirroring and disconnects. Safe to call more than once.
func (m *Mirror) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.client.Disconnect(disconnectQuiesce)
	m.log.Infow("mqtt_disconnected")
}

// ReadingTopic and ActuatorTopic return the full topic names.
func (m *Mirror) ReadingTopic() string  { return m.topic + "/reading" }
func (m *Mirror) ActuatorTopic() string { return m.topic + "/actuator" }

// Publish implements service.Publisher.
func (m *Mirror) Publish(st models.ThermostatState) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	newReading := st.HasReading() && !st.LastReadingAt.Equal(m.lastReading)
	if newReading {
		m.lastReading = st.LastReadingAt
	}
	newState := st.ActuatorState != "" && st.ActuatorState != m.lastState
	if newState {
		m.lastState = st.ActuatorState
	}
	m.mu.Unlock()

	if newReading {
		m.send(m.ReadingTopic(), ReadingMessage{
			Temperature: st.CurrentTemperature,
			Humidity:    st.CurrentHumidity,
			Target:      st.TargetTemperature,
			Active:      st.Active,
			FetchedAt:   st.LastReadingAt.UTC(),
		})
	}
	if newState {
		m.send(m.ActuatorTopic(), ActuatorMessage{
			State:     st.ActuatorState,
			Command:   st.ActuatorState.Command(),
			Timestamp: m.now().UTC(),
		})
	}
}

func (m *Mirror) send(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		m.log.Errorw("mqtt_marshal_failed", "topic", topic, "err", err)
		return
	}
	token := m.client.Publish(topic, qosAtMostOnce, false, payload)
	go func() {
		if !token.WaitTimeout(publishTimeout) {
			m.log.Warnw("mqtt_publish_timeout", "topic", topic)
			return
		}
		if err := token.Error(); err != nil {
			m.log.Warnw("mqtt_publish_failed", "topic", topic, "err", err)
		}
	}()
}
