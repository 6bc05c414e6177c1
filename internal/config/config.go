package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "THERMOSTAT"

// placeholderSigningKey is the value shipped in the sample config; it must be replaced.
const placeholderSigningKey = "change-me"

var ErrSigningKeyUnset = errors.New("auth.signing_key must be set (THERMOSTAT_AUTH_SIGNING_KEY) and not left at the sample value")

// Config is the resolved application configuration.
type Config struct {
	Port     string
	DBPath   string
	LogLevel string

	Devices    Devices
	Thermostat Thermostat
	Auth       Auth
	HomeKit    HomeKit
	MQTT       MQTT
}

// Devices holds the addresses of the remote sensor and actuator.
type Devices struct {
	MotorIP     string
	SensorIP    string
	HTTPTimeout time.Duration // 0 = no timeout
}

// Thermostat holds the control loop tuning.
type Thermostat struct {
	MinTemperature  float64
	MaxTemperature  float64
	DefaultTarget   float64
	PollInterval    time.Duration
	FreshnessWindow time.Duration
}

type Auth struct {
	SigningKey string
	TokenTTL   time.Duration
}

type HomeKit struct {
	Enabled     bool
	Pin         string
	StoragePath string
	Addr        string
}

// MQTT mirror is disabled when Broker is empty.
type MQTT struct {
	Broker   string
	Topic    string
	ClientID string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")

	v.SetDefault("devices.motor_ip", "10.10.8.1")
	v.SetDefault("devices.sensor_ip", "10.10.8.2")
	v.SetDefault("devices.http_timeout", 10*time.Second)

	v.SetDefault("thermostat.min_temperature", 10.0)
	v.SetDefault("thermostat.max_temperature", 35.0)
	v.SetDefault("thermostat.default_target", 22.0)
	v.SetDefault("thermostat.poll_interval", 5*time.Second)
	v.SetDefault("thermostat.freshness_window", 2*time.Second)

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", time.Hour)

	v.SetDefault("homekit.enabled", true)
	v.SetDefault("homekit.pin", "00102003")
	v.SetDefault("homekit.storage_path", "./db")
	v.SetDefault("homekit.addr", "")

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "thermostat")
	v.SetDefault("mqtt.client_id", "thermostat-bridge")
}

// Load reads .env (if present), then configs/config.yml, then THERMOSTAT_* env overrides.
// A missing config file is not an error; defaults apply.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Port:     v.GetString("port"),
		DBPath:   v.GetString("db.path"),
		LogLevel: v.GetString("log.level"),
		Devices: Devices{
			MotorIP:     v.GetString("devices.motor_ip"),
			SensorIP:    v.GetString("devices.sensor_ip"),
			HTTPTimeout: v.GetDuration("devices.http_timeout"),
		},
		Thermostat: Thermostat{
			MinTemperature:  v.GetFloat64("thermostat.min_temperature"),
			MaxTemperature:  v.GetFloat64("thermostat.max_temperature"),
			DefaultTarget:   v.GetFloat64("thermostat.default_target"),
			PollInterval:    v.GetDuration("thermostat.poll_interval"),
			FreshnessWindow: v.GetDuration("thermostat.freshness_window"),
		},
		Auth: Auth{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
		},
		HomeKit: HomeKit{
			Enabled:     v.GetBool("homekit.enabled"),
			Pin:         v.GetString("homekit.pin"),
			StoragePath: v.GetString("homekit.storage_path"),
			Addr:        v.GetString("homekit.addr"),
		},
		MQTT: MQTT{
			Broker:   v.GetString("mqtt.broker"),
			Topic:    v.GetString("mqtt.topic"),
			ClientID: v.GetString("mqtt.client_id"),
		},
	}
}

func (c Config) validate() error {
	t := c.Thermostat
	if t.MinTemperature >= t.MaxTemperature {
		return fmt.Errorf("thermostat.min_temperature %.1f must be below max_temperature %.1f", t.MinTemperature, t.MaxTemperature)
	}
	if t.DefaultTarget < t.MinTemperature || t.DefaultTarget > t.MaxTemperature {
		return fmt.Errorf("thermostat.default_target %.1f must be within [%.1f, %.1f]", t.DefaultTarget, t.MinTemperature, t.MaxTemperature)
	}
	if t.PollInterval <= 0 {
		return errors.New("thermostat.poll_interval must be positive")
	}
	if c.Devices.MotorIP == "" || c.Devices.SensorIP == "" {
		return errors.New("devices.motor_ip and devices.sensor_ip are required")
	}
	if key := strings.TrimSpace(c.Auth.SigningKey); key == "" || key == placeholderSigningKey {
		return ErrSigningKeyUnset
	}
	return nil
}
