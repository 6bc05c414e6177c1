package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "thermostat_bridge/docs"
	"thermostat_bridge/internal/config"
	"thermostat_bridge/internal/device"
	"thermostat_bridge/internal/handlers"
	"thermostat_bridge/internal/homekit"
	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/repository"
	"thermostat_bridge/internal/repository/db"
	"thermostat_bridge/internal/server"
	"thermostat_bridge/internal/service"
	"thermostat_bridge/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

// @title        Thermostat Bridge API
// @version      1.0
// @description  Admin API for the HomeKit thermostat bridge.
// @BasePath     /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	sqlDB, err := openDB(cfg.DBPath, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(sqlDB, models.ThermostatState{
		TargetTemperature: cfg.Thermostat.DefaultTarget,
		ActuatorState:     models.ActuatorLow,
	})
	httpClient := device.NewHTTPClient(cfg.Devices.HTTPTimeout)
	devices := service.Devices{
		Sensor:   device.NewSensorClient(cfg.Devices.SensorIP, httpClient),
		Actuator: device.NewActuatorClient(cfg.Devices.MotorIP, httpClient),
	}
	services := service.NewService(repos, devices, service.Options{
		MinTemperature:  cfg.Thermostat.MinTemperature,
		MaxTemperature:  cfg.Thermostat.MaxTemperature,
		FreshnessWindow: cfg.Thermostat.FreshnessWindow,
		SigningKey:      cfg.Auth.SigningKey,
		TokenTTL:        cfg.Auth.TokenTTL,
	}, log.Named("service"))
	apiHandler := handlers.NewHandler(services, log.Named("http"))

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mirror *telemetry.Mirror
	if cfg.MQTT.Broker != "" {
		mirror = startMQTT(cfg.MQTT, services, log.Named("mqtt"))
	}
	if cfg.HomeKit.Enabled {
		startHomeKit(ctx, cfg, services, log.Named("homekit"))
	}

	go services.Controller.Run(ctx, cfg.Thermostat.PollInterval)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	waitForShutdown(cancel, srv, log)
	if mirror != nil {
		mirror.Close()
	}
}

func openDB(path string, log *logger.Logger) (*sql.DB, error) {
	if path == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		path = "app.db"
	}
	return db.InitDB(path)
}

// startMQTT mirrors state to the broker. A broker that cannot be reached is
// logged and nil is returned; the bridge keeps running without the mirror.
func startMQTT(cfg config.MQTT, services *service.Service, log *logger.Logger) *telemetry.Mirror {
	mirror, err := telemetry.Connect(telemetry.Config{
		Broker:   cfg.Broker,
		Topic:    cfg.Topic,
		ClientID: cfg.ClientID,
	}, log)
	if err != nil {
		log.Errorw("mqtt_disabled", "err", err)
		return nil
	}
	services.Publishers.Subscribe(mirror)
	log.Infow("mqtt_mirror_started", "broker", cfg.Broker, "reading_topic", mirror.ReadingTopic(), "actuator_topic", mirror.ActuatorTopic())
	return mirror
}

func startHomeKit(ctx context.Context, cfg config.Config, services *service.Service, log *logger.Logger) {
	acc := homekit.NewAccessory(services.Thermostat, cfg.Thermostat.MinTemperature, cfg.Thermostat.MaxTemperature, log)
	services.Publishers.Subscribe(acc)

	hk, err := homekit.NewServer(homekit.ServerConfig{
		Pin:         cfg.HomeKit.Pin,
		StoragePath: cfg.HomeKit.StoragePath,
		Addr:        cfg.HomeKit.Addr,
	}, acc, log)
	if err != nil {
		log.Fatalw("failed to create homekit server", "err", err)
	}
	go func() {
		if err := hk.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
			log.Errorw("homekit_server_stopped", "err", err)
		}
	}()
}

func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		log.Infow("http_listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !server.IsClosed(err) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops the loop and the HTTP server.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
