// Package homekit exposes the thermostat to a HomeKit controller.
package homekit

import (
	"context"
	"net/http"

	"thermostat_bridge/internal/logger"
	"thermostat_bridge/internal/models"
	"thermostat_bridge/internal/service"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	hapservice "github.com/brutella/hap/service"
)

// Accessory identity shown in the Home app.
const (
	AccessoryName = "Home Thermostat"
	ServiceName   = "Heater"
	Manufacturer  = "Studio Z"
	Model         = "ST-001"
	SerialNumber  = "0x00000001"

	targetTemperatureStep = 0.1

	hapStatusSuccess = 0
)

// Descriptor identifies the single device this bridge announces.
type Descriptor struct {
	UniqueID    string `json:"uniqueId"`
	DisplayName string `json:"displayName"`
}

// FindDevice returns the static device list. Discovery is not supported.
func FindDevice() []Descriptor {
	return []Descriptor{{UniqueID: "Device1", DisplayName: AccessoryName}}
}

// heaterCooler is the HeaterCooler service with the characteristics this bridge serves.
type heaterCooler struct {
	*hapservice.S

	Name                        *characteristic.Name
	Active                      *characteristic.Active
	CurrentHeaterCoolerState    *characteristic.CurrentHeaterCoolerState
	TargetHeaterCoolerState     *characteristic.TargetHeaterCoolerState
	CurrentTemperature          *characteristic.CurrentTemperature
	CurrentRelativeHumidity     *characteristic.CurrentRelativeHumidity
	HeatingThresholdTemperature *characteristic.HeatingThresholdTemperature
}

func newHeaterCooler(min, max float64) *heaterCooler {
	s := heaterCooler{}
	s.S = hapservice.New(hapservice.TypeHeaterCooler)

	s.Name = characteristic.NewName()
	s.Name.SetValue(ServiceName)
	s.AddC(s.Name.C)

	s.Active = characteristic.NewActive()
	s.AddC(s.Active.C)

	s.CurrentHeaterCoolerState = characteristic.NewCurrentHeaterCoolerState()
	s.AddC(s.CurrentHeaterCoolerState.C)

	s.TargetHeaterCoolerState = characteristic.NewTargetHeaterCoolerState()
	s.TargetHeaterCoolerState.ValidVals = []int{characteristic.TargetHeaterCoolerStateHeat}
	s.TargetHeaterCoolerState.SetValue(characteristic.TargetHeaterCoolerStateHeat)
	s.AddC(s.TargetHeaterCoolerState.C)

	s.CurrentTemperature = characteristic.NewCurrentTemperature()
	s.AddC(s.CurrentTemperature.C)

	s.CurrentRelativeHumidity = characteristic.NewCurrentRelativeHumidity()
	s.AddC(s.CurrentRelativeHumidity.C)

	s.HeatingThresholdTemperature = characteristic.NewHeatingThresholdTemperature()
	s.HeatingThresholdTemperature.SetMinValue(min)
	s.HeatingThresholdTemperature.SetMaxValue(max)
	s.HeatingThresholdTemperature.SetStepValue(targetTemperatureStep)
	s.AddC(s.HeatingThresholdTemperature.C)

	return &s
}

// Accessory binds the HeaterCooler characteristics to the thermostat service.
// It implements service.Publisher so every state change is pushed to HomeKit.
type Accessory struct {
	A      *accessory.A
	heater *heaterCooler
	th     service.Thermostat
	log    *logger.Logger
}

// NewAccessory builds the accessory and seeds its characteristics from th.
func NewAccessory(th service.Thermostat, min, max float64, log *logger.Logger) *Accessory {
	if log == nil {
		log = logger.Nop()
	}
	a := &Accessory{
		A: accessory.New(accessory.Info{
			Name:         AccessoryName,
			Manufacturer: Manufacturer,
			Model:        Model,
			SerialNumber: SerialNumber,
		}, accessory.TypeHeater),
		heater: newHeaterCooler(min, max),
		th:     th,
		log:    log,
	}
	a.A.AddS(a.heater.S)

	a.heater.Active.OnValueRemoteUpdate(a.onActive)
	a.heater.HeatingThresholdTemperature.OnValueRemoteUpdate(a.onTargetTemperature)
	a.heater.TargetHeaterCoolerState.OnValueRemoteUpdate(a.onTargetMode)

	// Controller reads go through the service so an unknown reading polls the sensor.
	a.heater.CurrentTemperature.ValueRequestFunc = a.readTemperature
	a.heater.CurrentRelativeHumidity.ValueRequestFunc = a.readHumidity
	a.heater.CurrentHeaterCoolerState.ValueRequestFunc = a.readHeaterCoolerState

	a.heater.HeatingThresholdTemperature.SetValue(th.TargetTemperature())
	a.setActive(th.Active())
	return a
}

// Publish mirrors a state snapshot into the characteristics.
func (a *Accessory) Publish(st models.ThermostatState) {
	if st.HasReading() {
		a.heater.CurrentTemperature.SetValue(st.CurrentTemperature)
		a.heater.CurrentRelativeHumidity.SetValue(st.CurrentHumidity)
	}
	a.heater.HeatingThresholdTemperature.SetValue(st.TargetTemperature)
	a.setActive(st.Active)
}

func (a *Accessory) setActive(active bool) {
	if active {
		a.heater.Active.SetValue(characteristic.ActiveActive)
		a.heater.CurrentHeaterCoolerState.SetValue(models.HeaterCoolerHeating)
		return
	}
	a.heater.Active.SetValue(characteristic.ActiveInactive)
	a.heater.CurrentHeaterCoolerState.SetValue(models.HeaterCoolerInactive)
}

func (a *Accessory) onActive(v int) {
	active := v == characteristic.ActiveActive
	a.log.Infow("homekit_set_active", "active", active)
	a.th.SetActive(context.Background(), active)
	a.setActive(active)
}

func (a *Accessory) onTargetTemperature(v float64) {
	stored := a.th.SetTargetTemperature(context.Background(), v)
	a.log.Infow("homekit_set_target", "requested", v, "stored", stored)
	if stored != v {
		a.heater.HeatingThresholdTemperature.SetValue(stored)
	}
}

func (a *Accessory) onTargetMode(v int) {
	if err := a.th.SetTargetHeaterCoolerState(context.Background(), v); err != nil {
		a.log.Warnw("homekit_set_mode_rejected", "mode", v, "err", err)
		a.heater.TargetHeaterCoolerState.SetValue(a.th.TargetHeaterCoolerState())
	}
}

func (a *Accessory) readTemperature(r *http.Request) (interface{}, int) {
	v := a.th.CurrentTemperature(requestContext(r))
	a.heater.CurrentTemperature.SetValue(v)
	return v, hapStatusSuccess
}

func (a *Accessory) readHumidity(r *http.Request) (interface{}, int) {
	v := a.th.CurrentHumidity(requestContext(r))
	a.heater.CurrentRelativeHumidity.SetValue(v)
	return v, hapStatusSuccess
}

func (a *Accessory) readHeaterCoolerState(*http.Request) (interface{}, int) {
	return a.th.CurrentHeaterCoolerState(), hapStatusSuccess
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}
