package handlers

import (
	"errors"
	"net/http"

	"thermostat_bridge/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithState writes the extra fields plus the current snapshot when available.
func (h *Handler) respondWithState(c *gin.Context, extra gin.H) {
	resp := gin.H{}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}

// ActiveRequest enables or disables the thermostat.
type ActiveRequest struct {
	Active *bool `json:"active" binding:"required" example:"true"`
}

// TargetRequest sets the heating set-point in Celsius. Out-of-range values are clamped.
type TargetRequest struct {
	TargetTemperature *float64 `json:"target_temperature" binding:"required" example:"21.5"`
}

// ModeRequest sets the target heater-cooler mode. Only 1 (HEAT) is accepted.
type ModeRequest struct {
	Mode *int `json:"mode" binding:"required" example:"1"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get thermostat state
// @Tags         thermostat
// @Produce      json
// @Success      200  {object}  models.ThermostatState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/thermostat/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "thermostat_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Enable or disable heating
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body      ActiveRequest  true  "Active flag"
// @Success      200   {object}  map[string]interface{}  "active, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/active [post]
// @Security     BearerAuth
func (h *Handler) setActive(c *gin.Context) {
	var req ActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	h.services.Thermostat.SetActive(c.Request.Context(), *req.Active)
	h.respondWithState(c, gin.H{"active": *req.Active})
}

// @Summary      Set target temperature
// @Description  Values outside the configured range are clamped; the stored value is returned.
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body      TargetRequest  true  "Set-point"
// @Success      200   {object}  map[string]interface{}  "target_temperature, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/target [post]
// @Security     BearerAuth
func (h *Handler) setTarget(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	stored := h.services.Thermostat.SetTargetTemperature(c.Request.Context(), *req.TargetTemperature)
	h.respondWithState(c, gin.H{"target_temperature": stored})
}

// @Summary      Set target mode
// @Description  Only HEAT (1) is supported.
// @Tags         thermostat
// @Accept       json
// @Produce      json
// @Param        body  body      ModeRequest  true  "Mode"
// @Success      200   {object}  map[string]interface{}  "mode, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/thermostat/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Thermostat.SetTargetHeaterCoolerState(c.Request.Context(), *req.Mode); err != nil {
		if errors.Is(err, service.ErrUnsupportedMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to set mode", "thermostat_set_mode_failed", err, "mode", *req.Mode)
		return
	}
	h.respondWithState(c, gin.H{"mode": *req.Mode})
}
