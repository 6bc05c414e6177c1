// Package device talks to the remote sensor and actuator over plain HTTP.
package device

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrSensorUnavailable   = errors.New("sensor unavailable")
	ErrMalformedReading    = errors.New("malformed sensor reading")
	ErrActuatorUnavailable = errors.New("actuator unavailable")
)

// NewHTTPClient returns the client shared by the sensor and actuator. A zero
// timeout leaves requests unbounded.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// baseURL accepts either a bare host ("10.10.8.2") or a full URL.
func baseURL(addr string) string {
	addr = strings.TrimSuffix(addr, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}
