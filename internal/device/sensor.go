package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"thermostat_bridge/internal/models"
)

// maxSensorBody bounds how much of the response is read; the payload is two numbers.
const maxSensorBody = 256

// SensorClient polls GET http://<sensor>/ which answers "<temperature>,<humidity>".
type SensorClient struct {
	url    string
	client *http.Client
	now    func() time.Time
}

func NewSensorClient(addr string, client *http.Client) *SensorClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &SensorClient{url: baseURL(addr) + "/", client: client, now: time.Now}
}

// Fetch reads one sample. The status code is not inspected: any body that
// parses as two numbers is accepted.
func (s *SensorClient) Fetch(ctx context.Context) (models.Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: build request: %v", ErrSensorUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: %v", ErrSensorUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSensorBody))
	if err != nil {
		return models.Reading{}, fmt.Errorf("%w: read body: %v", ErrSensorUnavailable, err)
	}

	temp, hum, err := ParseReading(string(body))
	if err != nil {
		return models.Reading{}, err
	}
	return models.Reading{Temperature: temp, Humidity: hum, FetchedAt: s.now()}, nil
}

// ParseReading parses "<temperature>,<humidity>".
func ParseReading(body string) (float64, float64, error) {
	parts := strings.Split(strings.TrimSpace(body), ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedReading, body)
	}
	temp, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: temperature %q", ErrMalformedReading, parts[0])
	}
	hum, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: humidity %q", ErrMalformedReading, parts[1])
	}
	return temp, hum, nil
}
