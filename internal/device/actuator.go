package device

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"thermostat_bridge/internal/models"
)

// ActuatorClient drives the heater motor with POST http://<motor>/<H|L>.
type ActuatorClient struct {
	base   string
	client *http.Client
}

func NewActuatorClient(addr string, client *http.Client) *ActuatorClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &ActuatorClient{base: baseURL(addr), client: client}
}

// Command sends the state. Only transport failures are reported; the response
// body and status are ignored.
func (a *ActuatorClient) Command(ctx context.Context, state models.ActuatorState) error {
	url := a.base + "/" + state.Command()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrActuatorUnavailable, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrActuatorUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return nil
}
