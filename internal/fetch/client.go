package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

var errUnexpectedStatus = errors.New("unexpected status code")

// Client fetches current weather and air-quality conditions for one
// city from the external provider. Requests carry a bounded timeout and
// run through a circuit breaker; failures are terminal for that city
// for the current run.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		circuit: cb,
	}
}

// Fetch returns the raw JSON snapshot for a city.
func (c *Client) Fetch(city string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, errMissingAPIKey
	}

	values := url.Values{}
	values.Set("key", c.apiKey)
	values.Set("q", city)
	values.Set("aqi", "yes")

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, err := c.http.Get(reqURL)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("provider returned invalid JSON for %s", city)
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}

	return result.([]byte), nil
}
