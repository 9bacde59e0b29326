package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/directions/json"

// Client calls the Google Directions API with waypoint optimization. It
// implements the optimizer port used by run sequencing and is safe for
// concurrent use.
type Client struct {
	session *http.Client
	apiKey  string
	baseURL string
}

// NewClient returns a directions client, or an error when the API key is
// empty. Callers that can run without an optimizer should pass the
// resulting nil interface instead.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("directions api key is empty")
	}

	return &Client{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
	}, nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

type directionsResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Routes       []struct {
		WaypointOrder []int `json:"waypoint_order"`
	} `json:"routes"`
}

// OptimizeWaypoints asks the API for the best visiting order of waypoints
// between origin and destination. The returned slice holds indexes into
// the input waypoints, best order first.
func (c *Client) OptimizeWaypoints(ctx context.Context, origin, destination string, waypoints []string) ([]int, error) {
	if origin == "" || destination == "" {
		return nil, errors.New("optimize waypoints: origin and destination must be non-empty")
	}
	if len(waypoints) == 0 {
		return []int{}, nil
	}

	query := url.Values{}
	query.Set("origin", origin)
	query.Set("destination", destination)
	query.Set("waypoints", "optimize:true|"+strings.Join(waypoints, "|"))
	query.Set("key", c.apiKey)
	requestURL := c.baseURL + "?" + query.Encode()

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("directions request: %w", err)
	}
	defer resp.Body.Close()

	var parsed directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode directions response: %w", err)
	}

	if parsed.Status != "OK" {
		if parsed.ErrorMessage != "" {
			return nil, fmt.Errorf("directions api status %s: %s", parsed.Status, parsed.ErrorMessage)
		}
		return nil, fmt.Errorf("directions api status %s", parsed.Status)
	}
	if len(parsed.Routes) == 0 {
		return nil, errors.New("directions api returned no routes")
	}

	order := parsed.Routes[0].WaypointOrder
	if len(order) != len(waypoints) {
		return nil, fmt.Errorf("directions api returned %d waypoint indexes for %d waypoints", len(order), len(waypoints))
	}

	return order, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) with exponential backoff while respecting context
// cancellation.
func (c *Client) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	const maxAttempts = 4
	backoff := 200 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}

		if !retry || attempt == maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
