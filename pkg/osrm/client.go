package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// Step is one manoeuvre of a route.
type Step struct {
	Instruction    string
	Name           string
	DistanceMeters float64
}

// Route is the first route returned for a request.
type Route struct {
	DistanceMeters  float64
	DurationSeconds float64
	Steps           []Step
}

// RouteError is returned when the service answers without a usable route.
type RouteError struct {
	Code    string
	Message string
}

func (e *RouteError) Error() string {
	if e.Message == "" {
		return "osrm: " + e.Code
	}
	return fmt.Sprintf("osrm: %s: %s", e.Code, e.Message)
}

// Client queries the OSRM route service.
type Client struct {
	baseURL string
	profile string
	http    *http.Client
}

// NewClient builds a walking-profile client.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://router.project-osrm.org"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), profile: "walking", http: httpClient}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Legs     []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Name     string  `json:"name"`
				Maneuver struct {
					Type     string `json:"type"`
					Modifier string `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route returns the walking route between two points.
func (c *Client) Route(ctx context.Context, from, to Point) (*Route, error) {
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s,%s;%s,%s?overview=false&steps=true",
		c.baseURL, c.profile,
		formatCoord(from.Lon), formatCoord(from.Lat),
		formatCoord(to.Lon), formatCoord(to.Lat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("osrm: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("osrm: request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("osrm: read response: %w", err)
	}

	var out routeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("osrm: decode response (status %d): %w", resp.StatusCode, err)
	}
	if out.Code != "Ok" || len(out.Routes) == 0 {
		code := out.Code
		if code == "" {
			code = strconv.Itoa(resp.StatusCode)
		}
		return nil, &RouteError{Code: code, Message: out.Message}
	}

	first := out.Routes[0]
	route := &Route{DistanceMeters: first.Distance, DurationSeconds: first.Duration}
	for _, leg := range first.Legs {
		for _, s := range leg.Steps {
			route.Steps = append(route.Steps, Step{
				Instruction:    instruction(s.Maneuver.Type, s.Maneuver.Modifier, s.Name),
				Name:           s.Name,
				DistanceMeters: s.Distance,
			})
		}
	}
	return route, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// instruction renders an OSRM manoeuvre as a short English sentence.
func instruction(kind, modifier, name string) string {
	var verb string
	switch kind {
	case "depart":
		verb = "Head out"
		if modifier != "" {
			verb = "Head " + modifier
		}
	case "arrive":
		return "Arrive at your destination"
	case "turn", "end of road", "fork", "on ramp", "off ramp":
		verb = "Turn"
		if modifier != "" {
			verb = "Turn " + modifier
		}
		if modifier == "straight" {
			verb = "Go straight"
		}
	case "continue", "new name":
		verb = "Continue"
		if modifier != "" && modifier != "straight" {
			verb = "Keep " + modifier
		}
	case "roundabout", "rotary":
		verb = "Take the roundabout"
	default:
		verb = "Continue"
	}
	if name != "" {
		return verb + " onto " + name
	}
	return verb
}
