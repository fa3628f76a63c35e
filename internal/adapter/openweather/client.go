// Package openweather fetches current weather from the OpenWeatherMap API.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "http://api.openweathermap.org/"

const weatherPath = "data/2.5/weather"

// Client calls the current-weather endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenWeatherMap client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// RequestKey is the canonical form of a coordinate pair: the query of the
// weather request without the API key, with coordinates fixed to four
// decimal places (about 11 m). It doubles as the cache key.
func RequestKey(lat, lon float64) string {
	return fmt.Sprintf("lat=%.4f&lon=%.4f", lat, lon)
}

// CurrentWeather fetches the weather at the given coordinates. Any response
// other than cod 200 with at least one weather condition is an error.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (domain.Weather, error) {
	u, err := c.requestURL(lat, lon)
	if err != nil {
		return domain.Weather{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Weather{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.APIDuration.WithLabelValues("openweather").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.Weather{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Weather{}, fmt.Errorf("openweather API error: status %d: %s", resp.StatusCode, body)
	}

	var owResp response
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return domain.Weather{}, fmt.Errorf("decode response: %w", err)
	}
	if owResp.Cod != http.StatusOK {
		return domain.Weather{}, fmt.Errorf("openweather API error: cod %d: %s", owResp.Cod, owResp.Message)
	}
	if len(owResp.Weather) == 0 {
		return domain.Weather{}, fmt.Errorf("openweather response has no weather conditions")
	}

	c.logger.Debug("weather fetched", "lat", lat, "lon", lon, "city", owResp.Name)
	return owResp.toDomain(), nil
}

func (c *Client) requestURL(lat, lon float64) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	ref := &url.URL{
		Path:     weatherPath,
		RawQuery: RequestKey(lat, lon) + "&APPID=" + url.QueryEscape(c.apiKey),
	}
	return base.ResolveReference(ref).String(), nil
}

// OpenWeatherMap API response types.

type response struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	ID      int        `json:"id"`
	Name    string     `json:"name"`
	Dt      *int64     `json:"dt"`

	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`

	Sys struct {
		Sunrise *int64 `json:"sunrise"`
		Sunset  *int64 `json:"sunset"`
	} `json:"sys"`

	Wind struct {
		Speed *float64 `json:"speed"`
		Gust  *float64 `json:"gust"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`

	Main struct {
		Temp      *float64 `json:"temp"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
		GrndLevel *float64 `json:"grnd_level"`
		SeaLevel  *float64 `json:"sea_level"`
	} `json:"main"`

	Clouds struct {
		All *float64 `json:"all"`
	} `json:"clouds"`

	Rain map[string]float64 `json:"rain"`
	Snow map[string]float64 `json:"snow"`

	Weather []condition `json:"weather"`
}

type condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// statusCode accepts cod as a number or a numeric string; the API uses both.
type statusCode int

func (s *statusCode) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*s = statusCode(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("cod: %w", err)
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("cod %q: %w", str, err)
	}
	*s = statusCode(n)
	return nil
}

func (r response) toDomain() domain.Weather {
	w := domain.Weather{
		CityID:              r.ID,
		CityName:            r.Name,
		ReceivedAt:          unixTime(r.Dt),
		Latitude:            r.Coord.Lat,
		Longitude:           r.Coord.Lon,
		Sunrise:             unixTime(r.Sys.Sunrise),
		Sunset:              unixTime(r.Sys.Sunset),
		WindSpeed:           r.Wind.Speed,
		GustSpeed:           r.Wind.Gust,
		WindDirection:       r.Wind.Deg,
		Temp:                r.Main.Temp,
		TempMin:             r.Main.TempMin,
		TempMax:             r.Main.TempMax,
		Humidity:            r.Main.Humidity,
		Pressure:            r.Main.Pressure,
		PressureGroundLevel: r.Main.GrndLevel,
		PressureSeaLevel:    r.Main.SeaLevel,
		Clouds:              r.Clouds.All,
		Rain:                r.Rain,
		Snow:                r.Snow,
		Conditions:          make([]domain.Condition, 0, len(r.Weather)),
	}
	for _, c := range r.Weather {
		w.Conditions = append(w.Conditions, domain.Condition{
			ID:          c.ID,
			Group:       c.Main,
			Description: c.Description,
			Icon:        c.Icon,
		})
	}
	return w
}

func unixTime(sec *int64) time.Time {
	if sec == nil {
		return time.Time{}
	}
	return time.Unix(*sec, 0).UTC()
}
