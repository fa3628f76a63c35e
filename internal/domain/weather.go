package domain

import (
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	kelvinOffset      = 273.15
	metresPerSecToMph = 2.2369362920544
)

// Condition is one OpenWeatherMap weather-condition descriptor.
// See https://openweathermap.org/weather-conditions for codes and icons.
type Condition struct {
	ID          int    `json:"id"`
	Group       string `json:"group"`       // e.g. "Rain", "Snow", "Clouds"
	Description string `json:"description"` // e.g. "light rain"
	Icon        string `json:"icon"`        // e.g. "10d", served as https://openweathermap.org/img/w/10d.png
}

// Weather is the current weather reported for one location. Values are in
// OpenWeatherMap standard units; optional readings are nil when not reported.
type Weather struct {
	CityID     int       `json:"city_id"`
	CityName   string    `json:"city_name"`
	ReceivedAt time.Time `json:"received_at"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Sunrise time.Time `json:"sunrise"`
	Sunset  time.Time `json:"sunset"`

	WindSpeed     *float64 `json:"wind_speed,omitempty"`     // m/s
	GustSpeed     *float64 `json:"gust_speed,omitempty"`     // m/s
	WindDirection *float64 `json:"wind_direction,omitempty"` // degrees, meteorological

	Temp    *float64 `json:"temp,omitempty"`     // K
	TempMin *float64 `json:"temp_min,omitempty"` // K
	TempMax *float64 `json:"temp_max,omitempty"` // K

	Humidity            *float64 `json:"humidity,omitempty"`              // %
	Pressure            *float64 `json:"pressure,omitempty"`              // hPa
	PressureGroundLevel *float64 `json:"pressure_ground_level,omitempty"` // hPa
	PressureSeaLevel    *float64 `json:"pressure_sea_level,omitempty"`    // hPa

	Clouds *float64 `json:"clouds,omitempty"` // %

	Rain map[string]float64 `json:"rain,omitempty"` // mm per period label
	Snow map[string]float64 `json:"snow,omitempty"` // mm per period label

	Conditions []Condition `json:"conditions"`
}

// TempCelsius converts the reported temperature to Celsius.
func (w Weather) TempCelsius() (float64, bool) {
	if w.Temp == nil {
		return 0, false
	}
	return *w.Temp - kelvinOffset, true
}

// RoundedTempCelsius is TempCelsius rounded to the nearest whole degree.
func (w Weather) RoundedTempCelsius() (int, bool) {
	c, ok := w.TempCelsius()
	if !ok {
		return 0, false
	}
	return int(math.Round(c)), true
}

// WindSpeedMph converts the reported wind speed to miles per hour.
func (w Weather) WindSpeedMph() (float64, bool) {
	if w.WindSpeed == nil {
		return 0, false
	}
	return *w.WindSpeed * metresPerSecToMph, true
}

// GustSpeedMph converts the reported gust speed to miles per hour.
func (w Weather) GustSpeedMph() (float64, bool) {
	if w.GustSpeed == nil {
		return 0, false
	}
	return *w.GustSpeed * metresPerSecToMph, true
}

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirectionCardinal returns the 16-point compass direction the wind blows from.
func (w Weather) WindDirectionCardinal() (string, bool) {
	if w.WindDirection == nil {
		return "", false
	}
	deg := math.Mod(*w.WindDirection, 360)
	if deg < 0 {
		deg += 360
	}
	idx := int(math.Round(deg/22.5)) % len(compassPoints)
	return compassPoints[idx], true
}

// CombinedDescription joins all condition descriptions, e.g. "Light rain, mist".
func (w Weather) CombinedDescription() (string, bool) {
	parts := make([]string, 0, len(w.Conditions))
	for _, c := range w.Conditions {
		if c.Description != "" {
			parts = append(parts, c.Description)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return upperFirst(strings.Join(parts, ", ")), true
}

// Icon returns the icon of the primary (first) condition.
func (w Weather) Icon() (string, bool) {
	if len(w.Conditions) == 0 || w.Conditions[0].Icon == "" {
		return "", false
	}
	return w.Conditions[0].Icon, true
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
