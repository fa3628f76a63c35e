package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// OpenWeatherMap configuration.
	OpenWeatherBaseURL string
	OpenWeatherAPIKey  string
	OpenWeatherEnabled bool
	WeatherTimeout     time.Duration
	WeatherCacheTTL    time.Duration

	// Disruption API configuration.
	FerryAPIBaseURL string
	FerryAPITimeout time.Duration

	// Static data files. Empty means the embedded defaults.
	DirectoryFile string
	ScheduleFile  string

	// Route pair shown by the timetable view.
	TimetableFrom string
	TimetableTo   string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("WEATHER_CACHE_TTL", "600s")
	if err != nil {
		return nil, err
	}
	ferryTimeout, err := parsePositiveDuration("FERRY_API_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	weatherEnabled := apiKey != ""
	if v := os.Getenv("OPENWEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		OpenWeatherBaseURL: sharedcfg.EnvOrDefault("OPENWEATHER_BASE_URL", "http://api.openweathermap.org/"),
		OpenWeatherAPIKey:  apiKey,
		OpenWeatherEnabled: weatherEnabled,
		WeatherTimeout:     weatherTimeout,
		WeatherCacheTTL:    cacheTTL,

		FerryAPIBaseURL: sharedcfg.EnvOrDefault("FERRY_API_BASE_URL", "https://scottishferryapp.com/api"),
		FerryAPITimeout: ferryTimeout,

		DirectoryFile: os.Getenv("DIRECTORY_FILE"),
		ScheduleFile:  os.Getenv("SCHEDULE_FILE"),

		TimetableFrom: sharedcfg.EnvOrDefault("TIMETABLE_FROM", "9300ARD"),
		TimetableTo:   sharedcfg.EnvOrDefault("TIMETABLE_TO", "9300BRB"),
	}

	if cfg.OpenWeatherEnabled && cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_ENABLED is true but OPENWEATHER_API_KEY is not set")
	}
	if cfg.FerryAPIBaseURL == "" {
		return nil, errors.New("FERRY_API_BASE_URL is required")
	}
	if cfg.TimetableFrom == cfg.TimetableTo {
		return nil, errors.New("TIMETABLE_FROM and TIMETABLE_TO must differ")
	}

	return cfg, nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}
