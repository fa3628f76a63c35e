package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/ferry-services/internal/adapter/ferryapi"
	httpadapter "github.com/couchcryptid/ferry-services/internal/adapter/http"
	"github.com/couchcryptid/ferry-services/internal/adapter/openweather"
	"github.com/couchcryptid/ferry-services/internal/cache"
	"github.com/couchcryptid/ferry-services/internal/config"
	"github.com/couchcryptid/ferry-services/internal/directory"
	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
	"github.com/couchcryptid/ferry-services/internal/schedule"
	"github.com/couchcryptid/ferry-services/internal/view"
	"github.com/couchcryptid/ferry-services/internal/weather"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

const warmUpConcurrency = 4

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	dir, err := directory.Load(cfg.DirectoryFile)
	if err != nil {
		logger.Error("failed to load service directory", "error", err)
		os.Exit(1)
	}
	sched, err := schedule.Load(cfg.ScheduleFile)
	if err != nil {
		logger.Error("failed to load schedule", "error", err)
		os.Exit(1)
	}

	// Weather is feature-flagged via OPENWEATHER_ENABLED / OPENWEATHER_API_KEY.
	var source weather.Source = weather.Disabled{}
	if cfg.OpenWeatherEnabled {
		source = openweather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, cfg.WeatherTimeout, metrics, logger)
		metrics.WeatherEnabled.Set(1)
		logger.Info("openweather enabled", "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("openweather disabled")
	}

	clock := clockwork.NewRealClock()
	weatherCache := cache.NewTTL[string, domain.Weather](cfg.WeatherCacheTTL, clock)
	weatherSvc := weather.NewService(source, weatherCache, metrics, logger)
	disruptions := ferryapi.NewClient(cfg.FerryAPIBaseURL, cfg.FerryAPITimeout, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	timetable := view.NewTimetable(ctx, sched, cfg.TimetableFrom, cfg.TimetableTo, clock, metrics, logger)
	screens := view.NewScreens(ctx, dir, view.Dependencies{
		Disruptions: disruptions,
		Weather:     weatherSvc,
		Departures:  sched,
		Clock:       clock,
		Metrics:     metrics,
		Logger:      logger,
	}, timetable)

	srv := httpadapter.NewServer(cfg.HTTPAddr, screens, time.Local, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Prime the weather cache for every mappable location.
	if cfg.OpenWeatherEnabled {
		go func() {
			n := weatherSvc.WarmUp(ctx, dir.Locations(), warmUpConcurrency)
			logger.Info("weather cache warmed", "locations", n)
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
