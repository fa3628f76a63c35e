package view

import (
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func fptr(v float64) *float64 { return &v }

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

var (
	ardrossan = domain.Location{ID: 1, Name: "Ardrossan", Latitude: fptr(55.6402), Longitude: fptr(-4.8226)}
	brodick   = domain.Location{ID: 2, Name: "Brodick", Latitude: fptr(55.5763), Longitude: fptr(-5.1391)}
	unmapped  = domain.Location{ID: 3, Name: "Rhubodach", Latitude: fptr(55.93)}

	arran = domain.ServiceStatus{ServiceID: 5, Area: "ARRAN", Route: "Ardrossan - Brodick"}
)

func sampleWeather(tempK float64) *domain.Weather {
	return &domain.Weather{
		CityName:      "Brodick",
		Temp:          fptr(tempK),
		WindSpeed:     fptr(7.2),
		WindDirection: fptr(225),
		Conditions:    []domain.Condition{{ID: 500, Group: "Rain", Description: "light rain", Icon: "10d"}},
	}
}
