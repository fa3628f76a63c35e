package weather

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/ferry-services/internal/adapter/openweather"
	"github.com/couchcryptid/ferry-services/internal/cache"
	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- counting source ---

type countingSource struct {
	mu    sync.Mutex
	calls int
	coord [][2]float64
	err   error
	temp  float64
}

func (s *countingSource) CurrentWeather(_ context.Context, lat, lon float64) (domain.Weather, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.coord = append(s.coord, [2]float64{lat, lon})
	if s.err != nil {
		return domain.Weather{}, s.err
	}
	temp := s.temp
	return domain.Weather{
		Temp:       &temp,
		Conditions: []domain.Condition{{ID: 800, Group: "Clear", Description: "clear sky", Icon: "01d"}},
	}, nil
}

func (s *countingSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func coord(v float64) *float64 { return &v }

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestService(src Source, clock clockwork.Clock) *Service {
	c := cache.NewTTL[string, domain.Weather](600*time.Second, clock)
	return NewService(src, c, observability.NewMetricsForTesting(), testLogger())
}

var (
	epoch   = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	brodick = domain.Location{ID: 2, Name: "Brodick", Latitude: coord(55.576), Longitude: coord(-5.139)}
)

func TestFetch_InvalidLocation(t *testing.T) {
	src := &countingSource{}
	svc := newTestService(src, clockwork.NewFakeClockAt(epoch))

	for _, loc := range []domain.Location{
		{Name: "Nowhere"},
		{Name: "Lat only", Latitude: coord(55.0)},
		{Name: "Lon only", Longitude: coord(-5.0)},
	} {
		_, err := svc.Fetch(context.Background(), loc)
		require.ErrorIs(t, err, domain.ErrInvalidLocation, loc.Name)
	}
	assert.Equal(t, 0, src.callCount(), "no request for a location without coordinates")
}

func TestFetch_SecondRequestWithinTTLIsCached(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	src := &countingSource{temp: 280.5}
	svc := newTestService(src, clock)

	w1, err := svc.Fetch(context.Background(), brodick)
	require.NoError(t, err)

	clock.Advance(599 * time.Second)
	w2, err := svc.Fetch(context.Background(), brodick)
	require.NoError(t, err)

	assert.Equal(t, 1, src.callCount(), "should only call the API once")
	assert.Equal(t, w1, w2)
}

func TestFetch_ExpiredEntryRefetches(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	src := &countingSource{temp: 280.5}
	svc := newTestService(src, clock)

	_, err := svc.Fetch(context.Background(), brodick)
	require.NoError(t, err)

	clock.Advance(600 * time.Second)
	_, err = svc.Fetch(context.Background(), brodick)
	require.NoError(t, err)

	assert.Equal(t, 2, src.callCount())
}

func TestFetch_DifferentLocationsMiss(t *testing.T) {
	src := &countingSource{temp: 280.5}
	svc := newTestService(src, clockwork.NewFakeClockAt(epoch))

	ardrossan := domain.Location{ID: 1, Name: "Ardrossan", Latitude: coord(55.64), Longitude: coord(-4.82)}
	_, _ = svc.Fetch(context.Background(), brodick)
	_, _ = svc.Fetch(context.Background(), ardrossan)

	assert.Equal(t, 2, src.callCount())
}

func TestFetch_ErrorCollapsedAndNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("connection reset by peer")}
	svc := newTestService(src, clockwork.NewFakeClockAt(epoch))

	_, err := svc.Fetch(context.Background(), brodick)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.NotErrorIs(t, err, domain.ErrInvalidLocation)

	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.EqualError(t, fe.Cause, "connection reset by peer")

	_, _ = svc.Fetch(context.Background(), brodick)
	assert.Equal(t, 2, src.callCount(), "failures must not be cached")
}

func TestFetch_DisabledSource(t *testing.T) {
	svc := newTestService(Disabled{}, clockwork.NewFakeClockAt(epoch))

	_, err := svc.Fetch(context.Background(), brodick)
	assert.ErrorIs(t, err, domain.ErrFetch)
}

func TestFetch_ThroughOpenWeatherClient(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"cod":200,"name":"Test","main":{"temp":280.5},
			"weather":[{"id":800,"main":"Clear","description":"clear sky","icon":"01d"}]}`)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := openweather.NewClient(srv.URL, "key", 5*time.Second, metrics, testLogger())
	c := cache.NewTTL[string, domain.Weather](600*time.Second, clockwork.NewFakeClockAt(epoch))
	svc := NewService(client, c, metrics, testLogger())

	loc := domain.Location{Name: "Test", Latitude: coord(55.0), Longitude: coord(-5.0)}
	w, err := svc.Fetch(context.Background(), loc)
	require.NoError(t, err)
	temp, ok := w.RoundedTempCelsius()
	require.True(t, ok)
	assert.Equal(t, 7, temp)

	_, err = svc.Fetch(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	_, ok = c.Get("lat=55.0000&lon=-5.0000")
	assert.True(t, ok, "cache key is the canonical request key")
}

func TestFetch_NonSuccessCodIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"cod":"404","message":"city not found"}`)
	}))
	defer srv.Close()

	metrics := observability.NewMetricsForTesting()
	client := openweather.NewClient(srv.URL, "key", 5*time.Second, metrics, testLogger())
	c := cache.NewTTL[string, domain.Weather](600*time.Second, clockwork.NewFakeClockAt(epoch))
	svc := NewService(client, c, metrics, testLogger())

	_, err := svc.Fetch(context.Background(), brodick)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.Equal(t, 0, c.Len())
}

func TestWarmUp(t *testing.T) {
	src := &countingSource{temp: 280.5}
	svc := newTestService(src, clockwork.NewFakeClockAt(epoch))

	locs := []domain.Location{
		brodick,
		{ID: 1, Name: "Ardrossan", Latitude: coord(55.64), Longitude: coord(-4.82)},
		{ID: 3, Name: "Unmapped"},
	}

	warmed := svc.WarmUp(context.Background(), locs, 2)
	assert.Equal(t, 2, warmed)
	assert.Equal(t, 2, src.callCount(), "unmappable locations are skipped")

	_, err := svc.Fetch(context.Background(), brodick)
	require.NoError(t, err)
	assert.Equal(t, 2, src.callCount(), "warmed locations hit the cache")
}

func TestWarmUp_CountsOnlySuccesses(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	svc := newTestService(src, clockwork.NewFakeClockAt(epoch))

	assert.Equal(t, 0, svc.WarmUp(context.Background(), []domain.Location{brodick}, 0))
	assert.Equal(t, 1, src.callCount())
}
