package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ferry-services/internal/directory"
	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/sourcegraph/conc/panics"
)

// ErrNoSuchLocation is returned by RetryWeather for an index outside the service's locations.
var ErrNoSuchLocation = errors.New("no such location")

// DisruptionFetcher fetches the disruption state of a service.
type DisruptionFetcher interface {
	FetchDisruption(ctx context.Context, serviceID int) (domain.DisruptionDetails, domain.RouteDetails, error)
}

// WeatherFetcher fetches the current weather at a location.
type WeatherFetcher interface {
	Fetch(ctx context.Context, loc domain.Location) (domain.Weather, error)
}

// DeparturesChecker reports whether a schedule has sailings between two stops from now on.
type DeparturesChecker interface {
	DeparturesAvailable(fromStopID, toStopID string, now time.Time) bool
}

// Dependencies are the collaborators shared by all service screens.
type Dependencies struct {
	Disruptions DisruptionFetcher
	Weather     WeatherFetcher
	Departures  DeparturesChecker // nil when no schedule is loaded
	Clock       clockwork.Clock
	Metrics     *observability.Metrics
	Logger      *slog.Logger
}

// ServiceSnapshot is a published, immutable view of a service screen.
type ServiceSnapshot struct {
	ServiceID  int                 `json:"service_id"`
	Title      string              `json:"title"`
	Refreshing bool                `json:"refreshing"`
	Route      domain.RouteDetails `json:"route"`
	Version    uint64              `json:"version"`
	Sections   []Section           `json:"sections"`
}

// ServiceDetail is the view-model of one service screen. Fetches run
// concurrently; their results are applied on the screen's loop, and the
// sections are rebuilt after each one.
//
// At most one refresh cycle runs at a time. A cycle ends when the disruption
// fetch and every weather fetch it started have settled.
type ServiceDetail struct {
	ctx     context.Context
	loop    *Loop
	builder *Builder
	deps    Dependencies
	service directory.Service

	// Owned by the loop.
	state    State
	route    domain.RouteDetails
	gens     []uint64
	pending  int
	version  uint64
	onChange func(ServiceSnapshot)
	inflight int
	idle     []chan struct{}

	snapshot atomic.Pointer[ServiceSnapshot]
}

// NewServiceDetail creates the screen for svc and starts its loop, which runs
// until ctx is cancelled. No fetch is issued until Refresh.
func NewServiceDetail(ctx context.Context, svc directory.Service, deps Dependencies) *ServiceDetail {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	locs := make([]LocationState, len(svc.Locations))
	for i, l := range svc.Locations {
		locs[i] = LocationState{Location: l}
	}

	sd := &ServiceDetail{
		ctx:     ctx,
		loop:    NewLoop(),
		builder: NewBuilder(deps.Logger),
		deps:    deps,
		service: svc,
		state: State{
			Service:   svc.ServiceStatus,
			Locations: locs,
		},
		gens: make([]uint64, len(locs)),
	}
	sd.state.Availability = sd.availability()
	sd.rebuild()

	go sd.loop.Run(ctx)
	return sd
}

// OnChange registers fn to receive every new snapshot. fn runs on the loop
// and must not call back into the view-model synchronously.
func (sd *ServiceDetail) OnChange(ctx context.Context, fn func(ServiceSnapshot)) error {
	return sd.loop.Do(ctx, func() { sd.onChange = fn })
}

// Refresh starts a refresh cycle. It reports false, doing nothing, when a
// cycle is already running.
func (sd *ServiceDetail) Refresh(ctx context.Context) (bool, error) {
	var started bool
	err := sd.loop.Do(ctx, func() {
		if sd.state.Refreshing {
			sd.deps.Metrics.Refreshes.WithLabelValues("skipped").Inc()
			return
		}
		started = true
		sd.deps.Metrics.Refreshes.WithLabelValues("started").Inc()
		sd.deps.Logger.Info("refresh started", "service_id", sd.service.ServiceID)

		sd.state.Refreshing = true
		sd.state.Disruption.Settled = false
		sd.state.Availability = sd.availability()

		sd.pending = 1
		sd.fetchDisruption()
		for i := range sd.state.Locations {
			if !sd.state.Locations[i].Location.Mappable() {
				continue
			}
			sd.pending++
			sd.fetchWeather(i, true)
		}
		sd.rebuild()
	})
	return started, err
}

// RetryWeather re-fetches the weather of the location at index without
// starting a refresh cycle.
func (sd *ServiceDetail) RetryWeather(ctx context.Context, index int) error {
	var retryErr error
	err := sd.loop.Do(ctx, func() {
		if index < 0 || index >= len(sd.state.Locations) {
			retryErr = fmt.Errorf("%w: %d", ErrNoSuchLocation, index)
			return
		}
		if !sd.state.Locations[index].Location.Mappable() {
			retryErr = domain.ErrInvalidLocation
			return
		}
		sd.state.Locations[index].Err = nil
		sd.fetchWeather(index, false)
		sd.rebuild()
	})
	if err != nil {
		return err
	}
	return retryErr
}

// Snapshot returns the latest published snapshot.
func (sd *ServiceDetail) Snapshot() ServiceSnapshot {
	return *sd.snapshot.Load()
}

// Sections returns the latest published sections.
func (sd *ServiceDetail) Sections() []Section {
	return sd.snapshot.Load().Sections
}

// State returns a copy of the current state.
func (sd *ServiceDetail) State(ctx context.Context) (State, error) {
	var s State
	err := sd.loop.Do(ctx, func() {
		s = sd.state
		s.Locations = append([]LocationState(nil), sd.state.Locations...)
	})
	return s, err
}

// Wait blocks until no fetch is in flight, with every result applied.
func (sd *ServiceDetail) Wait(ctx context.Context) error {
	idle := make(chan struct{})
	err := sd.loop.Do(ctx, func() {
		if sd.inflight == 0 {
			close(idle)
			return
		}
		sd.idle = append(sd.idle, idle)
	})
	if err != nil {
		return err
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-sd.loop.Done():
		return ErrLoopStopped
	}
}

// fetchDisruption and fetchWeather run on the loop; the fetch itself runs on
// its own goroutine and posts the result back.

func (sd *ServiceDetail) fetchDisruption() {
	id := sd.service.ServiceID
	sd.inflight++
	go func() {
		var (
			details domain.DisruptionDetails
			route   domain.RouteDetails
			err     error
		)
		var pc panics.Catcher
		pc.Try(func() { details, route, err = sd.deps.Disruptions.FetchDisruption(sd.ctx, id) })
		if r := pc.Recovered(); r != nil {
			err = r.AsError()
		}
		sd.loop.Dispatch(func() {
			sd.applyDisruption(details, route, err)
			sd.fetchDone()
		})
	}()
}

func (sd *ServiceDetail) fetchWeather(index int, inCycle bool) {
	sd.gens[index]++
	gen := sd.gens[index]
	loc := sd.state.Locations[index].Location

	sd.inflight++
	go func() {
		var (
			w   domain.Weather
			err error
		)
		var pc panics.Catcher
		pc.Try(func() { w, err = sd.deps.Weather.Fetch(sd.ctx, loc) })
		if r := pc.Recovered(); r != nil {
			err = &domain.FetchError{Cause: r.AsError()}
		}
		sd.loop.Dispatch(func() {
			sd.applyWeather(index, gen, inCycle, w, err)
			sd.fetchDone()
		})
	}()
}

func (sd *ServiceDetail) applyDisruption(details domain.DisruptionDetails, route domain.RouteDetails, err error) {
	sd.state.Disruption.Settled = true
	if err != nil {
		sd.deps.Logger.Warn("disruption fetch failed", "service_id", sd.service.ServiceID, "error", err)
		sd.state.Disruption.Details = nil
		sd.route = domain.RouteDetails{}
	} else {
		sd.state.Disruption.Details = &details
		sd.route = route
	}
	sd.settle()
}

func (sd *ServiceDetail) applyWeather(index int, gen uint64, inCycle bool, w domain.Weather, err error) {
	if gen != sd.gens[index] {
		sd.deps.Metrics.StaleCompletions.Inc()
		sd.deps.Logger.Debug("discarding stale weather",
			"service_id", sd.service.ServiceID,
			"location", sd.state.Locations[index].Location.Name,
		)
	} else {
		ls := &sd.state.Locations[index]
		if err != nil {
			ls.Weather, ls.Err = nil, err
		} else {
			ls.Weather, ls.Err = &w, nil
		}
	}
	if inCycle {
		sd.settle()
		return
	}
	sd.rebuild()
}

// fetchDone releases Wait callers once the last in-flight fetch is applied.
func (sd *ServiceDetail) fetchDone() {
	sd.inflight--
	if sd.inflight > 0 {
		return
	}
	for _, ch := range sd.idle {
		close(ch)
	}
	sd.idle = nil
}

// settle accounts for one completed fetch of the current cycle.
func (sd *ServiceDetail) settle() {
	sd.pending--
	if sd.pending <= 0 && sd.state.Refreshing {
		sd.pending = 0
		sd.state.Refreshing = false
		sd.deps.Logger.Info("refresh complete", "service_id", sd.service.ServiceID)
	}
	sd.rebuild()
}

func (sd *ServiceDetail) availability() Availability {
	a := Availability{
		Winter: sd.service.Timetables.Winter,
		Summer: sd.service.Timetables.Summer,
	}
	if p := sd.service.Departures; p != nil && sd.deps.Departures != nil {
		a.Departures = sd.deps.Departures.DeparturesAvailable(p.From, p.To, sd.deps.Clock.Now())
	}
	return a
}

func (sd *ServiceDetail) rebuild() {
	sd.version++
	snap := &ServiceSnapshot{
		ServiceID:  sd.service.ServiceID,
		Title:      sd.service.Area,
		Refreshing: sd.state.Refreshing,
		Route:      sd.route,
		Version:    sd.version,
		Sections:   sd.builder.Build(sd.state),
	}
	sd.snapshot.Store(snap)
	sd.deps.Metrics.ViewRebuilds.WithLabelValues("service").Inc()
	if sd.onChange != nil {
		sd.onChange(*snap)
	}
}
