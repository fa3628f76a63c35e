package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"github.com/couchcryptid/ferry-services/internal/observability"
	"github.com/jonboulle/clockwork"
)

// ErrNoSuchRow is returned by Select for a position outside the current sections.
var ErrNoSuchRow = errors.New("no such row")

// DateFormat is the long date shown on the date row, e.g. "Monday, 19 October 2026".
const DateFormat = "Monday, 2 January 2006"

// StopNamer resolves a stop id to a display name. A DepartureProvider that
// also implements it names the headers of empty departure sections.
type StopNamer interface {
	StopName(id string) string
}

// TimetableSnapshot is a published, immutable view of the timetable screen.
type TimetableSnapshot struct {
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Expanded bool      `json:"expanded"`
	Version  uint64    `json:"version"`
	Sections []Section `json:"sections"`
}

// Timetable is the departures screen for a fixed pair of stops. It combines
// two inputs, the selected date and whether the date picker is expanded,
// with the departures for that date in both directions.
//
// Departures are fetched only when the date is set; toggling the picker
// reuses them.
type Timetable struct {
	loop     *Loop
	provider domain.DepartureProvider
	from, to string
	metrics  *observability.Metrics
	logger   *slog.Logger

	// Owned by the loop.
	date     time.Time
	expanded bool
	outbound []domain.Departure
	inbound  []domain.Departure
	version  uint64
	onChange func(TimetableSnapshot)

	snapshot atomic.Pointer[TimetableSnapshot]
}

// NewTimetable creates the timetable for sailings from one stop to another
// and back, with the selected date set to the clock's current time. Its loop
// runs until ctx is cancelled.
func NewTimetable(ctx context.Context, provider domain.DepartureProvider, fromStopID, toStopID string, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Timetable {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	t := &Timetable{
		loop:     NewLoop(),
		provider: provider,
		from:     fromStopID,
		to:       toStopID,
		metrics:  metrics,
		logger:   logger,
		date:     clock.Now(),
	}
	t.fetch()
	t.rebuild()

	go t.loop.Run(ctx)
	return t
}

// OnChange registers fn to receive every new snapshot. fn runs on the loop.
func (t *Timetable) OnChange(ctx context.Context, fn func(TimetableSnapshot)) error {
	return t.loop.Do(ctx, func() { t.onChange = fn })
}

// SetDate selects a date and re-fetches departures for it.
func (t *Timetable) SetDate(ctx context.Context, date time.Time) error {
	return t.loop.Do(ctx, func() {
		t.date = date
		t.fetch()
		t.rebuild()
	})
}

// ToggleExpanded shows or hides the date picker.
func (t *Timetable) ToggleExpanded(ctx context.Context) error {
	return t.loop.Do(ctx, func() {
		t.toggle()
	})
}

// Select handles a tap on the row at (section, row) of the current sections.
// Only the date row does anything: it toggles the picker. toggled reports
// whether it did.
func (t *Timetable) Select(ctx context.Context, section, row int) (toggled bool, err error) {
	var selectErr error
	err = t.loop.Do(ctx, func() {
		sections := t.snapshot.Load().Sections
		if section < 0 || section >= len(sections) || row < 0 || row >= len(sections[section].Rows) {
			selectErr = fmt.Errorf("%w: section %d row %d", ErrNoSuchRow, section, row)
			return
		}
		if _, ok := sections[section].Rows[row].(DateRow); ok {
			t.toggle()
			toggled = true
		}
	})
	if err != nil {
		return false, err
	}
	return toggled, selectErr
}

// Snapshot returns the latest published snapshot.
func (t *Timetable) Snapshot() TimetableSnapshot {
	return *t.snapshot.Load()
}

// Sections returns the latest published sections.
func (t *Timetable) Sections() []Section {
	return t.snapshot.Load().Sections
}

func (t *Timetable) toggle() {
	t.expanded = !t.expanded
	t.rebuild()
}

func (t *Timetable) fetch() {
	t.outbound = t.provider.FetchDepartures(t.date, t.from, t.to)
	t.inbound = t.provider.FetchDepartures(t.date, t.to, t.from)
	t.logger.Debug("departures fetched",
		"date", t.date.Format(time.DateOnly),
		"outbound", len(t.outbound),
		"inbound", len(t.inbound),
	)
}

func (t *Timetable) rebuild() {
	dateRows := []Row{DateRow{Label: "Departures", Date: t.date, Formatted: t.date.Format(DateFormat)}}
	if t.expanded {
		dateRows = append(dateRows, DatePickerRow{Date: t.date})
	}

	t.version++
	snap := &TimetableSnapshot{
		Title:    "Departures",
		Date:     t.date,
		Expanded: t.expanded,
		Version:  t.version,
		Sections: []Section{
			{Rows: dateRows},
			t.departureSection(t.outbound, t.from, t.to),
			t.departureSection(t.inbound, t.to, t.from),
		},
	}
	t.snapshot.Store(snap)
	t.metrics.ViewRebuilds.WithLabelValues("timetable").Inc()
	if t.onChange != nil {
		t.onChange(*snap)
	}
}

func (t *Timetable) departureSection(deps []domain.Departure, fromStopID, toStopID string) Section {
	header := TimetableHeaderRow{From: t.stopName(fromStopID), To: t.stopName(toStopID)}
	if len(deps) > 0 {
		header = TimetableHeaderRow{From: deps[0].From, To: deps[0].To}
	}

	rows := make([]Row, 0, 1+len(deps))
	rows = append(rows, header)
	for _, d := range deps {
		rows = append(rows, TimetableTimeRow{Departure: d.DepartureTime, Arrival: d.ArrivalOn(t.date)})
	}
	return Section{Rows: rows}
}

func (t *Timetable) stopName(id string) string {
	if n, ok := t.provider.(StopNamer); ok {
		return n.StopName(id)
	}
	return id
}
