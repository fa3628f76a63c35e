// Package schedule provides departures from a static sailing schedule.
package schedule

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed sailings.yaml
var defaultSailings []byte

// Sailing is one recurring timetabled crossing.
type Sailing struct {
	From       string        `yaml:"from"`
	To         string        `yaml:"to"`
	Depart     string        `yaml:"depart"` // "HH:MM", local time
	Duration   time.Duration `yaml:"duration"`
	Days       []string      `yaml:"days"` // mon..sun
	ValidFrom  time.Time     `yaml:"valid_from"`
	ValidUntil time.Time     `yaml:"valid_until"` // inclusive

	departMinutes int
	weekdays      map[time.Weekday]bool
}

// Schedule implements domain.DepartureProvider over a fixed set of sailings.
type Schedule struct {
	stops    map[string]string
	sailings []Sailing
}

type file struct {
	Stops    map[string]string `yaml:"stops"`
	Sailings []Sailing         `yaml:"sailings"`
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// Load reads a schedule from path, or the embedded default when path is empty.
func Load(path string) (*Schedule, error) {
	if path == "" {
		return Parse(defaultSailings)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schedule.
func Parse(data []byte) (*Schedule, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}

	for i := range f.Sailings {
		if err := f.Sailings[i].prepare(); err != nil {
			return nil, fmt.Errorf("sailing %d: %w", i, err)
		}
	}
	slices.SortStableFunc(f.Sailings, func(a, b Sailing) int {
		return a.departMinutes - b.departMinutes
	})

	return &Schedule{stops: f.Stops, sailings: f.Sailings}, nil
}

func (s *Sailing) prepare() error {
	if s.From == "" || s.To == "" {
		return fmt.Errorf("from and to are required")
	}
	t, err := time.Parse("15:04", s.Depart)
	if err != nil {
		return fmt.Errorf("depart %q: %w", s.Depart, err)
	}
	s.departMinutes = t.Hour()*60 + t.Minute()
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive")
	}
	if !s.ValidUntil.IsZero() && s.ValidUntil.Before(s.ValidFrom) {
		return fmt.Errorf("valid_until is before valid_from")
	}

	s.weekdays = make(map[time.Weekday]bool, len(s.Days))
	for _, d := range s.Days {
		wd, ok := weekdayNames[strings.ToLower(d)]
		if !ok {
			return fmt.Errorf("unknown day %q", d)
		}
		s.weekdays[wd] = true
	}
	if len(s.weekdays) == 0 {
		return fmt.Errorf("days is required")
	}
	return nil
}

// runsOn reports whether the sailing operates on the calendar day of date.
func (s *Sailing) runsOn(date time.Time) bool {
	if !s.weekdays[date.Weekday()] {
		return false
	}
	day := civilDate(date)
	if !s.ValidFrom.IsZero() && day.Before(civilDate(s.ValidFrom)) {
		return false
	}
	if !s.ValidUntil.IsZero() && day.After(civilDate(s.ValidUntil)) {
		return false
	}
	return true
}

// civilDate strips the clock and zone, keeping the calendar day.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// HasStop reports whether the stop has a display name.
func (s *Schedule) HasStop(id string) bool {
	_, ok := s.stops[id]
	return ok
}

// StopName returns the display name of a stop, or the id when unknown.
func (s *Schedule) StopName(id string) string {
	if name, ok := s.stops[id]; ok {
		return name
	}
	return id
}

// FetchDepartures returns the sailings from one stop to another that run on
// date's calendar day, ordered by departure time.
func (s *Schedule) FetchDepartures(date time.Time, fromStopID, toStopID string) []domain.Departure {
	var out []domain.Departure
	for i := range s.sailings {
		sl := &s.sailings[i]
		if sl.From != fromStopID || sl.To != toStopID || !sl.runsOn(date) {
			continue
		}
		departMinutes := sl.departMinutes
		duration := sl.Duration
		out = append(out, domain.Departure{
			FromStopID:    sl.From,
			ToStopID:      sl.To,
			From:          s.StopName(sl.From),
			To:            s.StopName(sl.To),
			DepartureTime: sl.Depart,
			ArrivalTime: func(d time.Time) string {
				start := time.Date(d.Year(), d.Month(), d.Day(), 0, departMinutes, 0, 0, d.Location())
				return start.Add(duration).Format("15:04")
			},
		})
	}
	return out
}

// DeparturesAvailable reports whether any sailing between the two stops, in
// either direction, is valid on or after now.
func (s *Schedule) DeparturesAvailable(fromStopID, toStopID string, now time.Time) bool {
	today := civilDate(now)
	for i := range s.sailings {
		sl := &s.sailings[i]
		forward := sl.From == fromStopID && sl.To == toStopID
		reverse := sl.From == toStopID && sl.To == fromStopID
		if !forward && !reverse {
			continue
		}
		if sl.ValidUntil.IsZero() || !civilDate(sl.ValidUntil).Before(today) {
			return true
		}
	}
	return false
}
