package view

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/couchcryptid/ferry-services/internal/domain"
)

// Placeholders shown when a weather reading is not available.
const (
	noTemperature   = "-"
	noConditions    = "–"
	noWindDirection = "Wind –"
	noWindSpeed     = "–"
)

// TimetablesTitle is the title of the timetable section.
const TimetablesTitle = "Timetables"

// LocationState is a location and the outcome of its latest weather fetch.
// Weather and Err are never both set; neither is set before the first fetch
// settles.
type LocationState struct {
	Location domain.Location
	Weather  *domain.Weather
	Err      error
}

// DisruptionSlot is the outcome of the latest disruption fetch. Details is
// nil when a settled fetch failed.
type DisruptionSlot struct {
	Settled bool
	Details *domain.DisruptionDetails
}

// Availability records which timetable entries a service offers.
type Availability struct {
	Departures bool // sailings from now on are in the schedule
	Winter     bool
	Summer     bool
}

// Any reports whether at least one entry is available.
func (a Availability) Any() bool { return a.Departures || a.Winter || a.Summer }

// State is everything the service screen is built from.
type State struct {
	Service      domain.ServiceStatus
	Refreshing   bool
	Disruption   DisruptionSlot
	Locations    []LocationState
	Availability Availability
}

// Builder turns a State into sections. Build has no side effects beyond logging.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build returns, in order: the disruption section, the timetable section when
// any timetable is available, and one weather section per mappable location.
func (b *Builder) Build(s State) []Section {
	sections := make([]Section, 0, 2+len(s.Locations))
	sections = append(sections, b.disruptionSection(s))
	if s.Availability.Any() {
		sections = append(sections, timetableSection(s.Service.ServiceID, s.Availability))
	}
	for i, ls := range s.Locations {
		if !ls.Location.Mappable() {
			b.logger.Debug("location has no coordinates, skipping weather",
				"service_id", s.Service.ServiceID,
				"location", ls.Location.Name,
			)
			continue
		}
		sections = append(sections, weatherSection(i, ls))
	}
	return sections
}

func (b *Builder) disruptionSection(s State) Section {
	sec := Section{Title: s.Service.Area}
	if !s.Disruption.Settled {
		sec.Rows = []Row{LoadingRow{}}
		return sec
	}

	c := domain.ClassifyDisruption(s.Disruption.Details)
	action := Action{Kind: c.Action, Content: c.Content}

	switch c.Kind {
	case domain.DisplayError:
		sec.Rows = []Row{TextOnlyRow{Text: c.Message}}
	case domain.DisplayDisruption:
		d := s.Disruption.Details
		sec.Rows = []Row{DisruptionRow{Status: d.Status, Reason: d.Reason, Action: action}}
		sec.Footer = d.LastUpdated
	default:
		sec.Rows = []Row{NoDisruptionRow{Action: action}}
	}
	return sec
}

func timetableSection(serviceID int, a Availability) Section {
	sec := Section{Title: TimetablesTitle}
	if a.Departures {
		sec.Rows = append(sec.Rows, BasicRow{
			Title:  "Departures",
			Action: Action{Kind: domain.ActionShowDepartures, ServiceID: serviceID},
		})
	}
	if a.Winter {
		sec.Rows = append(sec.Rows, BasicRow{
			Title:  "Winter timetable",
			Action: Action{Kind: domain.ActionShowTimetableFile, ServiceID: serviceID, Season: SeasonWinter},
		})
	}
	if a.Summer {
		sec.Rows = append(sec.Rows, BasicRow{
			Title:  "Summer timetable",
			Action: Action{Kind: domain.ActionShowTimetableFile, ServiceID: serviceID, Season: SeasonSummer},
		})
	}
	return sec
}

func weatherSection(index int, ls LocationState) Section {
	row := WeatherRow{
		Index:    index,
		Location: ls.Location.Name,
		Summary:  SummarizeWeather(ls.Weather),
		Weather:  ls.Weather,
	}
	switch {
	case ls.Err != nil:
		row.State = WeatherError
		row.Retry = true
	case ls.Weather != nil:
		row.State = WeatherLoaded
	default:
		row.State = WeatherPending
	}

	sec := Section{Title: ls.Location.Name, Rows: []Row{row}}
	if ls.Weather != nil {
		if gust, ok := ls.Weather.GustSpeedMph(); ok {
			sec.Rows = append(sec.Rows, BasicRow{Title: "Gusts", Subtitle: fmt.Sprintf("%d mph", int(math.Round(gust)))})
		}
	}
	return sec
}

// SummarizeWeather formats w for display. Missing readings, or a nil w, show
// dash placeholders.
func SummarizeWeather(w *domain.Weather) WeatherSummary {
	s := WeatherSummary{
		Temperature:   noTemperature,
		Conditions:    noConditions,
		WindDirection: noWindDirection,
		WindSpeed:     noWindSpeed,
	}
	if w == nil {
		return s
	}
	if t, ok := w.RoundedTempCelsius(); ok {
		s.Temperature = fmt.Sprintf("%dºC", t)
	}
	if d, ok := w.CombinedDescription(); ok {
		s.Conditions = d
	}
	if dir, ok := w.WindDirectionCardinal(); ok {
		s.WindDirection = "Wind " + dir
	}
	if mph, ok := w.WindSpeedMph(); ok {
		s.WindSpeed = fmt.Sprintf("%d", int(math.Round(mph)))
	}
	if icon, ok := w.Icon(); ok {
		s.Icon = icon
	}
	return s
}
