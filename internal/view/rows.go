package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/ferry-services/internal/domain"
)

// RowKind names a row variant. It is the "kind" field of a row's JSON form.
type RowKind string

const (
	KindBasic           RowKind = "basic"
	KindDisruption      RowKind = "disruption"
	KindNoDisruption    RowKind = "no_disruption"
	KindLoading         RowKind = "loading"
	KindTextOnly        RowKind = "text_only"
	KindWeather         RowKind = "weather"
	KindDate            RowKind = "date"
	KindDatePicker      RowKind = "date_picker"
	KindTimetableHeader RowKind = "timetable_header"
	KindTimetableTime   RowKind = "timetable_time"
)

// Row is one entry of a section. The set of implementations is closed; switch
// on the concrete type to render.
type Row interface {
	Kind() RowKind
	isRow()
}

// Season identifies a published timetable file.
type Season string

const (
	SeasonWinter Season = "winter"
	SeasonSummer Season = "summer"
)

// Action is what selecting a row does. The zero value does nothing.
type Action struct {
	Kind      domain.ActionKind `json:"kind"`
	Content   string            `json:"content,omitempty"`
	ServiceID int               `json:"service_id,omitempty"`
	Season    Season            `json:"season,omitempty"`
}

// BasicRow is a plain title/subtitle row.
type BasicRow struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Action   Action `json:"action"`
}

// DisruptionRow shows an affected or cancelled service.
type DisruptionRow struct {
	Status domain.DisruptionStatus `json:"status"`
	Reason string                  `json:"reason,omitempty"`
	Action Action                  `json:"action"`
}

// NoDisruptionRow shows a service running normally.
type NoDisruptionRow struct {
	Action Action `json:"action"`
}

// LoadingRow is a placeholder while a fetch is in flight.
type LoadingRow struct{}

// TextOnlyRow is an explanatory message, e.g. after a failed fetch.
type TextOnlyRow struct {
	Text string `json:"text"`
}

// WeatherState is what a location currently holds.
type WeatherState string

const (
	WeatherPending WeatherState = "pending"
	WeatherLoaded  WeatherState = "loaded"
	WeatherError   WeatherState = "error"
)

// WeatherSummary is the display text of a weather row.
type WeatherSummary struct {
	Temperature   string `json:"temperature"`
	Conditions    string `json:"conditions"`
	WindDirection string `json:"wind_direction"`
	WindSpeed     string `json:"wind_speed"`
	Icon          string `json:"icon,omitempty"`
}

// WeatherRow is the current weather at one location. Index is the location's
// position in the service, used to retry its fetch.
type WeatherRow struct {
	Index    int             `json:"index"`
	Location string          `json:"location"`
	State    WeatherState    `json:"state"`
	Summary  WeatherSummary  `json:"summary"`
	Weather  *domain.Weather `json:"weather,omitempty"`
	Retry    bool            `json:"retry"`
}

// DateRow summarises the selected timetable date. Selecting it toggles the picker.
type DateRow struct {
	Label     string    `json:"label"`
	Date      time.Time `json:"date"`
	Formatted string    `json:"formatted"`
}

// DatePickerRow lets the user choose a timetable date.
type DatePickerRow struct {
	Date time.Time `json:"date"`
}

// TimetableHeaderRow heads the departures in one direction.
type TimetableHeaderRow struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TimetableTimeRow is one sailing.
type TimetableTimeRow struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

func (BasicRow) Kind() RowKind           { return KindBasic }
func (DisruptionRow) Kind() RowKind      { return KindDisruption }
func (NoDisruptionRow) Kind() RowKind    { return KindNoDisruption }
func (LoadingRow) Kind() RowKind         { return KindLoading }
func (TextOnlyRow) Kind() RowKind        { return KindTextOnly }
func (WeatherRow) Kind() RowKind         { return KindWeather }
func (DateRow) Kind() RowKind            { return KindDate }
func (DatePickerRow) Kind() RowKind      { return KindDatePicker }
func (TimetableHeaderRow) Kind() RowKind { return KindTimetableHeader }
func (TimetableTimeRow) Kind() RowKind   { return KindTimetableTime }

func (BasicRow) isRow()           {}
func (DisruptionRow) isRow()      {}
func (NoDisruptionRow) isRow()    {}
func (LoadingRow) isRow()         {}
func (TextOnlyRow) isRow()        {}
func (WeatherRow) isRow()         {}
func (DateRow) isRow()            {}
func (DatePickerRow) isRow()      {}
func (TimetableHeaderRow) isRow() {}
func (TimetableTimeRow) isRow()   {}

// Section is a titled group of rows.
type Section struct {
	Title  string
	Footer string
	Rows   []Row
}

type sectionJSON struct {
	Title  string            `json:"title,omitempty"`
	Footer string            `json:"footer,omitempty"`
	Rows   []json.RawMessage `json:"rows"`
}

// MarshalJSON encodes each row as an object with a "kind" field.
func (s Section) MarshalJSON() ([]byte, error) {
	out := sectionJSON{Title: s.Title, Footer: s.Footer, Rows: make([]json.RawMessage, 0, len(s.Rows))}
	for i, r := range s.Rows {
		b, err := marshalRow(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out.Rows = append(out.Rows, b)
	}
	return json.Marshal(out)
}

func marshalRow(r Row) ([]byte, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(r.Kind())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	buf.Write(kind)
	if inner := bytes.TrimSpace(body[1 : len(body)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
