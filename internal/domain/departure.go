package domain

import "time"

// Departure is one scheduled sailing between two stops.
type Departure struct {
	FromStopID string `json:"from_stop_id"`
	ToStopID   string `json:"to_stop_id"`
	From       string `json:"from"` // display name of the origin
	To         string `json:"to"`   // display name of the destination

	// DepartureTime is the local wall-clock departure, "HH:MM".
	DepartureTime string `json:"departure_time"`

	// ArrivalTime returns the local wall-clock arrival, "HH:MM", for a
	// sailing on the given date. Day rollover and time zones are the
	// provider's concern.
	ArrivalTime func(date time.Time) string `json:"-"`
}

// ArrivalOn calls ArrivalTime, returning "" when the provider supplied none.
func (d Departure) ArrivalOn(date time.Time) string {
	if d.ArrivalTime == nil {
		return ""
	}
	return d.ArrivalTime(date)
}

// DepartureProvider supplies the sailings from one stop to another on a date,
// ordered by departure time.
type DepartureProvider interface {
	FetchDepartures(date time.Time, fromStopID, toStopID string) []Departure
}
