package domain

// Location is a named point served by a ferry route, e.g. a port.
// Either coordinate may be absent; such a location cannot be mapped and has no weather.
type Location struct {
	ID        int      `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude"`
}

// Coordinates returns the location's latitude and longitude. ok is false
// unless both are present.
func (l Location) Coordinates() (lat, lon float64, ok bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

// Mappable reports whether both coordinates are present.
func (l Location) Mappable() bool {
	_, _, ok := l.Coordinates()
	return ok
}
