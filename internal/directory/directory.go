// Package directory is the static lookup of ferry services and their ports.
package directory

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/couchcryptid/ferry-services/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var defaultServices []byte

// Timetables records which timetable files are published for a service.
type Timetables struct {
	Winter bool `yaml:"winter" json:"winter"`
	Summer bool `yaml:"summer" json:"summer"`
}

// StopPair is the origin and destination stops used to look up sailings.
type StopPair struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// Service is one directory entry.
type Service struct {
	domain.ServiceStatus `yaml:",inline"`

	Locations  []domain.Location `yaml:"locations"`
	Timetables Timetables        `yaml:"timetables"`

	// Departures is nil when no sailing schedule is published for the service.
	Departures *StopPair `yaml:"departures"`
}

// Directory is an immutable, ordered set of services.
type Directory struct {
	services []Service
	byID     map[int]int
}

type file struct {
	Services []Service `yaml:"services"`
}

// Load reads a directory from path, or the embedded default when path is empty.
func Load(path string) (*Directory, error) {
	if path == "" {
		return Parse(defaultServices)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML directory.
func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode directory: %w", err)
	}

	d := &Directory{
		services: f.Services,
		byID:     make(map[int]int, len(f.Services)),
	}
	for i, s := range f.Services {
		if s.ServiceID <= 0 {
			return nil, fmt.Errorf("service %d: id must be positive", i)
		}
		if s.Area == "" {
			return nil, fmt.Errorf("service %d: area is required", s.ServiceID)
		}
		if _, dup := d.byID[s.ServiceID]; dup {
			return nil, fmt.Errorf("service %d: duplicate id", s.ServiceID)
		}
		if s.Departures != nil && (s.Departures.From == "" || s.Departures.To == "") {
			return nil, fmt.Errorf("service %d: departures needs both from and to", s.ServiceID)
		}
		d.byID[s.ServiceID] = i
	}
	if len(d.services) == 0 {
		return nil, errors.New("directory has no services")
	}
	return d, nil
}

// Service returns the service with the given id.
func (d *Directory) Service(id int) (Service, bool) {
	i, ok := d.byID[id]
	if !ok {
		return Service{}, false
	}
	return d.services[i], true
}

// Services returns all services in file order.
func (d *Directory) Services() []Service {
	out := make([]Service, len(d.services))
	copy(out, d.services)
	return out
}

// Locations returns every location across all services, duplicates included.
func (d *Directory) Locations() []domain.Location {
	var out []domain.Location
	for _, s := range d.services {
		out = append(out, s.Locations...)
	}
	return out
}
