// Command validate checks the static data the service runs on: the service
// directory and the sailing schedule. It verifies that both parse, that every
// service with departures points at known stops with sailings still in
// force, and that the configured timetable stops exist.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -directory data/services.yaml \
//	  -schedule data/sailings.yaml \
//	  -as-of 2026-10-19
//
// Empty paths validate the embedded defaults.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/couchcryptid/ferry-services/internal/directory"
	"github.com/couchcryptid/ferry-services/internal/schedule"
	"github.com/jonboulle/clockwork"
)

type options struct {
	directoryFile string
	scheduleFile  string
	timetableFrom string
	timetableTo   string
	asOf          time.Time // zero means the clock's current date
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dirFile := flag.String("directory", os.Getenv("DIRECTORY_FILE"), "service directory YAML (empty for embedded)")
	schedFile := flag.String("schedule", os.Getenv("SCHEDULE_FILE"), "sailing schedule YAML (empty for embedded)")
	from := flag.String("from", "9300ARD", "timetable origin stop")
	to := flag.String("to", "9300BRB", "timetable destination stop")
	asOf := flag.String("as-of", "", "date sailings must still be valid on, YYYY-MM-DD (default today)")
	flag.Parse()

	opts := options{
		directoryFile: *dirFile,
		scheduleFile:  *schedFile,
		timetableFrom: *from,
		timetableTo:   *to,
	}
	if *asOf != "" {
		d, err := time.Parse(time.DateOnly, *asOf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -as-of: %v\n", err)
			os.Exit(2)
		}
		opts.asOf = d
	}

	os.Exit(run(os.Stdout, opts, clockwork.NewRealClock()))
}

func run(out io.Writer, opts options, clock clockwork.Clock) int {
	if opts.asOf.IsZero() {
		opts.asOf = clock.Now()
	}

	fmt.Fprintln(out, "=== Ferry Data Validation ===")
	fmt.Fprintln(out)

	dir, err := directory.Load(opts.directoryFile)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load directory: %v\n", err)
		return 1
	}
	sched, err := schedule.Load(opts.scheduleFile)
	if err != nil {
		fmt.Fprintf(out, "FATAL: load schedule: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateDirectory(dir),
		validateDepartures(dir, sched, opts.asOf),
		validateTimetableStops(sched, opts.timetableFrom, opts.timetableTo),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-36s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Services: %d, locations: %d, as of %s\n",
		len(dir.Services()), len(dir.Locations()), opts.asOf.Format(time.DateOnly))

	for _, p := range phases {
		if p.passed() && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(out, "  note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return 1
}

// validateDirectory checks per-service fields the loader does not enforce.
func validateDirectory(dir *directory.Directory) *phase {
	p := &phase{name: "Directory"}
	for _, svc := range dir.Services() {
		if svc.Route == "" {
			p.errorf("service %d: route is empty", svc.ServiceID)
		}
		if len(svc.Locations) == 0 {
			p.notef("service %d has no locations, no weather sections will show", svc.ServiceID)
		}
		for _, loc := range svc.Locations {
			if !loc.Mappable() {
				p.notef("service %d: %s has no coordinates, weather is skipped", svc.ServiceID, loc.Name)
			}
		}
	}
	return p
}

// validateDepartures checks every service that offers departures against the schedule.
func validateDepartures(dir *directory.Directory, sched *schedule.Schedule, asOf time.Time) *phase {
	p := &phase{name: "Departures"}
	for _, svc := range dir.Services() {
		if svc.Departures == nil {
			continue
		}
		from, to := svc.Departures.From, svc.Departures.To
		for _, stop := range []string{from, to} {
			if !sched.HasStop(stop) {
				p.errorf("service %d: stop %s is not in the schedule", svc.ServiceID, stop)
			}
		}
		if !sched.DeparturesAvailable(from, to, asOf) {
			p.errorf("service %d: no sailings between %s and %s valid on or after %s",
				svc.ServiceID, from, to, asOf.Format(time.DateOnly))
		}
	}
	return p
}

// validateTimetableStops checks the stops the departures screen is configured with.
func validateTimetableStops(sched *schedule.Schedule, from, to string) *phase {
	p := &phase{name: "Timetable stops"}
	if from == to {
		p.errorf("origin and destination are both %s", from)
	}
	for _, stop := range []string{from, to} {
		if !sched.HasStop(stop) {
			p.errorf("stop %s is not in the schedule", stop)
		}
	}
	return p
}
