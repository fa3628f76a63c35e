package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

var clock = clockwork.NewFakeClockAt(monday.Add(9 * time.Hour))

func embeddedOptions() options {
	return options{timetableFrom: "9300ARD", timetableTo: "9300BRB"}
}

func TestRun_EmbeddedDataPasses(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, embeddedOptions(), clock)

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "Rhubodach has no coordinates")
	assert.Contains(t, out.String(), "as of 2026-10-19")
}

func TestRun_AsOfDefaultsToClock(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, embeddedOptions(), clockwork.NewFakeClockAt(time.Date(2027, time.April, 1, 12, 0, 0, 0, time.UTC)))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "valid on or after 2027-04-01")
}

func TestRun_ExpiredSchedule(t *testing.T) {
	opts := embeddedOptions()
	opts.asOf = time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, opts, clock))
	assert.Contains(t, out.String(), "no sailings between 9300ARD and 9300BRB")
}

func TestRun_UnknownTimetableStop(t *testing.T) {
	opts := embeddedOptions()
	opts.timetableTo = "9300XXX"

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, opts, clock))
	assert.Contains(t, out.String(), "stop 9300XXX is not in the schedule")
}

func TestRun_BadScheduleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sailings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sailings: [{depart: 25:99}]"), 0o600))

	opts := embeddedOptions()
	opts.scheduleFile = path

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, opts, clock))
	assert.Contains(t, out.String(), "FATAL: load schedule")
}
