package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)
	friday = time.Date(2026, time.October, 23, 8, 0, 0, 0, time.UTC)
	sunday = time.Date(2026, time.October, 25, 8, 0, 0, 0, time.UTC)
)

func departureTimes(t *testing.T, s *Schedule, date time.Time, from, to string) []string {
	t.Helper()
	var out []string
	for _, d := range s.FetchDepartures(date, from, to) {
		out = append(out, d.DepartureTime)
	}
	return out
}

func TestLoad_EmbeddedDefault(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"07:00", "09:45", "12:30", "15:15", "18:00"},
		departureTimes(t, s, monday, "9300ARD", "9300BRB"))
	assert.Equal(t, []string{"09:45", "12:30", "15:15"},
		departureTimes(t, s, sunday, "9300ARD", "9300BRB"))
	assert.Equal(t, []string{"11:05", "13:50", "16:40"},
		departureTimes(t, s, sunday, "9300BRB", "9300ARD"))
}

func TestFetchDepartures_Fields(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	deps := s.FetchDepartures(monday, "9300ARD", "9300BRB")
	require.NotEmpty(t, deps)

	d := deps[0]
	assert.Equal(t, "9300ARD", d.FromStopID)
	assert.Equal(t, "9300BRB", d.ToStopID)
	assert.Equal(t, "Ardrossan", d.From)
	assert.Equal(t, "Brodick", d.To)
	assert.Equal(t, "07:00", d.DepartureTime)
	assert.Equal(t, "07:55", d.ArrivalOn(monday))
}

func TestFetchDepartures_ArrivalRollsOverMidnight(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	deps := s.FetchDepartures(friday, "9300ARD", "9300BRB")
	last := deps[len(deps)-1]
	assert.Equal(t, "23:30", last.DepartureTime)
	assert.Equal(t, "00:25", last.ArrivalOn(friday))
}

func TestFetchDepartures_OutsideValidity(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	before := time.Date(2026, time.October, 18, 12, 0, 0, 0, time.UTC)
	after := time.Date(2027, time.March, 27, 12, 0, 0, 0, time.UTC)
	lastDay := time.Date(2027, time.March, 26, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, s.FetchDepartures(before, "9300ARD", "9300BRB"))
	assert.Empty(t, s.FetchDepartures(after, "9300ARD", "9300BRB"))
	assert.NotEmpty(t, s.FetchDepartures(lastDay, "9300ARD", "9300BRB"), "valid_until is inclusive")
}

func TestFetchDepartures_UnknownRoute(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, s.FetchDepartures(monday, "9300OBN", "9300CRN"))
}

func TestDeparturesAvailable(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)

	assert.True(t, s.DeparturesAvailable("9300ARD", "9300BRB", monday))
	assert.True(t, s.DeparturesAvailable("9300BRB", "9300ARD", monday), "either direction")
	assert.False(t, s.DeparturesAvailable("9300ARD", "9300BRB", time.Date(2027, time.April, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, s.DeparturesAvailable("9300OBN", "9300CRN", monday))
}

func TestStopName(t *testing.T) {
	s, err := Parse([]byte(`stops: {A: Alpha}`))
	require.NoError(t, err)
	assert.Equal(t, "Alpha", s.StopName("A"))
	assert.Equal(t, "B", s.StopName("B"))
	assert.True(t, s.HasStop("A"))
	assert.False(t, s.HasStop("B"))
}

func TestParse_Invalid(t *testing.T) {
	tests := map[string]struct {
		yaml string
		want string
	}{
		"malformed":     {"sailings: [", "decode schedule"},
		"missing stops": {`sailings: [{depart: "07:00", duration: 1h, days: [mon]}]`, "from and to"},
		"bad depart":    {`sailings: [{from: A, to: B, depart: "7am", duration: 1h, days: [mon]}]`, "depart"},
		"no duration":   {`sailings: [{from: A, to: B, depart: "07:00", days: [mon]}]`, "duration"},
		"bad day":       {`sailings: [{from: A, to: B, depart: "07:00", duration: 1h, days: [funday]}]`, "unknown day"},
		"no days":       {`sailings: [{from: A, to: B, depart: "07:00", duration: 1h}]`, "days is required"},
		"inverted validity": {
			`sailings: [{from: A, to: B, depart: "07:00", duration: 1h, days: [mon], valid_from: 2026-10-19, valid_until: 2026-10-01}]`,
			"valid_until",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_OrdersByDepartureTime(t *testing.T) {
	s, err := Parse([]byte(`
sailings:
  - {from: A, to: B, depart: "18:00", duration: 30m, days: [mon]}
  - {from: A, to: B, depart: "06:15", duration: 30m, days: [mon]}
  - {from: A, to: B, depart: "12:00", duration: 30m, days: [mon]}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"06:15", "12:00", "18:00"}, departureTimes(t, s, monday, "A", "B"))
}
