package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testDetails        = "Service suspended"
	testAdditionalInfo = "Check the operator's website for updates."
)

func TestClassifyDisruption(t *testing.T) {
	cases := []struct {
		name    string
		details *DisruptionDetails
		want    Classification
	}{
		{
			name:    "fetch failed",
			details: nil,
			want:    Classification{Kind: DisplayError, Action: ActionNone, Message: DisruptionFetchFailedMessage},
		},
		{
			name:    "normal",
			details: &DisruptionDetails{Status: StatusNormal, Details: "ignored"},
			want:    Classification{Kind: DisplayNoDisruption, Action: ActionNone},
		},
		{
			name:    "information without additional info",
			details: &DisruptionDetails{Status: StatusInformation},
			want:    Classification{Kind: DisplayNoDisruption, Action: ActionNone},
		},
		{
			name:    "information with additional info",
			details: &DisruptionDetails{Status: StatusInformation, AdditionalInfo: testAdditionalInfo},
			want: Classification{
				Kind:    DisplayNoDisruption,
				Action:  ActionShowAdditionalInfo,
				Content: testAdditionalInfo,
			},
		},
		{
			name:    "sailings affected without additional info",
			details: &DisruptionDetails{Status: StatusSailingsAffected, Details: testDetails},
			want: Classification{
				Kind:    DisplayDisruption,
				Action:  ActionShowDisruptionInfo,
				Content: testDetails,
			},
		},
		{
			name: "sailings cancelled with additional info",
			details: &DisruptionDetails{
				Status:         StatusSailingsCancelled,
				Details:        testDetails,
				AdditionalInfo: testAdditionalInfo,
			},
			want: Classification{
				Kind:    DisplayDisruption,
				Action:  ActionShowDisruptionInfo,
				Content: testDetails + AdditionalInfoSeparator + testAdditionalInfo,
			},
		},
		{
			name:    "unknown status falls back to no disruption",
			details: &DisruptionDetails{Status: StatusUnknown, Details: testDetails},
			want:    Classification{Kind: DisplayNoDisruption, Action: ActionNone},
		},
		{
			name:    "unlisted status value falls back to no disruption",
			details: &DisruptionDetails{Status: DisruptionStatus(42)},
			want:    Classification{Kind: DisplayNoDisruption, Action: ActionNone},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyDisruption(tc.details))
		})
	}
}

func TestClassifyDisruption_NormalAndInformationNeverDisruption(t *testing.T) {
	for _, status := range []DisruptionStatus{StatusNormal, StatusInformation} {
		for _, info := range []string{"", testAdditionalInfo} {
			got := ClassifyDisruption(&DisruptionDetails{Status: status, Details: testDetails, AdditionalInfo: info})
			assert.NotEqual(t, DisplayDisruption, got.Kind, "status=%s info=%q", status, info)
		}
	}
}

func TestClassifyDisruption_CancelledContentOrder(t *testing.T) {
	got := ClassifyDisruption(&DisruptionDetails{
		Status:         StatusSailingsCancelled,
		Details:        "first",
		AdditionalInfo: "second",
	})

	assert.Contains(t, got.Content, "first")
	assert.Contains(t, got.Content, "second")
	assert.Less(t, indexOf(got.Content, "first"), indexOf(got.Content, "second"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestDisruptionStatus_String(t *testing.T) {
	assert.Equal(t, "normal", StatusNormal.String())
	assert.Equal(t, "information", StatusInformation.String())
	assert.Equal(t, "sailings_affected", StatusSailingsAffected.String())
	assert.Equal(t, "sailings_cancelled", StatusSailingsCancelled.String())
	assert.Equal(t, "unknown", DisruptionStatus(7).String())
}

func TestEnums_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Kind   DisplayKind      `json:"kind"`
		Action ActionKind       `json:"action"`
		Status DisruptionStatus `json:"status"`
	}{DisplayDisruption, ActionShowTimetableFile, StatusSailingsCancelled})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"disruption","action":"show_timetable_file","status":"sailings_cancelled"}`, string(b))
}
