package views

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttendees(t *testing.T) {
	assert.Equal(t, []string{"Ann", "Bob"}, parseAttendees("Ann, Bob"))
	assert.Equal(t, []string{"Ann"}, parseAttendees("  Ann ,, "))
	assert.Nil(t, parseAttendees(""))
}

func TestMeetingPayloadEncodesAttendeesAsString(t *testing.T) {
	encoded, err := json.Marshal([]string{"Ann", "Bob"})
	require.NoError(t, err)

	raw, err := json.Marshal(meetingPayload{
		ProjectID: "p1",
		Date:      "2026-02-10",
		Attendees: string(encoded),
		Notes:     "kickoff",
	})
	require.NoError(t, err)

	// The attendees field is a JSON string, not a nested array.
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, `["Ann","Bob"]`, decoded["attendees"])
}
