package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeetingAttendeesDecodeArray(t *testing.T) {
	var m Meeting
	err := json.Unmarshal([]byte(`{"id":"m1","attendees":["Ann","Bob"]}`), &m)
	require.NoError(t, err)
	assert.Equal(t, StringList{"Ann", "Bob"}, m.Attendees)
}

func TestMeetingAttendeesDecodeStoredString(t *testing.T) {
	// The backend keeps attendees in a text column and may echo the stored
	// JSON string back verbatim.
	var m Meeting
	err := json.Unmarshal([]byte(`{"id":"m1","attendees":"[\"Ann\",\"Bob\"]"}`), &m)
	require.NoError(t, err)
	assert.Equal(t, StringList{"Ann", "Bob"}, m.Attendees)
}

func TestMeetingAttendeesDecodeJunk(t *testing.T) {
	cases := []string{
		`{"attendees":"not a list"}`,
		`{"attendees":42}`,
		`{"attendees":null}`,
	}
	for _, raw := range cases {
		var m Meeting
		err := json.Unmarshal([]byte(raw), &m)
		require.NoError(t, err, raw)
		assert.Empty(t, m.Attendees, raw)
	}
}
