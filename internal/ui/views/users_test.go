package views

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPayloadOmitsBlankPassword(t *testing.T) {
	raw, err := json.Marshal(userPayload{
		Name:   "Ann",
		Email:  "ann@example.com",
		RoleID: "r1",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
}

func TestUserPayloadKeepsProvidedPassword(t *testing.T) {
	raw, err := json.Marshal(userPayload{
		Name:     "Ann",
		Email:    "ann@example.com",
		Password: "s3cret",
		RoleID:   "r1",
	})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"password":"s3cret"`)
}
