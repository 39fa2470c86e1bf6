package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHCL(t *testing.T) {
	payload := `
volume  = 7
ratio   = 0.5
mode    = "dark"
enabled = true
tags    = ["a", "b"]

channel {
  email   = true
  retries = 3
}
`

	got, err := FromHCL(strings.NewReader(payload), "settings.hcl").Load()
	require.NoError(t, err)

	require.Equal(t, int64(7), got["volume"])
	require.Equal(t, 0.5, got["ratio"])
	require.Equal(t, "dark", got["mode"])
	require.Equal(t, true, got["enabled"])
	require.Equal(t, []any{"a", "b"}, got["tags"])
	require.Equal(t, map[string]any{"email": true, "retries": int64(3)}, got["channel"])
}

func TestFromHCLLabeledBlocks(t *testing.T) {
	payload := `
channel "email" {
  enabled = true
}

channel "sms" {
  enabled = false
}
`

	got, err := FromHCL(strings.NewReader(payload), "channels.hcl").Load()
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"email": map[string]any{"enabled": true},
		"sms":   map[string]any{"enabled": false},
	}, got["channel"])
}

func TestFromHCLRepeatedBlocksMergeLaterWins(t *testing.T) {
	payload := `
channel {
  email = false
  sms   = true
}

channel {
  email = true
}
`

	got, err := FromHCL(strings.NewReader(payload), "channels.hcl").Load()
	require.NoError(t, err)

	require.Equal(t, map[string]any{"email": true, "sms": true}, got["channel"])
}

func TestFromHCLInvalidPayload(t *testing.T) {
	_, err := FromHCL(strings.NewReader(`volume = `), "broken.hcl").Load()
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.Equal(t, "hcl", decodeErr.Format)
}
