package source

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnv(t *testing.T) {
	src := Env{
		prefix: "PROPS_",
		environ: func() []string {
			return []string{
				"PROPS_VOLUME=7",
				"PROPS_CHANNEL__EMAIL__ENABLED=true",
				"PROPS_CHANNEL__RETRIES=3",
				"OTHER_KEY=ignored",
				"PROPS_=empty-name",
				"malformed",
			}
		},
	}

	got, err := src.Load()
	require.NoError(t, err)

	require.Equal(t, map[string]any{
		"volume": "7",
		"channel": map[string]any{
			"email":   map[string]any{"enabled": "true"},
			"retries": "3",
		},
	}, got)
}

func TestFromEnvProcessEnvironment(t *testing.T) {
	t.Setenv("PROPSTEST_MODE", "dark")
	t.Setenv("PROPSTEST_LIMITS__DAILY", "10")

	got, err := FromEnv("PROPSTEST_").Load()
	require.NoError(t, err)

	require.Equal(t, "dark", got["mode"])
	require.Equal(t, map[string]any{"daily": "10"}, got["limits"])
}

func TestFromEnvEmptyPrefixReadsNothing(t *testing.T) {
	t.Setenv("ANY_KEY", "value")

	got, err := FromEnv("").Load()
	require.NoError(t, err)
	require.Empty(t, got)
}
