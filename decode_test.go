package props

import (
	"testing"
	"time"
)

type notifySettings struct {
	Env     string       `json:"env"`
	Enabled bool         `json:"enabled"`
	Since   time.Time    `json:"since"`
	Limits  notifyLimits `json:"limits"`
}

type notifyLimits struct {
	Daily  int `json:"daily"`
	Weekly int `json:"weekly"`
}

func decodeType(t *testing.T) *Type {
	t.Helper()
	limits := MustDefine("Limits", WithProps(
		Integer("daily", 100),
		Integer("weekly", 700),
	))
	return MustDefine("Notify", WithProps(
		String("env", "prod"),
		Boolean("enabled", true),
		Timestamp("since", nil),
		Nested("limits", limits),
	))
}

func TestDecodeAsHydratesStructs(t *testing.T) {
	notify := decodeType(t)
	container := notify.MustNew(map[string]any{
		"env":   "staging",
		"since": "2016-05-09T16:00:00Z",
		"limits": map[string]any{
			"daily": 25,
		},
	})

	settings, err := DecodeAs[notifySettings](container)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Env != "staging" || !settings.Enabled {
		t.Fatalf("unexpected scalars: %+v", settings)
	}
	if settings.Limits.Daily != 25 || settings.Limits.Weekly != 700 {
		t.Fatalf("expected nested container values, got %+v", settings.Limits)
	}
	want := time.Date(2016, 5, 9, 16, 0, 0, 0, time.UTC)
	if !settings.Since.Equal(want) {
		t.Fatalf("expected cleaned timestamp, got %v", settings.Since)
	}

	if _, err := DecodeAs[notifySettings](nil); err == nil {
		t.Fatalf("expected error for nil container")
	}
}

func TestContainerDecodeIntoTarget(t *testing.T) {
	notify := decodeType(t)
	container := notify.MustNew(nil)

	var settings notifySettings
	if err := container.Decode(&settings); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.Env != "prod" || settings.Limits.Daily != 100 {
		t.Fatalf("expected defaults to hydrate, got %+v", settings)
	}

	if err := container.Decode(nil); err == nil {
		t.Fatalf("expected error for nil target")
	}
}
