package openapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	props "github.com/goliatone/go-props"
)

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Custom Service", "2.0.0", WithInfoDescription("custom schema")),
		WithOperation("/settings", "PUT", "updateSettings", WithOperationSummary("Update settings")),
		WithContentType("application/x-www-form-urlencoded"),
		WithResponse("201", "Created"),
	)

	internal, ok := custom.(generator)
	if !ok {
		t.Fatalf("expected generator implementation, got %T", custom)
	}

	if got := internal.config.openAPIVersion; got != "3.1.0" {
		t.Fatalf("expected openapi version 3.1.0, got %q", got)
	}
	if got := internal.config.info.Title; got != "Custom Service" {
		t.Fatalf("expected info title Custom Service, got %q", got)
	}
	if got := internal.config.info.Version; got != "2.0.0" {
		t.Fatalf("expected info version 2.0.0, got %q", got)
	}
	if got := internal.config.info.Description; got != "custom schema" {
		t.Fatalf("expected info description custom schema, got %q", got)
	}
	if got := internal.config.operation.Path; got != "/settings" {
		t.Fatalf("expected operation path /settings, got %q", got)
	}
	if got := internal.config.operation.Method; got != "put" {
		t.Fatalf("expected method put, got %q", got)
	}
	if got := internal.config.operation.OperationID; got != "updateSettings" {
		t.Fatalf("expected operation id updateSettings, got %q", got)
	}
	if got := internal.config.operation.Summary; got != "Update settings" {
		t.Fatalf("expected operation summary Update settings, got %q", got)
	}
	if got := internal.config.contentType; got != "application/x-www-form-urlencoded" {
		t.Fatalf("expected content type application/x-www-form-urlencoded, got %q", got)
	}
	if got := internal.config.responses["201"].Description; got != "Created" {
		t.Fatalf("expected response description Created, got %q", got)
	}
	if _, exists := internal.config.responses["204"]; !exists {
		t.Fatalf("expected default 204 response to remain configured")
	}
}

func TestGeneratorFixtures(t *testing.T) {
	t.Parallel()

	cases := []string{
		"document_type_scalars.json",
		"document_type_nested.json",
		"document_snapshot.json",
		"document_components.json",
		"document_decode_target.json",
	}

	for _, name := range cases {
		name := name
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			fx := loadFixture(t, name)
			input := fx.value(t)

			generator := NewGenerator()
			doc, err := generator.Generate(input)
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if doc.Format != props.SchemaFormatOpenAPI {
				t.Fatalf("expected format %q, got %q", props.SchemaFormatOpenAPI, doc.Format)
			}

			got, ok := doc.Document.(map[string]any)
			if !ok {
				t.Fatalf("expected schema document map[string]any, got %T", doc.Document)
			}
			assertJSONEqual(t, fx.Expect.Document, got)

			if err := validateDocument(got); err != nil {
				t.Fatalf("document %s failed validation: %v", name, err)
			}
		})
	}
}

func TestGeneratorNil(t *testing.T) {
	t.Parallel()

	generator := NewGenerator()

	doc, err := generator.Generate(nil)
	if err != nil {
		t.Fatalf("Generate(nil) returned error: %v", err)
	}
	if doc.Format != props.SchemaFormatOpenAPI {
		t.Fatalf("expected format %q, got %q", props.SchemaFormatOpenAPI, doc.Format)
	}
	schema, ok := doc.Document.(map[string]any)
	if !ok {
		t.Fatalf("expected map document, got %T", doc.Document)
	}
	if err := validateDocument(schema); err != nil {
		t.Fatalf("nil input produced invalid document: %v", err)
	}
}

func TestGeneratorRootComponent(t *testing.T) {
	t.Parallel()

	input, err := buildFixtureSample("notifications_type")
	if err != nil {
		t.Fatalf("build sample: %v", err)
	}

	generator := NewGenerator(WithRootComponent("Notifications"))
	doc, err := generator.Generate(input)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	document := doc.Document.(map[string]any)
	media := document["paths"].(map[string]any)["/config"].(map[string]any)["post"].(map[string]any)["requestBody"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)
	schema := media["schema"].(map[string]any)
	if got := schema["$ref"]; got != "#/components/schemas/Notifications" {
		t.Fatalf("expected root $ref, got %v", got)
	}

	schemas := document["components"].(map[string]any)["schemas"].(map[string]any)
	if _, exists := schemas["Notifications"]; !exists {
		t.Fatalf("expected Notifications component, got %v", schemas)
	}
	if _, exists := schemas["Channel"]; !exists {
		t.Fatalf("expected Channel component, got %v", schemas)
	}
}

func TestGeneratorConcurrentAccess(t *testing.T) {
	t.Parallel()

	input, err := buildFixtureSample("alerts_type")
	if err != nil {
		t.Fatalf("build sample: %v", err)
	}
	generator := NewGenerator()

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			doc, err := generator.Generate(input)
			if err != nil {
				t.Errorf("Generate returned error: %v", err)
				return
			}
			if doc.Document == nil {
				t.Errorf("expected document payload")
			}
		}()
	}
	wg.Wait()
}

type fixture struct {
	Sample   string         `json:"sample"`
	Snapshot map[string]any `json:"snapshot"`
	Expect   struct {
		Document map[string]any `json:"document"`
	} `json:"expect"`
}

func (fx fixture) value(t *testing.T) any {
	t.Helper()

	switch {
	case fx.Sample != "":
		value, err := buildFixtureSample(fx.Sample)
		if err != nil {
			t.Fatalf("build fixture sample %q: %v", fx.Sample, err)
		}
		return value
	case fx.Snapshot != nil:
		return fx.Snapshot
	default:
		return nil
	}
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()

	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return fx
}

func assertJSONEqual(t *testing.T, want, got map[string]any) {
	t.Helper()

	wantBytes := mustMarshal(t, want)
	gotBytes := mustMarshal(t, got)

	if !bytes.Equal(wantBytes, gotBytes) {
		t.Fatalf("schema mismatch\nwant: %s\ngot:  %s", wantBytes, gotBytes)
	}
}

func mustMarshal(t *testing.T, value any) []byte {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return raw
}

type retentionPolicy struct {
	Days int    `json:"days" minimum:"1" maximum:"365" default:"30"`
	Tier string `json:"tier,omitempty" enum:"hot,cold" default:"hot"`
}

type archiveSettings struct {
	Bucket    string          `json:"bucket" minLength:"3" maxLength:"63" pattern:"^[a-z0-9-]+$"`
	Retention retentionPolicy `json:"retention"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

func buildFixtureSample(name string) (any, error) {
	switch name {
	case "alerts_type":
		return props.Define("Alerts",
			props.WithProps(
				props.Boolean("enabled", true),
				props.String("severity", "warning", props.WithChoices("info", "warning", "critical")),
				props.Integer("retries", 3, props.WithMinValue(0), props.WithMaxValue(10)),
				props.Float("sample_rate", 0.25, props.WithRule("value >= 0.0 && value <= 1.0")),
				props.Timestamp("muted_until", nil),
			),
		)
	case "notifications_type":
		channel, err := props.Define("Channel",
			props.WithProps(
				props.Boolean("enabled", true),
				props.String("frequency", "daily", props.WithChoices("hourly", "daily", "weekly")),
			),
		)
		if err != nil {
			return nil, err
		}
		return props.Define("Notifications",
			props.WithProps(
				props.Nested("email", channel),
				props.Nested("push", channel),
				props.String("theme", "system"),
			),
		)
	case "replica_snapshot":
		return map[string]any{
			"primary":   map[string]any{"host": "primary.local", "port": 8080},
			"secondary": map[string]any{"host": "secondary.local", "port": 8080},
			"replicas": []any{
				map[string]any{"host": "replica-a.local", "port": 8080},
			},
		}, nil
	case "decode_target":
		return archiveSettings{}, nil
	default:
		return nil, fmt.Errorf("unknown sample %q", name)
	}
}
