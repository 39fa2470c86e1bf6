package activity

import (
	"strings"
	"time"
)

// ScopeContext captures scope metadata associated with a container snapshot.
type ScopeContext struct {
	Name       string
	Label      string
	Priority   int
	Metadata   map[string]any
	SnapshotID string
}

// ContainerEventInput describes the common fields for container lifecycle
// events.
type ContainerEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectID   string
	Channel    string
	Definition string
	Recipients []string
	Metadata   map[string]any
	Path       string
	OldValue   any
	NewValue   any
	Scope      ScopeContext
	OccurredAt time.Time
}

// BuildContainerCreatedEvent constructs an activity event for container
// construction.
func BuildContainerCreatedEvent(input ContainerEventInput) Event {
	return buildContainerEvent("container.created", "container", input)
}

// BuildOptionSetEvent constructs an activity event for a single option write.
func BuildOptionSetEvent(input ContainerEventInput) Event {
	return buildContainerEvent("option.set", "option", input)
}

// BuildLayerAppliedEvent constructs an activity event describing a scope layer
// application.
func BuildLayerAppliedEvent(input ContainerEventInput) Event {
	return buildContainerEvent("layer.applied", "layer", input)
}

// BuildSnapshotSavedEvent constructs an activity event for a persisted
// snapshot.
func BuildSnapshotSavedEvent(input ContainerEventInput) Event {
	return buildContainerEvent("snapshot.saved", "snapshot", input)
}

func buildContainerEvent(verb, objectType string, input ContainerEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.Path != "" {
		metadata = ensureMetadata(metadata)
		metadata["path"] = input.Path
	}
	if input.Scope.Name != "" {
		metadata = ensureMetadata(metadata)
		metadata["scope_name"] = input.Scope.Name
		metadata["scope_priority"] = input.Scope.Priority
		if input.Scope.Label != "" {
			metadata["scope_label"] = input.Scope.Label
		}
		if len(input.Scope.Metadata) > 0 {
			metadata["scope_metadata"] = cloneMap(input.Scope.Metadata)
		}
	}
	if input.Scope.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata["snapshot_id"] = input.Scope.SnapshotID
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["old_value"] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata["new_value"] = input.NewValue
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ObjectID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.Path)
	}
	if objectID == "" {
		objectID = strings.TrimSpace(input.Scope.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Definition: strings.TrimSpace(input.Definition),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
