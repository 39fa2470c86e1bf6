package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/layering"
	"github.com/goliatone/go-props/pkg/activity"
)

// ErrNotImplemented is returned by adapters for operations they do not
// support (e.g. read-only stores rejecting Save).
var ErrNotImplemented = errors.New("state: not implemented")

var ErrETagMismatch = errors.New("state: etag mismatch")

// Ref identifies one persisted snapshot for one options domain.
type Ref struct {
	Domain string
	Scope  props.Scope
}

// Meta is storage-owned metadata used for trace/audit and concurrency control.
type Meta struct {
	SnapshotID string            `json:"snapshot_id,omitempty"`
	ETag       string            `json:"etag,omitempty"`
	UpdatedAt  time.Time         `json:"updated_at,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Store loads/saves one snapshot for a single scope reference. Snapshots are
// raw option maps; validation against a container type happens in Resolver.
type Store interface {
	Load(ctx context.Context, ref Ref) (snapshot map[string]any, meta Meta, ok bool, err error)
	Save(ctx context.Context, ref Ref, snapshot map[string]any, meta Meta) (Meta, error)
}

// Resolver orchestrates scoped loads and merges them into a validated
// container. Activity is optional; when set, lifecycle events are emitted.
type Resolver struct {
	Type     *props.Type
	Store    Store
	Activity *activity.Emitter
}

// Mutator edits a raw snapshot in place before it is validated and saved.
type Mutator func(snapshot map[string]any) error

func (r Ref) Identifier() (string, error) {
	switch r.Scope.Name {
	case "system":
		return fmt.Sprintf("system/%s", r.Domain), nil
	case "tenant", "org", "team", "user":
		metadataKey := r.Scope.Name + "_id"
		id, ok := r.Scope.Metadata[metadataKey]
		if !ok {
			return "", fmt.Errorf("missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		idString, ok := id.(string)
		if !ok || idString == "" {
			return "", fmt.Errorf("missing metadata key %q for scope %q", metadataKey, r.Scope.Name)
		}
		return fmt.Sprintf("%s/%s/%s", r.Scope.Name, idString, r.Domain), nil
	default:
		return "", fmt.Errorf("unsupported scope name %q", r.Scope.Name)
	}
}

// Resolve loads a snapshot per scope, stacks the ones that exist and builds a
// container carrying per-layer provenance.
func (r Resolver) Resolve(ctx context.Context, domain string, scopes ...props.Scope) (*props.Container, error) {
	if r.Type == nil {
		return nil, fmt.Errorf("state: container type is required")
	}
	if r.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}
	if len(scopes) == 0 {
		return nil, fmt.Errorf("state: at least one scope is required")
	}

	layers := make([]props.Layer, 0, len(scopes))
	for _, scope := range scopes {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, props.NewLayer(scope, snapshot, props.WithSnapshotID(meta.SnapshotID)))
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("state: no layers found for domain %q", domain)
	}

	stack, err := props.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	container, err := stack.Build(r.Type)
	if err != nil {
		return nil, err
	}

	stacked := stack.Layers()
	for _, layer := range stacked {
		input := r.eventInput(Ref{Domain: domain, Scope: layer.Scope}, layer.SnapshotID)
		r.emit(ctx, activity.BuildLayerAppliedEvent(input))
	}
	created := r.eventInput(Ref{Domain: domain, Scope: stacked[0].Scope}, stacked[0].SnapshotID)
	created.ObjectID = domain
	r.emit(ctx, activity.BuildContainerCreatedEvent(created))

	return container, nil
}

// ResolveWithDefaults behaves like Resolve but appends an in-memory defaults
// layer below every requested scope, so a container can be built even when no
// snapshot has been persisted yet. The scope name "defaults" is reserved.
func (r Resolver) ResolveWithDefaults(ctx context.Context, domain string, defaults map[string]any, scopes ...props.Scope) (*props.Container, error) {
	if r.Type == nil {
		return nil, fmt.Errorf("state: container type is required")
	}
	if r.Store == nil {
		return nil, fmt.Errorf("state: store is required")
	}
	if domain == "" {
		return nil, fmt.Errorf("state: domain is required")
	}

	prioritySet := make(map[int]struct{}, len(scopes)+1)
	minPriority := 0
	if len(scopes) > 0 {
		minPriority = scopes[0].Priority
	}
	for _, scope := range scopes {
		if scope.Name == "defaults" {
			return nil, fmt.Errorf("state: scope name %q is reserved", "defaults")
		}
		prioritySet[scope.Priority] = struct{}{}
		if scope.Priority < minPriority {
			minPriority = scope.Priority
		}
	}

	defaultsPriority := 0
	if len(scopes) > 0 {
		defaultsPriority = minPriority - 1
		for {
			if _, ok := prioritySet[defaultsPriority]; !ok {
				break
			}
			defaultsPriority--
		}
	}

	layers := make([]props.Layer, 0, len(scopes)+1)
	for _, scope := range scopes {
		snapshot, meta, ok, err := r.Store.Load(ctx, Ref{Domain: domain, Scope: scope})
		if err != nil {
			return nil, fmt.Errorf("state: load %q for scope %q: %w", domain, scope.Name, err)
		}
		if !ok {
			continue
		}
		layers = append(layers, props.NewLayer(scope, snapshot, props.WithSnapshotID(meta.SnapshotID)))
	}

	defaultsScope := props.NewScope("defaults", defaultsPriority, props.WithScopeLabel("Defaults"))
	layers = append(layers, props.NewLayer(defaultsScope, defaults))

	stack, err := props.NewStack(layers...)
	if err != nil {
		return nil, fmt.Errorf("state: stack: %w", err)
	}
	container, err := stack.Build(r.Type)
	if err != nil {
		return nil, err
	}

	stacked := stack.Layers()
	for _, layer := range stacked {
		input := r.eventInput(Ref{Domain: domain, Scope: layer.Scope}, layer.SnapshotID)
		r.emit(ctx, activity.BuildLayerAppliedEvent(input))
	}
	created := r.eventInput(Ref{Domain: domain, Scope: stacked[0].Scope}, stacked[0].SnapshotID)
	created.ObjectID = domain
	r.emit(ctx, activity.BuildContainerCreatedEvent(created))

	return container, nil
}

// Mutate loads one snapshot, applies fn, validates the result against the
// container type, then saves. Snapshot identity restarts on every mutation:
// the saved metadata carries no snapshot ID or etag unless the caller pins a
// snapshot ID through meta, leaving stores free to mint fresh ones.
func (r Resolver) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator) (*props.Container, Meta, error) {
	if r.Type == nil {
		return nil, Meta{}, fmt.Errorf("state: container type is required")
	}
	if r.Store == nil {
		return nil, Meta{}, fmt.Errorf("state: store is required")
	}
	if ref.Domain == "" {
		return nil, Meta{}, fmt.Errorf("state: domain is required")
	}
	if ref.Scope.Name == "" {
		return nil, Meta{}, fmt.Errorf("state: scope name is required")
	}
	if fn == nil {
		return nil, Meta{}, fmt.Errorf("state: mutator is required")
	}

	snapshot, loadedMeta, ok, err := r.Store.Load(ctx, ref)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("state: load %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}
	if !ok {
		snapshot = map[string]any{}
		loadedMeta = Meta{}
	}
	if snapshot == nil {
		snapshot = map[string]any{}
	}

	if meta.ETag != "" && loadedMeta.ETag != "" && meta.ETag != loadedMeta.ETag {
		return nil, loadedMeta, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loadedMeta.ETag)
	}

	if err := fn(snapshot); err != nil {
		return nil, loadedMeta, err
	}

	if _, err := r.Type.New(snapshot); err != nil {
		return nil, loadedMeta, err
	}

	saveMeta := mergeMeta(loadedMeta, meta)
	saveMeta.SnapshotID = meta.SnapshotID
	saveMeta.ETag = ""
	savedMeta, err := r.Store.Save(ctx, ref, snapshot, saveMeta)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: save %q for scope %q: %w", ref.Domain, ref.Scope.Name, err)
	}

	layer := props.NewLayer(ref.Scope, snapshot, props.WithSnapshotID(savedMeta.SnapshotID))
	stack, err := props.NewStack(layer)
	if err != nil {
		return nil, loadedMeta, fmt.Errorf("state: stack: %w", err)
	}
	container, err := stack.Build(r.Type)
	if err != nil {
		return nil, loadedMeta, err
	}

	r.emit(ctx, activity.BuildSnapshotSavedEvent(r.eventInput(ref, savedMeta.SnapshotID)))

	return container, savedMeta, nil
}

// SetOption writes a single dotted path through Mutate and reports the change
// as an option.set activity event carrying the old and new values.
func (r Resolver) SetOption(ctx context.Context, ref Ref, meta Meta, path string, value any) (*props.Container, Meta, error) {
	if strings.TrimSpace(path) == "" {
		return nil, Meta{}, fmt.Errorf("state: option path is required")
	}

	var oldValue any
	container, savedMeta, err := r.Mutate(ctx, ref, meta, func(snapshot map[string]any) error {
		oldValue, _ = layering.Lookup(snapshot, path)
		return setPath(snapshot, path, value)
	})
	if err != nil {
		return nil, savedMeta, err
	}

	input := r.eventInput(ref, savedMeta.SnapshotID)
	input.Path = path
	input.OldValue = oldValue
	input.NewValue = value
	segments := strings.Split(path, ".")
	input.Definition = segments[len(segments)-1]
	r.emit(ctx, activity.BuildOptionSetEvent(input))

	return container, savedMeta, nil
}

// NewSnapshotID mints an identifier suitable for Meta.SnapshotID.
func NewSnapshotID() string {
	return uuid.NewString()
}

func (r Resolver) emit(ctx context.Context, event activity.Event) {
	if !r.Activity.Enabled() {
		return
	}
	// Audit is best-effort; a failing hook never fails the operation.
	_ = r.Activity.Emit(ctx, event)
}

func (r Resolver) eventInput(ref Ref, snapshotID string) activity.ContainerEventInput {
	input := activity.ContainerEventInput{
		Scope: activity.ScopeContext{
			Name:       ref.Scope.Name,
			Label:      ref.Scope.Label,
			Priority:   ref.Scope.Priority,
			Metadata:   ref.Scope.Metadata,
			SnapshotID: snapshotID,
		},
	}
	if id, ok := ref.Scope.Metadata["user_id"].(string); ok {
		input.UserID = id
	}
	if id, ok := ref.Scope.Metadata["tenant_id"].(string); ok {
		input.TenantID = id
	}
	if objectID, err := ref.Identifier(); err == nil {
		input.ObjectID = objectID
	}
	return input
}

func setPath(snapshot map[string]any, path string, value any) error {
	segments := strings.Split(path, ".")
	current := snapshot
	for i, segment := range segments {
		if segment == "" {
			return fmt.Errorf("state: invalid option path %q", path)
		}
		if i == len(segments)-1 {
			current[segment] = value
			return nil
		}
		next, ok := current[segment].(map[string]any)
		if !ok {
			if existing, exists := current[segment]; exists && existing != nil {
				return fmt.Errorf("state: option path %q crosses a non-map value at %q", path, segment)
			}
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	return nil
}

func mergeMeta(base, override Meta) Meta {
	out := base
	if override.SnapshotID != "" {
		out.SnapshotID = override.SnapshotID
	}
	if override.ETag != "" {
		out.ETag = override.ETag
	}
	if !override.UpdatedAt.IsZero() {
		out.UpdatedAt = override.UpdatedAt
	}
	if override.Extra != nil {
		out.Extra = override.Extra
	}
	return out
}
