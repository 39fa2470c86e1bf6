// Package state defines persistence-facing contracts for loading and saving
// per-scope option snapshots, plus a small resolver that orchestrates scope
// loading and delegates layering/provenance to the core go-props primitives.
//
// Responsibilities:
//   - Store only loads/saves a single snapshot for a single Ref.
//   - Resolver loads snapshots for multiple scopes and merges them by
//     constructing props.Layer + props.Stack against a container type.
//   - The core props package remains persistence-agnostic; all persistence
//     logic stays behind Store implementations supplied by consumers.
//
// Data flow:
//
//	Store -> Resolver -> props.NewStack(...).Build(type) -> *props.Container
//
// Provenance:
//
//	Meta.SnapshotID is mapped onto props.Layer.SnapshotID (via
//	props.WithSnapshotID), which is then observable through Container.Trace
//	and, when the container type enables props.WithScopeSchema,
//	SchemaDocument.Scopes.
//
// Deterministic keys:
//
//	Ref.Identifier() provides a canonical storage key format based on the
//	unified scope model (`system/tenant/org/team/user`). Adapters that
//	persisted keys under another convention handle migration themselves
//	(e.g., read-old/write-new).
//
// Auditing:
//
//	When Resolver.Activity is set, Resolve emits container.created plus one
//	layer.applied per loaded layer, Mutate emits snapshot.saved, and
//	SetOption additionally emits option.set. Emission is best-effort and
//	never fails the operation that triggered it.
package state
