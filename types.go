package props

import (
	"time"

	"github.com/goliatone/go-props/pkg/activity"
)

// SchemaFormat identifies the representation a schema document encodes.
type SchemaFormat string

const (
	// SchemaFormatDescriptors represents the flattened field descriptors.
	SchemaFormatDescriptors SchemaFormat = "descriptors"
	// SchemaFormatOpenAPI represents OpenAPI-compatible JSON Schema documents.
	SchemaFormatOpenAPI SchemaFormat = "openapi"
)

// SchemaDocument encapsulates a generated schema output alongside its format
// identifier. Implementations must ensure Document is JSON-serialisable.
type SchemaDocument struct {
	Format   SchemaFormat
	Document any
	Scopes   []SchemaScope
}

// SchemaScope describes a single scope entry included in a schema document.
type SchemaScope struct {
	Name       string         `json:"name"`
	Label      string         `json:"label,omitempty"`
	Priority   int            `json:"priority"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	SnapshotID string         `json:"snapshot_id,omitempty"`
}

// SchemaGenerator transforms a container type or instance into a schema
// document. All implementations MUST be safe for concurrent use and handle
// nil inputs by returning an empty schema document.
type SchemaGenerator interface {
	Generate(value any) (SchemaDocument, error)
}

// Response stores a typed result produced by an evaluator.
type Response[T any] struct {
	Value T
}

// RuleContext carries inputs needed when evaluating an expression.
type RuleContext struct {
	Snapshot  any
	Value     any
	Now       *time.Time
	Args      map[string]any
	Metadata  map[string]any
	Scope     Scope
	ScopeName string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaultScope(scope Scope) RuleContext {
	if ctx.Scope.isZero() && !scope.isZero() {
		ctx.Scope = scope.clone()
	}
	if ctx.ScopeName == "" && ctx.Scope.Name != "" {
		ctx.ScopeName = ctx.Scope.Name
	}
	return ctx
}

func (ctx RuleContext) scopeLabel() string {
	if ctx.Scope.Name != "" {
		return ctx.Scope.Name
	}
	if ctx.ScopeName != "" {
		return ctx.ScopeName
	}
	return "unknown"
}

func (ctx RuleContext) scopeBinding() map[string]any {
	if binding := scopeToBinding(ctx.Scope); binding != nil {
		return binding
	}
	if ctx.ScopeName == "" {
		return nil
	}
	return map[string]any{"name": ctx.ScopeName}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}

// TypeOption configures a container type declaration.
type TypeOption func(*typeConfig)

type typeConfig struct {
	parents    []*Type
	props      []*Definition
	identifier string

	evaluator       Evaluator
	programCache    ProgramCache
	functions       *FunctionRegistry
	logger          EvaluatorLogger
	schemaGenerator SchemaGenerator
	scope           Scope
	scopeSchema     bool
	activityHooks   activity.Hooks
}

func applyTypeOptions(opts []TypeOption) *typeConfig {
	cfg := &typeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// inherit fills unset evaluation and schema settings from the parent type's
// configuration. Structural fields are never inherited.
func (c *typeConfig) inherit(parent *typeConfig) {
	if parent == nil {
		return
	}
	if c.evaluator == nil {
		c.evaluator = parent.evaluator
	}
	if c.programCache == nil {
		c.programCache = parent.programCache
	}
	if c.functions == nil {
		c.functions = parent.functions
	}
	if c.logger == nil {
		c.logger = parent.logger
	}
	if c.schemaGenerator == nil {
		c.schemaGenerator = parent.schemaGenerator
	}
	if c.scope.isZero() {
		c.scope = parent.scope.clone()
	}
	if !c.scopeSchema {
		c.scopeSchema = parent.scopeSchema
	}
	if len(c.activityHooks) == 0 {
		c.activityHooks = cloneActivityHooks(parent.activityHooks)
	}
}

func (t *Type) evaluatorOrDefault(defaultEvaluator Evaluator) Evaluator {
	if t.cfg.evaluator != nil {
		return t.cfg.evaluator
	}
	return defaultEvaluator
}

func (t *Type) programCache() ProgramCache {
	return t.cfg.programCache
}

func (t *Type) functionRegistry() *FunctionRegistry {
	return t.cfg.functions
}

func (t *Type) evaluatorLogger() EvaluatorLogger {
	if t.cfg.logger != nil {
		return t.cfg.logger
	}
	return noopEvaluatorLogger{}
}

// WithSchemaGenerator configures a custom schema generator implementation.
func WithSchemaGenerator(generator SchemaGenerator) TypeOption {
	return func(cfg *typeConfig) {
		cfg.schemaGenerator = generator
	}
}

// WithScope configures the default scope metadata applied to evaluator contexts.
func WithScope(scope Scope) TypeOption {
	return func(cfg *typeConfig) {
		cfg.scope = scope.clone()
	}
}

// WithScopeSchema toggles inclusion of scope metadata within generated schemas.
func WithScopeSchema(include bool) TypeOption {
	return func(cfg *typeConfig) {
		cfg.scopeSchema = include
	}
}

func scopeToBinding(scope Scope) map[string]any {
	if scope.isZero() {
		return nil
	}
	binding := map[string]any{
		"name":     scope.Name,
		"label":    scope.Label,
		"priority": scope.Priority,
	}
	if len(scope.Metadata) > 0 {
		binding["metadata"] = copyMetadata(scope.Metadata)
	}
	return binding
}

func (t *Type) schemaGenerator() SchemaGenerator {
	if t == nil {
		return DefaultSchemaGenerator()
	}
	if t.cfg.schemaGenerator != nil {
		return t.cfg.schemaGenerator
	}
	return DefaultSchemaGenerator()
}
