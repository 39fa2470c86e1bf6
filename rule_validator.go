package props

import (
	"fmt"
	"time"
)

const msgRule = "Value {value} does not satisfy rule `{rule}` for option `{key}`."

// RuleValidator accepts a value only when an expression evaluates to true.
// The expression sees the value under `value` plus now, args, metadata and
// any registered functions. The engine defaults to expr.
type RuleValidator struct {
	rule      string
	evaluator Evaluator
	logger    EvaluatorLogger
	args      map[string]any
	metadata  map[string]any
}

type ruleValidatorConfig struct {
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    EvaluatorLogger
	args      map[string]any
	metadata  map[string]any
}

// RuleValidatorOption configures a RuleValidator.
type RuleValidatorOption func(*ruleValidatorConfig)

// RuleEvaluator overrides the expression engine.
func RuleEvaluator(evaluator Evaluator) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		cfg.evaluator = evaluator
	}
}

// RuleProgramCache supplies the program cache used when the default engine
// is built. Ignored when RuleEvaluator is set.
func RuleProgramCache(cache ProgramCache) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		cfg.cache = cache
	}
}

// RuleFunctions exposes registry functions to the rule expression. Ignored
// when RuleEvaluator is set.
func RuleFunctions(registry *FunctionRegistry) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// RuleLogger records every rule evaluation attempt.
func RuleLogger(logger EvaluatorLogger) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		cfg.logger = logger
	}
}

// RuleArgs binds extra values available to the expression as `args`.
func RuleArgs(args map[string]any) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		cfg.args = copyRuleMap(args)
	}
}

// RuleMetadata binds extra values available to the expression as `metadata`.
func RuleMetadata(metadata map[string]any) RuleValidatorOption {
	return func(cfg *ruleValidatorConfig) {
		cfg.metadata = copyRuleMap(metadata)
	}
}

// NewRuleValidator builds a RuleValidator for the expression. An empty rule
// panics, matching how malformed definitions are handled.
func NewRuleValidator(rule string, opts ...RuleValidatorOption) *RuleValidator {
	if rule == "" {
		panic("props: rule expression is required")
	}
	cfg := &ruleValidatorConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var engineOpts []ExprEvaluatorOption
		if cfg.cache != nil {
			engineOpts = append(engineOpts, ExprWithProgramCache(cfg.cache))
		}
		if cfg.functions != nil {
			engineOpts = append(engineOpts, ExprWithFunctionRegistry(cfg.functions))
		}
		evaluator = NewExprEvaluator(engineOpts...)
	}
	logger := cfg.logger
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}

	return &RuleValidator{
		rule:      rule,
		evaluator: evaluator,
		logger:    logger,
		args:      cfg.args,
		metadata:  cfg.metadata,
	}
}

// Rule returns the expression source.
func (v *RuleValidator) Rule() string { return v.rule }

// Validate evaluates the rule against value. Engine failures surface as
// *EvaluationError; a result other than true rejects the value.
func (v *RuleValidator) Validate(value any) error {
	ctx := RuleContext{
		Value:    value,
		Args:     v.args,
		Metadata: v.metadata,
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()

	engine := evaluatorEngineName(v.evaluator)
	start := time.Now()
	result, err := v.evaluator.Evaluate(ctx, v.rule)
	duration := time.Since(start)
	err = wrapEvaluationError(engine, v.rule, "", err)
	v.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     v.rule,
		Duration: duration,
		Err:      err,
	})
	if err != nil {
		return err
	}
	if passed, ok := result.(bool); ok && passed {
		return nil
	}
	return NewInvalidOption(msgRule, map[string]any{
		"rule":  v.rule,
		"value": value,
	})
}

func (v *RuleValidator) String() string {
	return fmt.Sprintf("<RuleValidator rule=%s>", v.rule)
}

// WithRule installs a RuleValidator after explicit validators.
func WithRule(rule string, opts ...RuleValidatorOption) DefinitionOption {
	validator := NewRuleValidator(rule, opts...)
	return func(cfg *definitionConfig) {
		cfg.validators = append(cfg.validators, validator)
	}
}

func copyRuleMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = value
	}
	return out
}
