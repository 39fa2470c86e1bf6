package props

import (
	"errors"
	"fmt"
	"time"
)

var ErrNoEvaluator = errors.New("props: evaluator not configured")

// WithEvaluator configures the expression engine used by containers of this
// type.
func WithEvaluator(e Evaluator) TypeOption {
	return func(cfg *typeConfig) {
		cfg.evaluator = e
	}
}

// Evaluate executes expr against the container's exported values using the
// configured evaluator.
func (c *Container) Evaluate(expr string) (Response[any], error) {
	return c.EvaluateWith(RuleContext{}, expr)
}

// EvaluateWith executes expr using ctx, falling back to the container's
// exported values when ctx.Snapshot is nil.
func (c *Container) EvaluateWith(ctx RuleContext, expr string) (Response[any], error) {
	if expr == "" {
		return Response[any]{}, fmt.Errorf("expression must not be empty")
	}
	evaluator, err := c.ctype.resolveEvaluator()
	if err != nil {
		return Response[any]{}, err
	}
	if ctx.Snapshot == nil {
		ctx.Snapshot = c.Export()
	}
	ctx = ctx.withDefaultNow().withDefaultMaps().withDefaultScope(c.evalScope())
	engine := evaluatorEngineName(evaluator)
	start := time.Now()
	value, evalErr := evaluator.Evaluate(ctx, expr)
	duration := time.Since(start)
	evalErr = wrapEvaluationError("", expr, ctx.scopeLabel(), evalErr)
	c.ctype.evaluatorLogger().LogEvaluation(EvaluatorLogEvent{
		Engine:   engine,
		Expr:     expr,
		Scope:    ctx.scopeLabel(),
		Duration: duration,
		Err:      evalErr,
	})
	if evalErr != nil {
		return Response[any]{}, evalErr
	}
	return Response[any]{Value: value}, nil
}

func (c *Container) evalScope() Scope {
	if !c.scope.isZero() {
		return c.scope
	}
	return c.ctype.cfg.scope
}

func (t *Type) resolveEvaluator() (Evaluator, error) {
	if t.cfg.evaluator != nil {
		return t.cfg.evaluator, nil
	}
	var exprOpts []ExprEvaluatorOption
	if cache := t.programCache(); cache != nil {
		exprOpts = append(exprOpts, ExprWithProgramCache(cache))
	}
	if registry := t.functionRegistry(); registry != nil {
		exprOpts = append(exprOpts, ExprWithFunctionRegistry(registry))
	}
	defaultEvaluator := NewExprEvaluator(exprOpts...)
	if defaultEvaluator == nil {
		return nil, ErrNoEvaluator
	}
	t.cfg.evaluator = defaultEvaluator
	return defaultEvaluator, nil
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*props.exprEvaluator":
		return "expr"
	case "*props.celEvaluator":
		return "cel"
	case "*props.jsEvaluator":
		return "js"
	default:
		return "custom"
	}
}
