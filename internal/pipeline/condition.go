package pipeline

import "strconv"

// ConditionKind selects how a [Condition] is expressed.
type ConditionKind string

const (
	// ConditionEnvCheck compares a build environment variable to a literal value.
	ConditionEnvCheck ConditionKind = "env_check"

	// ConditionExpression carries a raw conditional expression verbatim.
	ConditionExpression ConditionKind = "expression"
)

// ConditionOptions carries the fields for [NewCondition]. Which fields are
// required depends on the kind.
type ConditionOptions struct {
	// EnvVarName and EnvVarValue are required for [ConditionEnvCheck].
	EnvVarName  string
	EnvVarValue string

	// Expression is required for [ConditionExpression].
	Expression string
}

// Condition is a single boolean gate rendered into a step's `if` attribute.
//
// A Condition is immutable once constructed. Use [NewCondition],
// [NewEnvCheck] or [NewExpression]; the zero value renders as an empty string.
type Condition struct {
	kind        ConditionKind
	envVarName  string
	envVarValue string
	expression  string
}

// NewCondition validates opts against kind and returns the condition.
//
// Returns a [*ValidationError] when an env check lacks a name or value, when
// an expression is empty, or when kind is not recognized.
func NewCondition(kind ConditionKind, opts ConditionOptions) (*Condition, error) {
	switch kind {
	case ConditionEnvCheck:
		if opts.EnvVarName == "" || opts.EnvVarValue == "" {
			return nil, newValidationError("env_check condition", "requires an environment variable name and value")
		}
		return &Condition{
			kind:        kind,
			envVarName:  opts.EnvVarName,
			envVarValue: opts.EnvVarValue,
		}, nil

	case ConditionExpression:
		if opts.Expression == "" {
			return nil, newValidationError("expression condition", "requires an expression string")
		}
		return &Condition{
			kind:       kind,
			expression: opts.Expression,
		}, nil

	default:
		return nil, newValidationError("condition", "unknown kind %q", kind)
	}
}

// NewEnvCheck is shorthand for an env_check condition on name == value.
func NewEnvCheck(name, value string) (*Condition, error) {
	return NewCondition(ConditionEnvCheck, ConditionOptions{EnvVarName: name, EnvVarValue: value})
}

// NewExpression is shorthand for an expression condition.
func NewExpression(expr string) (*Condition, error) {
	return NewCondition(ConditionExpression, ConditionOptions{Expression: expr})
}

// Kind returns the condition kind.
func (c *Condition) Kind() ConditionKind { return c.kind }

// IfString renders the condition in Buildkite's conditional syntax.
//
// An env check becomes `build.env("NAME") == "value"`; an expression is
// returned verbatim. A condition that was not built through [NewCondition]
// renders as "".
func (c *Condition) IfString() string {
	switch {
	case c.kind == ConditionEnvCheck && c.envVarName != "" && c.envVarValue != "":
		return "build.env(" + strconv.Quote(c.envVarName) + ") == " + strconv.Quote(c.envVarValue)
	case c.kind == ConditionExpression && c.expression != "":
		return c.expression
	}
	return ""
}

// Evaluate checks the condition locally.
//
// An env check is true when env holds exactly the expected value. An
// expression is true only when it is the literal "true": there is no
// expression language here, the CI agent evaluates the real thing. state is
// accepted for callers that simulate a run and is currently unused.
func (c *Condition) Evaluate(state map[string]any, env map[string]string) bool {
	switch {
	case c.kind == ConditionEnvCheck && c.envVarName != "" && c.envVarValue != "":
		v, ok := env[c.envVarName]
		return ok && v == c.envVarValue
	case c.kind == ConditionExpression && c.expression != "":
		return c.expression == "true"
	}
	return false
}
