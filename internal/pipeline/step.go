package pipeline

import (
	"fmt"
	"maps"
	"slices"
)

// StepKind is the Buildkite step type.
type StepKind string

const (
	// StepCommand runs a shell command. It is the default kind.
	StepCommand StepKind = "command"

	// StepGroup groups other steps. Only label and key are emitted for it.
	StepGroup StepKind = "group"

	// StepTrigger starts a build of another pipeline.
	StepTrigger StepKind = "trigger"
)

// BuildDescriptor describes the downstream build created by a trigger step.
type BuildDescriptor struct {
	Message string            `yaml:"message" json:"message"`
	Commit  string            `yaml:"commit" json:"commit"`
	Branch  string            `yaml:"branch" json:"branch"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// StepOptions carries the optional fields for [NewStep].
type StepOptions struct {
	// Kind defaults to [StepCommand] when empty.
	Kind StepKind

	// Command is the shell command for command steps and the target
	// pipeline slug for trigger steps.
	Command string

	// DependsOn lists keys of steps this one waits for. Keys are not
	// checked against the pipeline; see the validate package for that.
	DependsOn []string

	Condition *Condition
	Env       map[string]string

	// Build is required when Kind is [StepTrigger].
	Build *BuildDescriptor

	// Async is tri-state: nil leaves it out of the document so Buildkite
	// applies its default, while a pointer to false is emitted as false.
	Async *bool
}

// Step is one unit of pipeline work.
//
// Steps are created with [NewStep], added to a single [Pipeline] and not
// mutated afterwards.
type Step struct {
	key       string
	label     string
	kind      StepKind
	command   string
	dependsOn []string
	condition *Condition
	env       map[string]string
	build     *BuildDescriptor
	async     *bool
}

// NewStep builds a step from key, label and opts.
//
// Returns a [*ValidationError] when opts.Kind is [StepTrigger] without a
// build descriptor, or when the kind is not recognized. Slices and maps in
// opts are copied.
func NewStep(key, label string, opts StepOptions) (*Step, error) {
	kind := opts.Kind
	if kind == "" {
		kind = StepCommand
	}

	switch kind {
	case StepCommand, StepGroup:
	case StepTrigger:
		if opts.Build == nil {
			return nil, newValidationError(fmt.Sprintf("step %q", key), "trigger steps require a build descriptor")
		}
	default:
		return nil, newValidationError(fmt.Sprintf("step %q", key), "unknown kind %q", kind)
	}

	s := &Step{
		key:       key,
		label:     label,
		kind:      kind,
		command:   opts.Command,
		dependsOn: slices.Clone(opts.DependsOn),
		condition: opts.Condition,
		env:       maps.Clone(opts.Env),
	}
	if opts.Build != nil {
		b := *opts.Build
		b.Env = maps.Clone(opts.Build.Env)
		s.build = &b
	}
	if opts.Async != nil {
		a := *opts.Async
		s.async = &a
	}
	return s, nil
}

// Bool returns a pointer to v, for [StepOptions.Async].
func Bool(v bool) *bool { return &v }

func (s *Step) Key() string           { return s.key }
func (s *Step) Label() string         { return s.label }
func (s *Step) Kind() StepKind        { return s.kind }
func (s *Step) DependsOn() []string   { return slices.Clone(s.dependsOn) }
func (s *Step) Condition() *Condition { return s.condition }

// StepDocument is the serialized form of a [Step]. Field order matches the
// order Buildkite users expect to read: label and key first.
type StepDocument struct {
	Label     string            `yaml:"label" json:"label"`
	Key       string            `yaml:"key" json:"key"`
	Command   string            `yaml:"command,omitempty" json:"command,omitempty"`
	Trigger   string            `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Build     *BuildDescriptor  `yaml:"build,omitempty" json:"build,omitempty"`
	Async     *bool             `yaml:"async,omitempty" json:"async,omitempty"`
	DependsOn []string          `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	If        string            `yaml:"if,omitempty" json:"if,omitempty"`
	Env       map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// Document returns the serialized form of the step.
//
// Label and key are always present. A command step adds its command. A
// trigger step adds trigger, build and, only when it was set explicitly,
// async. Group steps add nothing of their own. depends_on, if and env are
// emitted only when non-empty.
func (s *Step) Document() StepDocument {
	doc := StepDocument{
		Label: s.label,
		Key:   s.key,
	}

	switch s.kind {
	case StepCommand:
		doc.Command = s.command
	case StepTrigger:
		doc.Trigger = s.command
		if s.build != nil {
			b := *s.build
			b.Env = maps.Clone(s.build.Env)
			doc.Build = &b
		}
		if s.async != nil {
			a := *s.async
			doc.Async = &a
		}
	}

	if len(s.dependsOn) > 0 {
		doc.DependsOn = slices.Clone(s.dependsOn)
	}
	if s.condition != nil {
		doc.If = s.condition.IfString()
	}
	if len(s.env) > 0 {
		doc.Env = maps.Clone(s.env)
	}
	return doc
}
