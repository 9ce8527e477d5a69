// Package pipeline models a Buildkite pipeline as it is generated.
//
// The model is a flat builder: a [Pipeline] owns an ordered list of [Step]
// values and a global environment mapping, and each step may carry a
// [Condition] that becomes its `if` attribute. [Pipeline.Document] produces
// the structure handed to the render package for YAML or JSON encoding.
//
// Key types:
//   - [Pipeline] collects steps in insertion order plus global env
//   - [Step] is a command, group or trigger step
//   - [Condition] is an env check or a raw expression
//   - [ValidationError] is returned when construction lacks required fields
//
// The model is deliberately permissive: duplicate step keys and depends_on
// references to unknown keys are accepted. The validate package provides an
// opt-in check for both.
package pipeline

import "maps"

// Pipeline is an ordered collection of steps sharing a global environment.
//
// A Pipeline is built by one driver in one pass and is not safe for
// concurrent use.
type Pipeline struct {
	key       string
	label     string
	steps     []*Step
	globalEnv map[string]string
}

// New returns an empty pipeline.
func New(key, label string) *Pipeline {
	return &Pipeline{
		key:       key,
		label:     label,
		globalEnv: make(map[string]string),
	}
}

func (p *Pipeline) Key() string   { return p.key }
func (p *Pipeline) Label() string { return p.label }

// AddStep appends step. Keys are not checked for uniqueness.
func (p *Pipeline) AddStep(step *Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the steps in insertion order.
func (p *Pipeline) Steps() []*Step {
	out := make([]*Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Len returns the number of steps added so far.
func (p *Pipeline) Len() int { return len(p.steps) }

// SetGlobalEnv sets a single global environment variable.
func (p *Pipeline) SetGlobalEnv(key, value string) {
	p.globalEnv[key] = value
}

// MergeGlobalEnv merges env into the global environment. The merge is
// shallow and the value from env wins for keys that already exist.
func (p *Pipeline) MergeGlobalEnv(env map[string]string) {
	maps.Copy(p.globalEnv, env)
}

// GlobalEnv looks up a global environment variable.
func (p *Pipeline) GlobalEnv(key string) (string, bool) {
	v, ok := p.globalEnv[key]
	return v, ok
}

// DefineFlow calls fn with p. It exists so drivers can describe a pipeline
// declaratively in one closure.
func (p *Pipeline) DefineFlow(fn func(*Pipeline)) {
	fn(p)
}

// Document is the top-level serialized pipeline: the global env followed by
// the steps.
type Document struct {
	Env   map[string]string `yaml:"env" json:"env"`
	Steps []StepDocument    `yaml:"steps" json:"steps"`
}

// Document serializes the pipeline. Env is always present, as an empty
// mapping when nothing was set, and steps keep insertion order.
func (p *Pipeline) Document() Document {
	doc := Document{
		Env:   maps.Clone(p.globalEnv),
		Steps: make([]StepDocument, 0, len(p.steps)),
	}
	if doc.Env == nil {
		doc.Env = map[string]string{}
	}
	for _, s := range p.steps {
		doc.Steps = append(doc.Steps, s.Document())
	}
	return doc
}
