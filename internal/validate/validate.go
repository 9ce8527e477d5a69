// Package validate is the opt-in integrity pass over a generated pipeline.
//
// The pipeline model accepts duplicate keys and dangling depends_on
// references on purpose. When strict mode is on, [Pipeline] builds the
// dependency graph and reports those problems plus cycles before anything is
// written out.
package validate

import (
	"fmt"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"dynapipe/internal/pipeline"
)

// ErrInvalidPipeline is wrapped by the error [Pipeline] returns when any
// [Issue] is found.
var ErrInvalidPipeline = errors.New("pipeline failed validation")

// IssueKind classifies a validation [Issue].
type IssueKind string

const (
	IssueDuplicateKey IssueKind = "duplicate-key"
	IssueUnknownDep   IssueKind = "unknown-dependency"
	IssueCycle        IssueKind = "cycle"
)

// Issue is a single problem found in the pipeline.
type Issue struct {
	Kind IssueKind

	// Step is the key of the offending step.
	Step string

	// Dependency is the depends_on entry involved, if any.
	Dependency string
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueDuplicateKey:
		return fmt.Sprintf("step key %q is used more than once", i.Step)
	case IssueUnknownDep:
		return fmt.Sprintf("step %q depends on unknown step %q", i.Step, i.Dependency)
	case IssueCycle:
		return fmt.Sprintf("step %q depending on %q creates a cycle", i.Step, i.Dependency)
	}
	return string(i.Kind)
}

// Report is the outcome of [Pipeline].
type Report struct {
	// Issues lists every problem in step order.
	Issues []Issue

	// Order is a dependency-respecting order of step keys, ties broken by
	// insertion order. It is nil when Issues is not empty.
	Order []string
}

// Pipeline checks p for duplicate keys, unknown dependencies and cycles.
//
// The returned report is always non-nil. The error wraps
// [ErrInvalidPipeline] and lists every issue when the report is not clean.
func Pipeline(p *pipeline.Pipeline) (*Report, error) {
	steps := p.Steps()
	report := &Report{}

	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	index := make(map[string]int, len(steps))

	for i, s := range steps {
		if err := g.AddVertex(s.Key()); err != nil {
			if errors.Is(err, graph.ErrVertexAlreadyExists) {
				report.Issues = append(report.Issues, Issue{Kind: IssueDuplicateKey, Step: s.Key()})
				continue
			}
			return report, errors.Wrapf(err, "add step %q", s.Key())
		}
		index[s.Key()] = i
	}

	for _, s := range steps {
		for _, dep := range s.DependsOn() {
			err := g.AddEdge(dep, s.Key())
			switch {
			case err == nil, errors.Is(err, graph.ErrEdgeAlreadyExists):
			case errors.Is(err, graph.ErrVertexNotFound):
				report.Issues = append(report.Issues, Issue{Kind: IssueUnknownDep, Step: s.Key(), Dependency: dep})
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				report.Issues = append(report.Issues, Issue{Kind: IssueCycle, Step: s.Key(), Dependency: dep})
			default:
				return report, errors.Wrapf(err, "add dependency %q -> %q", dep, s.Key())
			}
		}
	}

	if len(report.Issues) > 0 {
		msgs := make([]string, len(report.Issues))
		for i, issue := range report.Issues {
			msgs[i] = issue.String()
		}
		return report, errors.Wrapf(ErrInvalidPipeline, "%d issue(s): %s", len(msgs), strings.Join(msgs, "; "))
	}

	order, err := graph.StableTopologicalSort(g, func(a, b string) bool {
		return index[a] < index[b]
	})
	if err != nil {
		return report, errors.Wrap(err, "order steps")
	}
	report.Order = order
	return report, nil
}
