package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynapipe/internal/pipeline"
)

type stepDef struct {
	key  string
	deps []string
}

func buildPipeline(t *testing.T, defs ...stepDef) *pipeline.Pipeline {
	t.Helper()
	p := pipeline.New("ci", "CI")
	for _, d := range defs {
		s, err := pipeline.NewStep(d.key, d.key, pipeline.StepOptions{Command: "true", DependsOn: d.deps})
		require.NoError(t, err)
		p.AddStep(s)
	}
	return p
}

func TestPipeline(t *testing.T) {
	tests := []struct {
		name       string
		defs       []stepDef
		wantIssues []Issue
		wantOrder  []string
	}{
		{
			name: "empty pipeline",
		},
		{
			name:      "independent steps keep insertion order",
			defs:      []stepDef{{key: "b"}, {key: "a"}, {key: "c"}},
			wantOrder: []string{"b", "a", "c"},
		},
		{
			name: "dependencies come first",
			defs: []stepDef{
				{key: "deploy", deps: []string{"build"}},
				{key: "build"},
				{key: "notify", deps: []string{"deploy", "build"}},
			},
			wantOrder: []string{"build", "deploy", "notify"},
		},
		{
			name: "repeated dependency is tolerated",
			defs: []stepDef{
				{key: "build"},
				{key: "deploy", deps: []string{"build", "build"}},
			},
			wantOrder: []string{"build", "deploy"},
		},
		{
			name:       "duplicate key",
			defs:       []stepDef{{key: "deploy"}, {key: "deploy"}},
			wantIssues: []Issue{{Kind: IssueDuplicateKey, Step: "deploy"}},
		},
		{
			name:       "unknown dependency",
			defs:       []stepDef{{key: "deploy", deps: []string{"build"}}},
			wantIssues: []Issue{{Kind: IssueUnknownDep, Step: "deploy", Dependency: "build"}},
		},
		{
			name: "cycle",
			defs: []stepDef{
				{key: "a", deps: []string{"b"}},
				{key: "b", deps: []string{"a"}},
			},
			wantIssues: []Issue{{Kind: IssueCycle, Step: "b", Dependency: "a"}},
		},
		{
			name:       "self dependency",
			defs:       []stepDef{{key: "a", deps: []string{"a"}}},
			wantIssues: []Issue{{Kind: IssueCycle, Step: "a", Dependency: "a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := Pipeline(buildPipeline(t, tt.defs...))
			require.NotNil(t, report)

			if len(tt.wantIssues) > 0 {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidPipeline))
				assert.Equal(t, tt.wantIssues, report.Issues)
				assert.Nil(t, report.Order)
				for _, issue := range tt.wantIssues {
					assert.Contains(t, err.Error(), issue.String())
				}
				return
			}

			require.NoError(t, err)
			assert.Empty(t, report.Issues)
			if len(tt.wantOrder) == 0 {
				assert.Empty(t, report.Order)
				return
			}
			assert.Equal(t, tt.wantOrder, report.Order)
		})
	}
}
