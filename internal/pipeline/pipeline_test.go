package pipeline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustStep(t *testing.T, key string, opts StepOptions) *Step {
	t.Helper()
	s, err := NewStep(key, "Label "+key, opts)
	require.NoError(t, err)
	return s
}

func TestPipeline_PreservesInsertionOrder(t *testing.T) {
	p := New("ci", "CI")
	keys := []string{"c", "a", "b", "a"}
	for _, k := range keys {
		p.AddStep(mustStep(t, k, StepOptions{Command: "echo " + k}))
	}

	doc := p.Document()
	require.Len(t, doc.Steps, len(keys))
	assert.Equal(t, len(keys), p.Len())
	for i, k := range keys {
		assert.Equal(t, k, doc.Steps[i].Key)
	}
}

func TestPipeline_AcceptsDuplicateKeysAndDanglingDeps(t *testing.T) {
	p := New("ci", "CI")
	p.AddStep(mustStep(t, "deploy", StepOptions{Command: "a"}))
	p.AddStep(mustStep(t, "deploy", StepOptions{Command: "b", DependsOn: []string{"missing"}}))

	doc := p.Document()
	require.Len(t, doc.Steps, 2)
	assert.Equal(t, []string{"missing"}, doc.Steps[1].DependsOn)
}

func TestPipeline_MergeGlobalEnv(t *testing.T) {
	p := New("ci", "CI")
	p.MergeGlobalEnv(map[string]string{"A": "1", "B": "1"})
	p.MergeGlobalEnv(map[string]string{"B": "2", "C": "2"})

	assert.Equal(t, map[string]string{"A": "1", "B": "2", "C": "2"}, p.Document().Env)
}

func TestPipeline_SetGlobalEnv(t *testing.T) {
	p := New("ci", "CI")
	p.SetGlobalEnv("BUILDKITE_BRANCH", "main")
	p.SetGlobalEnv("BUILDKITE_BRANCH", "release")

	v, ok := p.GlobalEnv("BUILDKITE_BRANCH")
	assert.True(t, ok)
	assert.Equal(t, "release", v)

	_, ok = p.GlobalEnv("MISSING")
	assert.False(t, ok)
}

func TestPipeline_MergeDoesNotAliasInput(t *testing.T) {
	p := New("ci", "CI")
	env := map[string]string{"A": "1"}
	p.MergeGlobalEnv(env)
	env["A"] = "2"

	v, _ := p.GlobalEnv("A")
	assert.Equal(t, "1", v)
}

func TestPipeline_DefineFlow(t *testing.T) {
	p := New("ci", "CI")
	var got *Pipeline
	p.DefineFlow(func(fp *Pipeline) {
		got = fp
		fp.AddStep(mustStep(t, "one", StepOptions{Command: "true"}))
	})

	assert.Same(t, p, got)
	assert.Equal(t, 1, p.Len())
}

func TestPipeline_Document_SingleCommandStep(t *testing.T) {
	p := New("ci", "CI")
	p.AddStep(mustStep(t, "build", StepOptions{Command: "make build"}))

	data, err := yaml.Marshal(p.Document())
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))

	assert.Equal(t, map[string]any{
		"env": map[string]any{},
		"steps": []any{
			map[string]any{
				"label":   "Label build",
				"key":     "build",
				"command": "make build",
			},
		},
	}, out)
}

func TestPipeline_Document_EmptyPipeline(t *testing.T) {
	doc := New("ci", "CI").Document()
	assert.NotNil(t, doc.Env)
	assert.NotNil(t, doc.Steps)
	assert.Empty(t, doc.Steps)
}

func TestPipeline_Document_TriggerWithoutAsync(t *testing.T) {
	p := New("ci", "CI")
	p.AddStep(mustStep(t, "trigger", StepOptions{
		Kind:    StepTrigger,
		Command: "ci-deployment",
		Build:   &BuildDescriptor{Message: "m", Commit: "HEAD", Branch: "main"},
	}))

	data, err := yaml.Marshal(p.Document())
	require.NoError(t, err)
	assert.Contains(t, string(data), "trigger: ci-deployment")
	assert.Contains(t, string(data), "build:")
	assert.NotContains(t, string(data), "async")
}

func TestPipeline_Steps_ReturnsCopy(t *testing.T) {
	p := New("ci", "CI")
	for i := 0; i < 3; i++ {
		p.AddStep(mustStep(t, fmt.Sprint(i), StepOptions{}))
	}

	steps := p.Steps()
	steps[0] = nil
	assert.NotNil(t, p.Steps()[0])
}
