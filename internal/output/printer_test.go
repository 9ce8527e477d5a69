package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynapipe/internal/pipeline"
)

func TestPrinter_Summary(t *testing.T) {
	cond, err := pipeline.NewEnvCheck("IS_DEMO_ENV", "true")
	require.NoError(t, err)

	p := pipeline.New("ci", "CI")
	p.SetGlobalEnv("A", "1")
	trigger, err := pipeline.NewStep("trigger-db-reset", "Reset", pipeline.StepOptions{
		Kind:      pipeline.StepTrigger,
		Command:   "ci-deployment",
		Condition: cond,
		Build:     &pipeline.BuildDescriptor{Message: "m", Commit: "HEAD", Branch: "main"},
	})
	require.NoError(t, err)
	p.AddStep(trigger)
	group, err := pipeline.NewStep("tests", "Tests", pipeline.StepOptions{Kind: pipeline.StepGroup})
	require.NoError(t, err)
	p.AddStep(group)

	buf := &bytes.Buffer{}
	NewPrinterWithWriter(buf).Summary("Dynamic CI Deployment", p.Document())

	out := buf.String()
	assert.Contains(t, out, "Dynamic CI Deployment")
	assert.Contains(t, out, "1. trigger-db-reset")
	assert.Contains(t, out, "(trigger)")
	assert.Contains(t, out, "→ ci-deployment")
	assert.Contains(t, out, `if build.env("IS_DEMO_ENV") == "true"`)
	assert.Contains(t, out, "2. tests")
	assert.Contains(t, out, "(group)")
	assert.Contains(t, out, "2 step(s), 1 global env var(s)")
}

func TestPrinter_ScenarioList(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinterWithWriter(buf).ScenarioList([]Item{
		{Name: "trigger-single-region", Description: "default deploy"},
		{Name: "trigger-multi-region", Description: "multi-region deploy"},
	})

	out := buf.String()
	assert.Contains(t, out, "trigger-single-region")
	assert.Contains(t, out, "multi-region deploy")
}

func TestPrinter_Error(t *testing.T) {
	buf := &bytes.Buffer{}
	NewPrinterWithWriter(buf).Error(errors.New("boom"))
	assert.Contains(t, buf.String(), "✗ boom")
}
