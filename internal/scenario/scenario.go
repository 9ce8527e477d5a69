// Package scenario turns command-line flags into the deployment pipeline.
//
// Each [Scenario] is one row of a fixed, ordered table: a predicate over
// [Flags] and a constructor for the step it contributes. [Build] walks the
// table in order, so the generated steps always appear in scenario order no
// matter how the flags were given.
//
// The scenarios are:
//   - trigger-single-region: default deploy, skipped when disabling or re-triggering
//   - trigger-multi-region: --enable-multi-region-deploy
//   - trigger-db-reset: --re-trigger-db-reset
//   - disable-ci-current: --disable-ci-deploy
//   - disable-ci-previous: --disable-previous-deploy, gated on the agent env
package scenario

import (
	"fmt"
	"maps"

	"dynapipe/internal/config"
	"dynapipe/internal/log"
	"dynapipe/internal/pipeline"
)

// Global env variable names the scenarios read back from the pipeline.
const (
	EnvBackendRef = "BACKEND_GIT_REF"
	EnvWebappRef  = "WEBAPP_GIT_REF"
	EnvBranch     = "BUILDKITE_BRANCH"
	EnvTagsSource = "DATADOG_TAGS_SOURCE"

	// EnvPreviousTerritoryExists is checked by the agent before the
	// disable-previous trigger runs.
	EnvPreviousTerritoryExists = "PREVIOUS_TERRITORY_TO_BE_RELEASED_EXIST"
)

// Flags are the boolean switches that select scenarios.
type Flags struct {
	EnableMultiRegionDeploy bool
	ReTriggerDBReset        bool
	DisableCIDeploy         bool
	DisablePreviousDeploy   bool
}

// Scenario is one row of the scenario table.
type Scenario struct {
	// Name is also the key of the step the scenario adds.
	Name        string
	Description string

	enabled func(Flags) bool
	step    func(b *builder) (*pipeline.Step, error)
}

// Enabled reports whether the scenario contributes a step for f.
func (s Scenario) Enabled(f Flags) bool { return s.enabled(f) }

var scenarios = []Scenario{
	{
		Name:        "trigger-single-region",
		Description: "Trigger the single-region CI deployment (default)",
		enabled:     func(f Flags) bool { return !f.DisableCIDeploy && !f.ReTriggerDBReset },
		step: func(b *builder) (*pipeline.Step, error) {
			return b.deployTrigger("trigger-single-region", "🚀 Trigger CI Deployment (Single Region)", "Single Region", map[string]string{
				"API_MAX_REPLICA_COUNT": "20",
				"MULTI_REGION":          "false",
			})
		},
	},
	{
		Name:        "trigger-multi-region",
		Description: "Trigger the multi-region CI deployment",
		enabled:     func(f Flags) bool { return f.EnableMultiRegionDeploy },
		step: func(b *builder) (*pipeline.Step, error) {
			return b.deployTrigger("trigger-multi-region", "🌍 Trigger CI Deployment (Multi-Region)", "Multi-Region", map[string]string{
				"API_MAX_REPLICA_COUNT":      "5",
				"MULTI_REGION":               "true",
				"RESTART_MONGO_MULTI_REGION": "true",
			})
		},
	},
	{
		Name:        "trigger-db-reset",
		Description: "Re-trigger the CI deployment with a database reset",
		enabled:     func(f Flags) bool { return f.ReTriggerDBReset },
		step: func(b *builder) (*pipeline.Step, error) {
			return b.deployTrigger("trigger-db-reset", "🔄 Re-Trigger CI Deployment For DB Reset", "DB Reset", map[string]string{
				"API_MAX_REPLICA_COUNT": "10",
				"RESTART_MONGO":         "true",
				"DB_RESET_REQUIRED":     "true",
			})
		},
	},
	{
		Name:        "disable-ci-current",
		Description: "Tear down the CI deployment of the current territory",
		enabled:     func(f Flags) bool { return f.DisableCIDeploy },
		step: func(b *builder) (*pipeline.Step, error) {
			return b.disableTrigger("disable-ci-current", "🚫 Disable CI Deployment", b.cfg.Deploy.Territory, nil, nil)
		},
	},
	{
		Name:        "disable-ci-previous",
		Description: "Tear down the previous territory when the agent reports one",
		enabled:     func(f Flags) bool { return f.DisablePreviousDeploy },
		step: func(b *builder) (*pipeline.Step, error) {
			cond, err := pipeline.NewEnvCheck(EnvPreviousTerritoryExists, "true")
			if err != nil {
				return nil, err
			}
			var deps []string
			if b.flags.DisableCIDeploy {
				deps = []string{"disable-ci-current"}
			}
			return b.disableTrigger("disable-ci-previous", "🚫 Disable CI Deployment (Previous Territory)", b.cfg.Deploy.PreviousTerritory, cond, deps)
		},
	},
}

// Scenarios returns the scenario table in build order.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	copy(out, scenarios)
	return out
}

// Build assembles the pipeline for cfg and flags.
//
// Global env is set from the source settings first and then merged with
// cfg.GlobalEnv. Any step construction error aborts the build.
func Build(cfg *config.Config, flags Flags) (*pipeline.Pipeline, error) {
	base, err := cfg.BaseEnvMap()
	if err != nil {
		return nil, fmt.Errorf("base_env: %w", err)
	}
	global, err := cfg.GlobalEnvMap()
	if err != nil {
		return nil, fmt.Errorf("global_env: %w", err)
	}

	p := pipeline.New(cfg.Pipeline.Key, cfg.Pipeline.Label)
	p.MergeGlobalEnv(map[string]string{
		EnvBackendRef: cfg.Source.BackendRef,
		EnvWebappRef:  cfg.Source.Commit,
		EnvBranch:     cfg.Source.Branch,
		EnvTagsSource: cfg.Source.TagsSource,
	})
	p.MergeGlobalEnv(global)

	b := &builder{cfg: cfg, flags: flags, p: p, base: base}
	var buildErr error
	p.DefineFlow(func(p *pipeline.Pipeline) {
		for _, sc := range scenarios {
			if !sc.Enabled(flags) {
				log.Debug("scenario skipped", "scenario", sc.Name)
				continue
			}
			step, err := sc.step(b)
			if err != nil {
				buildErr = fmt.Errorf("scenario %s: %w", sc.Name, err)
				return
			}
			log.Debug("scenario included", "scenario", sc.Name)
			p.AddStep(step)
		}
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return p, nil
}

// builder carries what the step constructors share.
type builder struct {
	cfg   *config.Config
	flags Flags
	p     *pipeline.Pipeline
	base  map[string]string
}

func (b *builder) global(key string) string {
	v, _ := b.p.GlobalEnv(key)
	return v
}

func (b *builder) deployTrigger(key, label, variant string, overrides map[string]string) (*pipeline.Step, error) {
	env := maps.Clone(b.base)
	if env == nil {
		env = make(map[string]string)
	}
	maps.Copy(env, overrides)
	env["TERRITORY"] = b.cfg.Deploy.Territory

	return pipeline.NewStep(key, label, pipeline.StepOptions{
		Kind:    pipeline.StepTrigger,
		Command: b.cfg.Deploy.Slug,
		Build: &pipeline.BuildDescriptor{
			Message: fmt.Sprintf("CI Deployment For %s (%s)", b.global(EnvBranch), variant),
			Commit:  b.cfg.Deploy.Commit,
			Branch:  b.cfg.Deploy.Branch,
			Env:     env,
		},
	})
}

func (b *builder) disableTrigger(key, label, territory string, cond *pipeline.Condition, deps []string) (*pipeline.Step, error) {
	branch := b.global(EnvBranch)
	return pipeline.NewStep(key, label, pipeline.StepOptions{
		Kind:      pipeline.StepTrigger,
		Command:   b.cfg.Deploy.DisableSlug,
		Async:     pipeline.Bool(true),
		Condition: cond,
		DependsOn: deps,
		Build: &pipeline.BuildDescriptor{
			Message: fmt.Sprintf("Disable CI Deployment: %s", branch),
			Commit:  b.cfg.Deploy.Commit,
			Branch:  branch,
			Env: map[string]string{
				"CONCURRENCY_GROUP": b.cfg.Deploy.ConcurrencyGroup,
				"MULTI_REGION":      "false",
				"SOURCE":            b.global(EnvTagsSource),
				"TERRITORY":         territory,
			},
		},
	})
}
