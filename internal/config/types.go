// Package config provides configuration loading and management for dynapipe.
//
// Configuration is loaded using Viper, supporting a YAML config file and
// environment variable overrides. The defaults reproduce the standard CI
// deployment pipeline, so the generator works without any configuration file.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [SourceConfig] describes the commit and branch being built
//   - [DeployConfig] holds the downstream pipeline slugs and territories
//
// Configuration priority (highest to lowest):
//  1. Environment variables (DYNAPIPE_ prefix)
//  2. CI agent fallbacks: BUILDKITE_COMMIT, BUILDKITE_BRANCH, TERRITORY
//  3. Config file given by --config or DYNAPIPE_CONFIG_PATH
//  4. ./dynapipe.yaml
//  5. [DefaultConfig] defaults
//
// Environment mappings are written as KEY=VALUE lists rather than YAML maps
// because Viper lower-cases map keys, and environment variable names are case
// sensitive.
package config

import (
	"fmt"
	"strings"
)

// Config represents the root configuration structure.
type Config struct {
	// Pipeline identifies the generated pipeline.
	Pipeline PipelineConfig `mapstructure:"pipeline"`

	// Source describes the build that is running the generator.
	Source SourceConfig `mapstructure:"source"`

	// Deploy configures the downstream trigger steps.
	Deploy DeployConfig `mapstructure:"deploy"`

	// GlobalEnv is merged into the pipeline's global env after the
	// source-derived variables, so entries here win on conflict.
	GlobalEnv []string `mapstructure:"global_env"`

	// BaseEnv is the shared build env of every deployment trigger.
	// Scenario-specific variables are layered on top.
	BaseEnv []string `mapstructure:"base_env"`

	// Strict turns on dependency validation before output is written.
	Strict bool `mapstructure:"strict"`
}

// PipelineConfig identifies the generated pipeline.
type PipelineConfig struct {
	Key   string `mapstructure:"key"`
	Label string `mapstructure:"label"`
}

// SourceConfig describes the build the generator runs in.
type SourceConfig struct {
	// Commit becomes WEBAPP_GIT_REF. Falls back to BUILDKITE_COMMIT.
	Commit string `mapstructure:"commit"`

	// Branch becomes BUILDKITE_BRANCH and appears in trigger messages.
	// Falls back to BUILDKITE_BRANCH.
	Branch string `mapstructure:"branch"`

	// BackendRef becomes BACKEND_GIT_REF.
	BackendRef string `mapstructure:"backend_ref"`

	// TagsSource becomes DATADOG_TAGS_SOURCE.
	TagsSource string `mapstructure:"tags_source"`
}

// DeployConfig holds the settings of the downstream trigger steps.
type DeployConfig struct {
	// Slug is the pipeline triggered for deployments.
	Slug string `mapstructure:"slug"`

	// DisableSlug is the pipeline triggered to tear a deployment down.
	DisableSlug string `mapstructure:"disable_slug"`

	// Commit and Branch are what deployment builds are created from.
	Commit string `mapstructure:"commit"`
	Branch string `mapstructure:"branch"`

	// Territory is the deployment territory. Falls back to TERRITORY.
	Territory string `mapstructure:"territory"`

	// PreviousTerritory is torn down by the disable-previous scenario.
	PreviousTerritory string `mapstructure:"previous_territory"`

	// ConcurrencyGroup is passed to disable builds.
	ConcurrencyGroup string `mapstructure:"concurrency_group"`
}

// DefaultConfig returns a new [Config] with the standard deployment settings.
func DefaultConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			Key:   "ci-deployment-main",
			Label: "Dynamic CI Deployment",
		},
		Source: SourceConfig{
			Commit:     "HEAD",
			Branch:     "main",
			BackendRef: "master",
			TagsSource: "dynamic-pipeline-demo",
		},
		Deploy: DeployConfig{
			Slug:              "ci-deployment",
			DisableSlug:       "frontend-ci-disable-deployment",
			Commit:            "HEAD",
			Branch:            "main",
			Territory:         "us1",
			PreviousTerritory: "us1",
			ConcurrencyGroup:  "dynamic-group-123",
		},
		GlobalEnv: []string{
			"COMMON_VAR_1=value-from-ci-main",
			"COMMON_VAR_2=another-value",
			"IS_DEMO_ENV=true",
		},
		BaseEnv: []string{
			"DB_RESET_REQUIRED=false",
			"DEPLOY_SERVICES=both",
			"ENABLE_COVERAGE_REPORT=false",
			"ENABLE_DEPLOYMENT=true",
			"FBP_IMAGE_TAG=main",
			"IDENTITY_GIT_REF=PROD_ON_CI",
			"POSTGRES_ENABLED=true",
			"QUEUE_RIPPLING_WEBAPP_BUILDER=rippling-webapp-builder-blue",
			"SHOULD_USE_CACHE=true",
		},
	}
}

// Validate checks the fields every scenario relies on.
func (c *Config) Validate() error {
	if c.Pipeline.Key == "" {
		return fmt.Errorf("pipeline.key must be set")
	}
	if c.Deploy.Slug == "" || c.Deploy.DisableSlug == "" {
		return fmt.Errorf("deploy.slug and deploy.disable_slug must be set")
	}
	if _, err := ParseEnvList(c.GlobalEnv); err != nil {
		return fmt.Errorf("global_env: %w", err)
	}
	if _, err := ParseEnvList(c.BaseEnv); err != nil {
		return fmt.Errorf("base_env: %w", err)
	}
	return nil
}

// GlobalEnvMap returns GlobalEnv as a map.
func (c *Config) GlobalEnvMap() (map[string]string, error) {
	return ParseEnvList(c.GlobalEnv)
}

// BaseEnvMap returns BaseEnv as a map.
func (c *Config) BaseEnvMap() (map[string]string, error) {
	return ParseEnvList(c.BaseEnv)
}

// ParseEnvList turns KEY=VALUE entries into a map.
//
// The value may be empty and may itself contain '='. Later entries win for
// repeated keys. Entries without '=' or with an empty key are rejected.
func ParseEnvList(entries []string) (map[string]string, error) {
	env := make(map[string]string, len(entries))
	for _, e := range entries {
		key, value, ok := strings.Cut(e, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid env entry %q: want KEY=VALUE", e)
		}
		env[key] = value
	}
	return env, nil
}
