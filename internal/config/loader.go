package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every dynapipe environment variable.
const EnvPrefix = "DYNAPIPE"

// ConfigPathEnv names the environment variable holding an explicit config
// file path.
const ConfigPathEnv = "DYNAPIPE_CONFIG_PATH"

// Loader loads configuration with Viper.
//
// A Loader is single use: create one with [NewLoader] per load.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a [Loader] seeded with [DefaultConfig] values and the
// environment bindings.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The prefixed name wins; the CI agent variable is the fallback.
	_ = v.BindEnv("source.commit", "DYNAPIPE_SOURCE_COMMIT", "BUILDKITE_COMMIT")
	_ = v.BindEnv("source.branch", "DYNAPIPE_SOURCE_BRANCH", "BUILDKITE_BRANCH")
	_ = v.BindEnv("deploy.territory", "DYNAPIPE_DEPLOY_TERRITORY", "TERRITORY")
	_ = v.BindEnv("deploy.previous_territory", "DYNAPIPE_DEPLOY_PREVIOUS_TERRITORY", "PREVIOUS_TERRITORY")

	return &Loader{v: v}
}

// Load reads configuration from DYNAPIPE_CONFIG_PATH when set, otherwise
// from ./dynapipe.yaml if present. A missing default file is not an error.
func (l *Loader) Load() (*Config, error) {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return l.LoadFromFile(path)
	}

	l.v.SetConfigName("dynapipe")
	l.v.SetConfigType("yaml")
	l.v.AddConfigPath(".")
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return l.unmarshal()
}

// LoadFromFile reads configuration from path. Environment variables still
// override values from the file.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("pipeline.key", d.Pipeline.Key)
	v.SetDefault("pipeline.label", d.Pipeline.Label)

	v.SetDefault("source.commit", d.Source.Commit)
	v.SetDefault("source.branch", d.Source.Branch)
	v.SetDefault("source.backend_ref", d.Source.BackendRef)
	v.SetDefault("source.tags_source", d.Source.TagsSource)

	v.SetDefault("deploy.slug", d.Deploy.Slug)
	v.SetDefault("deploy.disable_slug", d.Deploy.DisableSlug)
	v.SetDefault("deploy.commit", d.Deploy.Commit)
	v.SetDefault("deploy.branch", d.Deploy.Branch)
	v.SetDefault("deploy.territory", d.Deploy.Territory)
	v.SetDefault("deploy.previous_territory", d.Deploy.PreviousTerritory)
	v.SetDefault("deploy.concurrency_group", d.Deploy.ConcurrencyGroup)

	v.SetDefault("global_env", d.GlobalEnv)
	v.SetDefault("base_env", d.BaseEnv)
	v.SetDefault("strict", d.Strict)
}
