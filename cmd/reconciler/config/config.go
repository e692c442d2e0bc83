// Package config loads and validates the run configuration for the
// reconciler CLI from a YAML file, environment variables and flags.
package config

import (
	"fmt"
	"strings"

	"soa-reconciliation-engine/internal/models"
	"soa-reconciliation-engine/pkg/errors"

	"github.com/spf13/viper"
)

// ReferenceConfig describes one reference dataset in the run configuration.
type ReferenceConfig struct {
	// Name prefixes this reference's output columns. Optional; Ref1, Ref2,
	// ... are assigned in order when empty.
	Name string `mapstructure:"name"`
	// File is the CSV path of the reference table.
	File string `mapstructure:"file"`
	// MatchColumn is the reference-side join column.
	MatchColumn string `mapstructure:"match_column"`
	// ReturnColumns are extracted into the detailed output.
	ReturnColumns []string `mapstructure:"return_columns"`
	// MatchType is "exact" (default) or "fuzzy".
	MatchType string `mapstructure:"match_type"`
}

// RunConfig is the complete configuration of one reconciliation run.
type RunConfig struct {
	// BaseFile is the CSV path of the base (SOA) table.
	BaseFile string `mapstructure:"base_file"`
	// MatchColumn is the base join-key column. Required.
	MatchColumn string `mapstructure:"match_column"`
	// DateColumn enables age bucketing when set.
	DateColumn string `mapstructure:"date_column"`
	// AmountColumn is the base amount column; auto-detected when empty.
	AmountColumn string `mapstructure:"amount_column"`
	// OutputDir receives the Excel artifact.
	OutputDir string `mapstructure:"output_dir"`
	// NoExport skips artifact generation.
	NoExport bool `mapstructure:"no_export"`
	// References are processed in order.
	References []ReferenceConfig `mapstructure:"references"`
}

// Load reads a run configuration file (YAML) with RECONCILER_* environment
// overrides and validates it.
func Load(path string) (*RunConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("RECONCILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfiguration, errors.CodeInvalidConfig,
			fmt.Sprintf("failed to read config file %s: %v", path, err))
	}

	var cfg RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfiguration, errors.CodeInvalidConfig,
			fmt.Sprintf("failed to parse config file %s: %v", path, err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields and match types.
func (c *RunConfig) Validate() error {
	if strings.TrimSpace(c.BaseFile) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "base_file is required")
	}
	if strings.TrimSpace(c.MatchColumn) == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "match_column is required")
	}
	if len(c.References) == 0 {
		return errors.ConfigurationError(errors.CodeMissingConfig, "at least one reference is required")
	}

	seen := make(map[string]bool)
	for i, ref := range c.References {
		label := ref.Name
		if label == "" {
			label = fmt.Sprintf("references[%d]", i)
		}
		if strings.TrimSpace(ref.File) == "" {
			return errors.ConfigurationError(errors.CodeMissingConfig,
				fmt.Sprintf("%s: file is required", label))
		}
		if strings.TrimSpace(ref.MatchColumn) == "" {
			return errors.ConfigurationError(errors.CodeMissingConfig,
				fmt.Sprintf("%s: match_column is required", label))
		}
		if !ref.ParsedMatchType().IsValid() {
			return errors.ConfigurationError(errors.CodeInvalidConfig,
				fmt.Sprintf("%s: match_type must be %q or %q", label, models.MatchExact, models.MatchFuzzy))
		}
		if ref.Name != "" {
			if seen[ref.Name] {
				return errors.ConfigurationError(errors.CodeInvalidConfig,
					fmt.Sprintf("duplicate reference name %q", ref.Name))
			}
			seen[ref.Name] = true
		}
	}
	return nil
}

// ParsedMatchType returns the reference's match type, defaulting to exact.
func (r *ReferenceConfig) ParsedMatchType() models.MatchType {
	t := models.MatchType(strings.ToLower(strings.TrimSpace(r.MatchType)))
	if t == "" {
		return models.MatchExact
	}
	return t
}
