// Package config holds the user-tunable forecasting parameters: the
// headline Assumptions exposed in the interactive UI and the ModelTuning
// knobs that calibrate the predictor. Both are immutable values threaded
// into every engine call; there is no process-wide mutable state.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Defaults for Assumptions and ModelTuning. Zero-valued fields on user
// supplied values inherit these, matching the merge semantics of
// EffectiveTuning.
const (
	DefaultSwingMultiplier        = 1.0
	DefaultIncumbencyBonus        = 0.03
	DefaultHighConfidenceMargin   = 0.10
	DefaultMediumConfidenceMargin = 0.05
	DefaultDemographicWeight      = 1.0
	DefaultRecentElections        = 3
)

// Assumptions are the headline what-if parameters a user can adjust.
// The interactive UI recomputes the whole forecast on every change, so
// values are plain data with no behaviour attached.
type Assumptions struct {
	// SwingMultiplier scales the national swing before it is applied to
	// ward baselines. 1.0 applies the polled swing as-is.
	SwingMultiplier float64 `yaml:"swingMultiplier" mapstructure:"swingMultiplier"`

	// TurnoutAdjustment is added to the historical ward turnout, in
	// fraction points (e.g. -0.05 for a five-point drop).
	TurnoutAdjustment float64 `yaml:"turnoutAdjustment" mapstructure:"turnoutAdjustment"`

	// NewEntrantStandsEverywhere injects NewEntrantParty into every ward
	// it has not previously contested, at a share estimated from
	// national polling.
	NewEntrantStandsEverywhere bool `yaml:"newEntrantStandsEverywhere" mapstructure:"newEntrantStandsEverywhere"`

	// NewEntrantParty names the party injected when
	// NewEntrantStandsEverywhere is set.
	NewEntrantParty string `yaml:"newEntrantParty" mapstructure:"newEntrantParty"`
}

// ModelTuning calibrates the predictor. Fields left at zero inherit the
// package defaults via EffectiveTuning.
type ModelTuning struct {
	// IncumbencyBonus is the flat share-point retention bonus applied to
	// the party defending the seat.
	IncumbencyBonus float64 `yaml:"incumbencyBonus" mapstructure:"incumbencyBonus"`

	// HighConfidenceMargin is the first-to-second share gap at or above
	// which a prediction on complete data is labelled high confidence.
	HighConfidenceMargin float64 `yaml:"highConfidenceMargin" mapstructure:"highConfidenceMargin"`

	// MediumConfidenceMargin is the gap at or above which a prediction
	// is labelled medium confidence.
	MediumConfidenceMargin float64 `yaml:"mediumConfidenceMargin" mapstructure:"mediumConfidenceMargin"`

	// DemographicWeight scales the built-in demographic correlation
	// nudges. 0 inherits the default; use a negative value to disable.
	DemographicWeight float64 `yaml:"demographicWeight" mapstructure:"demographicWeight"`

	// RecentElections is the window used when averaging a sparse ward
	// history to establish a baseline.
	RecentElections int `yaml:"recentElections" mapstructure:"recentElections"`
}

// Config bundles the tunable parameters as loaded from file or
// environment.
type Config struct {
	Assumptions Assumptions `yaml:"assumptions" mapstructure:"assumptions"`
	Tuning      ModelTuning `yaml:"tuning" mapstructure:"tuning"`
}

// DefaultAssumptions returns the baseline scenario: polled swing applied
// as-is, historical turnout, no injected entrant.
func DefaultAssumptions() Assumptions {
	return Assumptions{SwingMultiplier: DefaultSwingMultiplier}
}

// DefaultTuning returns the calibrated defaults for the predictor.
func DefaultTuning() ModelTuning {
	return ModelTuning{
		IncumbencyBonus:        DefaultIncumbencyBonus,
		HighConfidenceMargin:   DefaultHighConfidenceMargin,
		MediumConfidenceMargin: DefaultMediumConfidenceMargin,
		DemographicWeight:      DefaultDemographicWeight,
		RecentElections:        DefaultRecentElections,
	}
}

// Validate checks for invalid assumption values.
func (a Assumptions) Validate() error {
	if a.SwingMultiplier < 0 || a.SwingMultiplier > 5 {
		return fmt.Errorf("swingMultiplier must be between 0 and 5, got %.2f", a.SwingMultiplier)
	}
	if a.TurnoutAdjustment < -1 || a.TurnoutAdjustment > 1 {
		return fmt.Errorf("turnoutAdjustment must be between -1 and 1, got %.2f", a.TurnoutAdjustment)
	}
	if a.NewEntrantStandsEverywhere && a.NewEntrantParty == "" {
		return fmt.Errorf("newEntrantParty must be set when newEntrantStandsEverywhere is enabled")
	}
	return nil
}

// Validate checks for invalid tuning values.
func (t ModelTuning) Validate() error {
	if t.IncumbencyBonus < 0 || t.IncumbencyBonus > 0.2 {
		return fmt.Errorf("incumbencyBonus must be between 0 and 0.2, got %.3f", t.IncumbencyBonus)
	}
	if t.HighConfidenceMargin < 0 || t.HighConfidenceMargin > 1 {
		return fmt.Errorf("highConfidenceMargin must be between 0 and 1, got %.2f", t.HighConfidenceMargin)
	}
	if t.MediumConfidenceMargin < 0 || t.MediumConfidenceMargin > 1 {
		return fmt.Errorf("mediumConfidenceMargin must be between 0 and 1, got %.2f", t.MediumConfidenceMargin)
	}
	if t.HighConfidenceMargin != 0 && t.MediumConfidenceMargin != 0 &&
		t.HighConfidenceMargin < t.MediumConfidenceMargin {
		return fmt.Errorf("highConfidenceMargin (%.2f) should be >= mediumConfidenceMargin (%.2f)",
			t.HighConfidenceMargin, t.MediumConfidenceMargin)
	}
	if t.RecentElections < 0 {
		return fmt.Errorf("recentElections must be >= 0, got %d", t.RecentElections)
	}
	return nil
}

// EffectiveTuning merges user-supplied tuning over the defaults:
// zero-valued fields inherit, set fields override. A negative
// DemographicWeight disables the demographic nudges.
func EffectiveTuning(user ModelTuning) ModelTuning {
	result := DefaultTuning()

	if user.IncumbencyBonus != 0 {
		result.IncumbencyBonus = user.IncumbencyBonus
	}
	if user.HighConfidenceMargin != 0 {
		result.HighConfidenceMargin = user.HighConfidenceMargin
	}
	if user.MediumConfidenceMargin != 0 {
		result.MediumConfidenceMargin = user.MediumConfidenceMargin
	}
	if user.DemographicWeight != 0 {
		result.DemographicWeight = user.DemographicWeight
		if result.DemographicWeight < 0 {
			result.DemographicWeight = 0
		}
	}
	if user.RecentElections != 0 {
		result.RecentElections = user.RecentElections
	}

	return result
}

// Load reads configuration from an optional YAML file and the
// environment (FORECAST_* variables, e.g.
// FORECAST_ASSUMPTIONS_SWINGMULTIPLIER). Missing file and env values
// fall back to defaults; the result is validated before return.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("assumptions.swingMultiplier", DefaultSwingMultiplier)
	v.SetDefault("assumptions.turnoutAdjustment", 0.0)
	v.SetDefault("assumptions.newEntrantStandsEverywhere", false)
	v.SetDefault("assumptions.newEntrantParty", "")

	v.SetEnvPrefix("FORECAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.Tuning = EffectiveTuning(cfg.Tuning)
	if err := cfg.Assumptions.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid assumptions: %w", err)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid tuning: %w", err)
	}

	return cfg, nil
}
