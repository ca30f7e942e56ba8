package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringConfig carries every tunable used by the matching and scoring
// engines. It is populated with defaults, optionally overridden from the YAML
// file, and passed into services as an immutable value; core logic never reads
// ambient state.
type ScoringConfig struct {
	// Similarity matcher
	HighThreshold  float64  `yaml:"high_threshold"`   // auto-confirm at or above
	LowThreshold   float64  `yaml:"low_threshold"`    // queue for review at or above
	CategoryBonus  float64  `yaml:"category_bonus"`   // added when promise and action share a category
	MinTokenLength int      `yaml:"min_token_length"` // shorter tokens are dropped
	StemLength     int      `yaml:"stem_length"`      // prefix length used to unify inflected forms
	ExtraStopWords []string `yaml:"extra_stop_words"` // appended to the built-in list

	// Match batch processor caps
	MaxActionsPerRun  int `yaml:"max_actions_per_run"`
	MaxPromisesPerRun int `yaml:"max_promises_per_run"`

	// Batch execution
	MaxPoliticiansPerRun int `yaml:"max_politicians_per_run"` // soft cap per invocation
	Concurrency          int `yaml:"concurrency"`             // parallel politicians in all-subject runs

	// Credibility scorer tables. Keys are outcome and importance names;
	// broken magnitudes are stored positive and signed by the scorer.
	BaseMagnitudes    map[string]map[string]float64 `yaml:"base_magnitudes"`
	SourceMultipliers map[int]float64               `yaml:"source_multipliers"`

	// Score bounds
	CredibilityFloor   float64 `yaml:"credibility_floor"`
	CredibilityCeiling float64 `yaml:"credibility_ceiling"`
	ActivityMax        float64 `yaml:"activity_max"` // assumed maximum weighted activity sum

	// Value profiler rules
	GreenwashingMinPromises    int     `yaml:"greenwashing_min_promises"`
	GreenwashingMaxConsistency float64 `yaml:"greenwashing_max_consistency"`
	PriorityShiftThreshold     float64 `yaml:"priority_shift_threshold"` // attention-point move between windows
}

// DefaultScoring returns the scoring configuration with every tunable at its
// documented default.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		HighThreshold:  0.7,
		LowThreshold:   0.5,
		CategoryBonus:  0.3,
		MinTokenLength: 4,
		StemLength:     6,

		MaxActionsPerRun:  50,
		MaxPromisesPerRun: 20,

		MaxPoliticiansPerRun: 200,
		Concurrency:          4,

		BaseMagnitudes: map[string]map[string]float64{
			"kept":    {"low": 3, "medium": 4, "high": 5, "critical": 7},
			"broken":  {"low": 5, "medium": 7, "high": 9, "critical": 11},
			"partial": {"low": 1, "medium": 1, "high": 2, "critical": 2},
		},
		SourceMultipliers: map[int]float64{1: 1.0, 2: 1.25, 3: 1.5},

		CredibilityFloor:   0,
		CredibilityCeiling: 200,
		ActivityMax:        500,

		GreenwashingMinPromises:    3,
		GreenwashingMaxConsistency: 40,
		PriorityShiftThreshold:     25,
	}
}

// Config holds the application's configuration.
type Config struct {
	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`
	Authority struct {
		VotesURL       string  `yaml:"votes_url"`
		ActivitiesURL  string  `yaml:"activities_url"`
		RequestsPerSec float64 `yaml:"requests_per_second"`
		TimeoutSeconds int64   `yaml:"timeout_seconds"`
	} `yaml:"authority"`
	Scoring ScoringConfig `yaml:"scoring"`
	Server  struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

// LoadConfig reads configuration from the specified YAML file. Scoring
// tunables not present in the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{Scoring: DefaultScoring()}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	// A partial override of a table would silently zero the missing entries,
	// so empty tables fall back to the defaults wholesale.
	defaults := DefaultScoring()
	if len(config.Scoring.BaseMagnitudes) == 0 {
		config.Scoring.BaseMagnitudes = defaults.BaseMagnitudes
	}
	if len(config.Scoring.SourceMultipliers) == 0 {
		config.Scoring.SourceMultipliers = defaults.SourceMultipliers
	}
	if config.Authority.TimeoutSeconds == 0 {
		config.Authority.TimeoutSeconds = 15
	}
	if config.Authority.RequestsPerSec == 0 {
		config.Authority.RequestsPerSec = 1
	}

	return config, nil
}
