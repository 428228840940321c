// Package cfg loads trainer settings from a YAML file or from
// environment variables.
package cfg

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultDiscardEstimate is used when no discard estimate is configured.
// Zero is a valid configured value and is not treated as unset.
const DefaultDiscardEstimate = 0.1

// Settings is the resolved configuration of a training run.
type Settings struct {
	TrainingScores  string
	DevScores       string
	DiscardEstimate float64
	Criterion       string

	ModelClass  string
	ModelParams map[string]any
	Features    []string

	ClassifyInput string
	LabelsOutput  string
	ProbsOutput   string
}

// ConfigFile is the on-disk YAML layout.
type ConfigFile struct {
	Training struct {
		Scores          string   `yaml:"scores"`
		DevScores       string   `yaml:"devScores"`
		DiscardEstimate *float64 `yaml:"discardEstimate"`
		Criterion       string   `yaml:"criterion"`
	} `yaml:"training"`

	Model struct {
		ClassName string         `yaml:"className"`
		Params    map[string]any `yaml:"params"`
		Features  []string       `yaml:"features"`
	} `yaml:"model"`

	Classify struct {
		Input        string `yaml:"input"`
		LabelsOutput string `yaml:"labelsOutput"`
		ProbsOutput  string `yaml:"probsOutput"`
	} `yaml:"classify"`
}

// Load reads settings from the file named by CONFIG_FILE, falling back
// to environment variables when it is unset.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	settings := Settings{
		TrainingScores:  config.Training.Scores,
		DevScores:       config.Training.DevScores,
		DiscardEstimate: DefaultDiscardEstimate,
		Criterion:       config.Training.Criterion,
		ModelClass:      config.Model.ClassName,
		ModelParams:     config.Model.Params,
		Features:        config.Model.Features,
		ClassifyInput:   config.Classify.Input,
		LabelsOutput:    config.Classify.LabelsOutput,
		ProbsOutput:     config.Classify.ProbsOutput,
	}
	if config.Training.DiscardEstimate != nil {
		settings.DiscardEstimate = *config.Training.DiscardEstimate
	}
	applyDefaults(&settings)
	if err := validateSettings(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		TrainingScores:  os.Getenv("TRAINING_SCORES"),
		DevScores:       os.Getenv("DEV_SCORES"),
		DiscardEstimate: getFloatOrDefault("DISCARD_ESTIMATE", DefaultDiscardEstimate),
		Criterion:       getEnvOrDefault("CRITERION", "roc_auc"),
		ModelClass:      getEnvOrDefault("MODEL_CLASS", "LogisticRegression"),
		ClassifyInput:   os.Getenv("CLASSIFY_INPUT"),
		LabelsOutput:    os.Getenv("LABELS_OUTPUT"),
		ProbsOutput:     os.Getenv("PROBS_OUTPUT"),
	}
	applyDefaults(&settings)
	if err := validateSettings(&settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func applyDefaults(s *Settings) {
	if s.Criterion == "" {
		s.Criterion = "roc_auc"
	}
	if s.ModelClass == "" {
		s.ModelClass = "LogisticRegression"
	}
	if s.ModelParams == nil {
		s.ModelParams = map[string]any{"solver": "liblinear"}
	}
}

func validateSettings(s *Settings) error {
	if s.TrainingScores == "" {
		return fmt.Errorf("training scores path is required")
	}
	if s.DiscardEstimate < 0 || s.DiscardEstimate > 1 {
		return fmt.Errorf("discard estimate %v out of [0, 1]", s.DiscardEstimate)
	}
	if s.ClassifyInput != "" && s.LabelsOutput == "" && s.ProbsOutput == "" {
		return fmt.Errorf("classify input set but no labels or probabilities output")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
