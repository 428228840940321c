package cfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromYAML(t *testing.T) {
	content := `
training:
  scores: train.jsonl
  devScores: dev.jsonl
  discardEstimate: 0.05
  criterion: BIC
model:
  className: LogisticRegression
  params:
    solver: liblinear
    C: 2.0
classify:
  input: input.jsonl
  labelsOutput: labels.txt
  probsOutput: probs.txt
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "train.jsonl", settings.TrainingScores)
	assert.Equal(t, "dev.jsonl", settings.DevScores)
	assert.Equal(t, 0.05, settings.DiscardEstimate)
	assert.Equal(t, "BIC", settings.Criterion)
	assert.Equal(t, "LogisticRegression", settings.ModelClass)
	assert.Equal(t, "liblinear", settings.ModelParams["solver"])
	assert.Equal(t, "input.jsonl", settings.ClassifyInput)
	assert.Equal(t, "labels.txt", settings.LabelsOutput)
	assert.Equal(t, "probs.txt", settings.ProbsOutput)
}

func TestLoadDefaults(t *testing.T) {
	content := `
training:
  scores: train.jsonl
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.1, settings.DiscardEstimate)
	assert.Equal(t, "roc_auc", settings.Criterion)
	assert.Equal(t, "LogisticRegression", settings.ModelClass)
	assert.Equal(t, map[string]any{"solver": "liblinear"}, settings.ModelParams)
}

func TestLoadExplicitZeroDiscard(t *testing.T) {
	// Zero is a valid discard estimate and must not fall back to the
	// default when set explicitly.
	content := `
training:
  scores: train.jsonl
  discardEstimate: 0.0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("CONFIG_FILE", path)

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, settings.DiscardEstimate)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRAINING_SCORES", "train.jsonl")
	t.Setenv("DISCARD_ESTIMATE", "0")

	settings, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 0.0, settings.DiscardEstimate)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRAINING_SCORES", "train.jsonl")
	t.Setenv("DEV_SCORES", "dev.jsonl")
	t.Setenv("DISCARD_ESTIMATE", "0.2")
	t.Setenv("CRITERION", "AIC")

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "train.jsonl", settings.TrainingScores)
	assert.Equal(t, "dev.jsonl", settings.DevScores)
	assert.Equal(t, 0.2, settings.DiscardEstimate)
	assert.Equal(t, "AIC", settings.Criterion)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("TRAINING_SCORES", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "training scores path")

	t.Setenv("TRAINING_SCORES", "train.jsonl")
	t.Setenv("DISCARD_ESTIMATE", "1.5")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("DISCARD_ESTIMATE", "0.1")
	t.Setenv("CLASSIFY_INPUT", "input.jsonl")
	t.Setenv("LABELS_OUTPUT", "")
	t.Setenv("PROBS_OUTPUT", "")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify input")
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("training: ["), 0o644))
	t.Setenv("CONFIG_FILE", path)
	_, err := Load()
	require.Error(t, err)
}
