package linear

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirianguiller/OpusFilter/internal/scores"
)

func separableTable(t *testing.T) (*scores.Table, []float64) {
	t.Helper()
	tab, err := scores.FromColumns([]string{"x"}, map[string][]float64{
		"x": {-2, -1.5, -1, -0.5, 0.5, 1, 1.5, 2},
	})
	require.NoError(t, err)
	return tab, []float64{0, 0, 0, 0, 1, 1, 1, 1}
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind("LogisticRegression")
	require.NoError(t, err)
	assert.Equal(t, LogisticRegression, kind)

	_, err = ParseKind("SGDClassifier")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported model class")
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(map[string]any{"solver": "liblinear", "C": 2, "tol": 1e-4, "max_iter": 500})
	require.NoError(t, err)
	assert.Equal(t, "liblinear", opts.Solver)
	assert.Equal(t, 2.0, opts.C)
	assert.Equal(t, 1e-4, opts.Tol)
	assert.Equal(t, 500, opts.MaxIter)

	_, err = ParseOptions(map[string]any{"penalty": "l1"})
	require.Error(t, err)

	_, err = ParseOptions(map[string]any{"C": -1.0})
	require.Error(t, err)

	_, err = ParseOptions(map[string]any{"C": "big"})
	require.Error(t, err)
}

func TestTrainAndPredict(t *testing.T) {
	tab, labels := separableTable(t)
	model, err := New("LogisticRegression", map[string]any{"solver": "liblinear"}, tab.Columns())
	require.NoError(t, err)

	require.NoError(t, model.Train(tab, labels))

	preds, err := model.Predict(tab)
	require.NoError(t, err)
	assert.Equal(t, labels, preds)

	acc, err := model.Score(tab, labels)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	probs, err := model.PredictProba(tab)
	require.NoError(t, err)
	require.Len(t, probs, tab.Rows())
	for i, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		if i > 0 {
			// Probability grows with the single feature.
			assert.GreaterOrEqual(t, p, probs[i-1])
		}
	}
}

func TestTrainSingleClass(t *testing.T) {
	tab, err := scores.FromColumns([]string{"x"}, map[string][]float64{"x": {1, 2, 3}})
	require.NoError(t, err)

	model, err := New("LogisticRegression", nil, tab.Columns())
	require.NoError(t, err)
	require.NoError(t, model.Train(tab, []float64{1, 1, 1}))

	preds, err := model.Predict(tab)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1, 1}, preds)

	probs, err := model.PredictProba(tab)
	require.NoError(t, err)
	for _, p := range probs {
		assert.Greater(t, p, 0.99)
	}
}

func TestTrainValidation(t *testing.T) {
	tab, labels := separableTable(t)
	model, err := New("LogisticRegression", nil, tab.Columns())
	require.NoError(t, err)

	assert.Error(t, model.Train(tab, labels[:3]))

	_, err = model.Predict(tab)
	assert.Error(t, err, "predict before fit")
}

func TestWeights(t *testing.T) {
	tab, labels := separableTable(t)
	model, err := New("LogisticRegression", nil, tab.Columns())
	require.NoError(t, err)

	assert.Nil(t, model.Weights(), "no weights before fit")

	require.NoError(t, model.Train(tab, labels))
	weights := model.Weights()
	require.Len(t, weights, 2)
	assert.Equal(t, "(intercept)", weights[0].Name)
	assert.Equal(t, "x", weights[1].Name)
	assert.Greater(t, weights[1].Value, 0.0, "higher x must push towards class 1")
}
