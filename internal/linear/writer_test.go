package linear

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePredsAndProbs(t *testing.T) {
	tab, labels := separableTable(t)
	model, err := New("LogisticRegression", nil, tab.Columns())
	require.NoError(t, err)
	require.NoError(t, model.Train(tab, labels))

	dir := t.TempDir()
	input := filepath.Join(dir, "input.jsonl")
	var sb strings.Builder
	xs := []float64{-3, -0.2, 0.2, 3, 0.7}
	for _, x := range xs {
		fmt.Fprintf(&sb, `{"x": %v}`+"\n", x)
	}
	require.NoError(t, os.WriteFile(input, []byte(sb.String()), 0o644))

	labelsOut := filepath.Join(dir, "labels.txt")
	require.NoError(t, model.WritePreds(input, labelsOut))

	data, err := os.ReadFile(labelsOut)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, len(xs), "one label line per input row")
	for _, line := range lines {
		v, err := strconv.Atoi(line)
		require.NoError(t, err)
		assert.Contains(t, []int{0, 1}, v)
	}

	probsOut := filepath.Join(dir, "probs.txt")
	require.NoError(t, model.WriteProbs(input, probsOut))

	data, err = os.ReadFile(probsOut)
	require.NoError(t, err)
	lines = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, len(xs), "one probability line per input row")
	for _, line := range lines {
		// Ten digits after the decimal point.
		dot := strings.Index(line, ".")
		require.NotEqual(t, -1, dot)
		assert.Len(t, line[dot+1:], 10)

		p, err := strconv.ParseFloat(line, 64)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestWritePredsMissingInput(t *testing.T) {
	tab, labels := separableTable(t)
	model, err := New("LogisticRegression", nil, tab.Columns())
	require.NoError(t, err)
	require.NoError(t, model.Train(tab, labels))

	err = model.WritePreds(filepath.Join(t.TempDir(), "missing.jsonl"), filepath.Join(t.TempDir(), "out.txt"))
	require.Error(t, err)
}
