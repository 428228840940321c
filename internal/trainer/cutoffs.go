// Package trainer implements the greedy threshold search that selects a
// filter classifier and per-feature score cutoffs.
package trainer

import (
	"fmt"
	"math"
	"strings"

	"github.com/kirianguiller/OpusFilter/internal/scores"
)

// Cutoffs maps feature names to score thresholds. A NaN value marks a
// cutoff that has not been computed yet; such gates are inactive.
type Cutoffs map[string]float64

// NewCutoffs builds an unset cutoff skeleton for the given features.
func NewCutoffs(names []string) Cutoffs {
	c := make(Cutoffs, len(names))
	for _, name := range names {
		c[name] = math.NaN()
	}
	return c
}

// Copy returns an independent copy of the cutoff set.
func (c Cutoffs) Copy() Cutoffs {
	out := make(Cutoffs, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// RejectHigh reports the orientation of a feature: scores from
// cross-entropy and word-alignment filters grow with noise, so a high
// score means reject. Everything else treats high scores as clean.
func RejectHigh(name string) bool {
	return strings.Contains(name, "CrossEntropyFilter") || strings.Contains(name, "WordAlign")
}

// gateFails reports whether one feature gate rejects the value.
func gateFails(name string, value, cutoff float64) bool {
	if RejectHigh(name) {
		return value > cutoff
	}
	return value < cutoff
}

// SetCutoffs fills every cutoff in the set with the quantile of its
// feature column that matches the feature's discard fraction: the
// (1-discard)-quantile for reject-high features, the discard-quantile
// otherwise. It works on a copy of the table so shared state is never
// touched.
func SetCutoffs(t *scores.Table, discards map[string]float64, cutoffs Cutoffs) error {
	work := t.Copy()
	for key := range cutoffs {
		discard, ok := discards[key]
		if !ok {
			return fmt.Errorf("no discard estimate for feature %q", key)
		}
		p := discard
		if RejectHigh(key) {
			p = 1 - discard
		}
		q, err := work.Quantile(key, p)
		if err != nil {
			return fmt.Errorf("cutoff for %q: %w", key, err)
		}
		cutoffs[key] = q
	}
	return nil
}

// AssignLabel gates a single score row against the active cutoffs.
// The label starts at 1 and any failing gate drives it to 0.
func AssignLabel(row map[string]float64, cutoffs Cutoffs) float64 {
	label := 1.0
	for key, cutoff := range cutoffs {
		if math.IsNaN(cutoff) {
			continue
		}
		if gateFails(key, row[key], cutoff) {
			label = 0
		}
	}
	return label
}

// AddLabels assigns a 0/1 label to every table row, in row order, by
// ANDing the per-feature gates of the active cutoffs.
func AddLabels(t *scores.Table, cutoffs Cutoffs) ([]float64, error) {
	labels := make([]float64, t.Rows())
	for i := range labels {
		labels[i] = 1
	}
	for key, cutoff := range cutoffs {
		if math.IsNaN(cutoff) {
			continue
		}
		col, err := t.Column(key)
		if err != nil {
			return nil, fmt.Errorf("label column %q: %w", key, err)
		}
		for i, v := range col {
			if gateFails(key, v, cutoff) {
				labels[i] = 0
			}
		}
	}
	return labels, nil
}
