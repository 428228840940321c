package trainer

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/kirianguiller/OpusFilter/internal/linear"
	"github.com/kirianguiller/OpusFilter/internal/scores"
)

const (
	// DefaultDiscardEstimate is the starting discard fraction per
	// feature when the caller does not supply one.
	DefaultDiscardEstimate = 0.1

	sweepTrials = 11
	discardStep = 0.01
)

// BestModel is the winning candidate of a search: the fitted
// classifier, its criterion value and a snapshot of the discard set at
// the moment it won.
type BestModel struct {
	Model    *linear.Classifier
	Value    float64
	Discards map[string]float64
}

// Search owns the training and dev tables of one greedy threshold
// search. Instances are single-use and not safe for concurrent calls.
type Search struct {
	train           *scores.Table
	dev             *scores.Table
	devLabels       []float64
	discardEstimate float64
}

// NewSearch builds a search over the given training table. dev may be
// nil; it is required for the roc_auc criterion and must carry a
// "label" column, which is extracted here. discardEstimate must lie in
// [0, 1]; pass NaN for the default.
func NewSearch(train, dev *scores.Table, discardEstimate float64) (*Search, error) {
	if train == nil || train.Rows() == 0 {
		return nil, fmt.Errorf("empty training table")
	}
	if math.IsNaN(discardEstimate) {
		discardEstimate = DefaultDiscardEstimate
	}
	if discardEstimate < 0 || discardEstimate > 1 {
		return nil, fmt.Errorf("discard estimate %v out of [0, 1]", discardEstimate)
	}
	s := &Search{train: train, dev: dev, discardEstimate: discardEstimate}
	if dev != nil {
		labels, err := dev.Pop("label")
		if err != nil {
			return nil, fmt.Errorf("dev data: %w", err)
		}
		s.devLabels = labels
	}
	return s, nil
}

// FindBestModel runs the greedy per-feature sweep and returns the model
// with the best criterion value seen. For every feature it tries 11
// discard fractions, starting at the configured estimate and stepping
// down by 0.01 (clamped at 0); the discard-0 trial drops the feature
// entirely, and if that trial wins the feature is removed from the live
// tables for the rest of the search.
func (s *Search) FindBestModel(criterion Criterion) (*BestModel, error) {
	if criterion == CriterionROCAUC && s.dev == nil {
		return nil, fmt.Errorf("criterion roc_auc requires dev data")
	}

	// The live tables shrink during the sweep; the feature list is
	// fixed up front so iteration stays well-defined.
	features := s.train.Columns()
	cutoffs := NewCutoffs(features)
	discards := make(map[string]float64, len(features))
	for _, key := range features {
		discards[key] = round2(s.discardEstimate)
	}

	var best *BestModel
	for _, key := range features {
		discard := discards[key]
		bestDiscard := discard
		removeColumn := false

		for trial := 0; trial < sweepTrials; trial++ {
			trainCopy := s.train.Copy()
			var devCopy *scores.Table
			if s.dev != nil {
				devCopy = s.dev.Copy()
			}
			cutoffsCopy := cutoffs.Copy()

			log.Info().
				Str("feature", key).
				Interface("discards", discards).
				Msg("training logistic regression model")

			zero := discards[key] == 0
			if zero {
				// Drop-the-feature trial: the column leaves the
				// snapshot tables and its gate leaves the cutoffs.
				if _, err := trainCopy.Pop(key); err != nil {
					return nil, err
				}
				if devCopy != nil {
					if _, err := devCopy.Pop(key); err != nil {
						return nil, err
					}
				}
				delete(cutoffsCopy, key)
			}
			if err := SetCutoffs(trainCopy, discards, cutoffsCopy); err != nil {
				return nil, err
			}
			labels, err := AddLabels(trainCopy, cutoffsCopy)
			if err != nil {
				return nil, err
			}

			model, err := trainLogReg(trainCopy, labels)
			if err != nil {
				return nil, err
			}

			value, err := s.evaluate(criterion, model, trainCopy, devCopy, labels)
			if err != nil {
				return nil, err
			}
			log.Info().Str("criterion", string(criterion)).Float64("value", value).Msg("model scored")

			if best == nil || criterion.Better(value, best.Value) {
				best = &BestModel{Model: model, Value: value, Discards: copyDiscards(discards)}
				bestDiscard = round2(discards[key])
				if zero {
					removeColumn = true
				}
			}

			discard = round2(discard - discardStep)
			if discard < 0 {
				discard = 0
			}
			discards[key] = discard
		}

		if removeColumn {
			if _, err := s.train.Pop(key); err != nil {
				return nil, err
			}
			if s.dev != nil {
				if _, err := s.dev.Pop(key); err != nil {
					return nil, err
				}
			}
			delete(cutoffs, key)
			log.Info().Str("feature", key).Msg("feature removed from search")
		}
		discards[key] = bestDiscard
	}

	if best == nil {
		return nil, fmt.Errorf("no candidate model improved on the baseline")
	}
	return best, nil
}

// trainLogReg fits a fresh logistic regression on the snapshot table's
// columns against the given labels.
func trainLogReg(t *scores.Table, labels []float64) (*linear.Classifier, error) {
	model, err := linear.New("LogisticRegression", map[string]any{"solver": "liblinear"}, t.Columns())
	if err != nil {
		return nil, err
	}
	if err := model.Train(t, labels); err != nil {
		return nil, err
	}
	return model, nil
}

func (s *Search) evaluate(criterion Criterion, model *linear.Classifier, train, dev *scores.Table, labels []float64) (float64, error) {
	switch criterion {
	case CriterionROCAUC:
		return s.devAUC(model, dev)
	case CriterionAIC:
		preds, err := model.Predict(train)
		if err != nil {
			return 0, err
		}
		return aic(sse(labels, preds), len(train.Columns())), nil
	case CriterionBIC:
		preds, err := model.Predict(train)
		if err != nil {
			return 0, err
		}
		return bic(sse(labels, preds), len(train.Columns()), train.Rows()), nil
	default:
		return 0, fmt.Errorf("unknown criterion %q", criterion)
	}
}

// devAUC scores the model on the dev set. The AUC is computed with the
// class-0 and class-1 probability columns in turn and the larger one is
// kept, compensating for label-orientation ambiguity.
func (s *Search) devAUC(model *linear.Classifier, dev *scores.Table) (float64, error) {
	probs, err := model.PredictProba(dev)
	if err != nil {
		return 0, err
	}
	if acc, err := model.Score(dev, s.devLabels); err == nil {
		log.Info().Float64("accuracy", acc).Msg("dev accuracy")
	}
	complement := make([]float64, len(probs))
	for i, p := range probs {
		complement[i] = 1 - p
	}
	auc0 := rocAUC(s.devLabels, complement)
	auc1 := rocAUC(s.devLabels, probs)
	return math.Max(auc0, auc1), nil
}

func copyDiscards(discards map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(discards))
	for k, v := range discards {
		out[k] = v
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
