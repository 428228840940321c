package trainer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Criterion selects the scalar objective that ranks candidate models.
type Criterion string

const (
	CriterionROCAUC Criterion = "roc_auc"
	CriterionAIC    Criterion = "AIC"
	CriterionBIC    Criterion = "BIC"
)

// ParseCriterion validates a criterion name. Unknown names are an
// explicit error rather than a silently dead search.
func ParseCriterion(name string) (Criterion, error) {
	switch Criterion(name) {
	case CriterionROCAUC, CriterionAIC, CriterionBIC:
		return Criterion(name), nil
	default:
		return "", fmt.Errorf("unknown criterion %q (want roc_auc, AIC or BIC)", name)
	}
}

// Better reports whether candidate strictly beats best under the
// criterion: higher wins for ROC AUC, lower wins for AIC and BIC.
func (c Criterion) Better(candidate, best float64) bool {
	if c == CriterionROCAUC {
		return candidate > best
	}
	return candidate < best
}

// rocAUC computes the area under the ROC curve for the given scores
// against binary labels. A single-class label vector leaves the curve
// undefined; 0.5 is returned for that case.
func rocAUC(labels, probs []float64) float64 {
	classes := make([]bool, len(labels))
	single := true
	for i, y := range labels {
		classes[i] = y > 0.5
		if i > 0 && classes[i] != classes[0] {
			single = false
		}
	}
	if len(labels) == 0 || single {
		return 0.5
	}
	y := make([]float64, len(probs))
	copy(y, probs)
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}

// sse is the residual sum of squares between labels and point
// predictions, with a small constant added so the log in AIC/BIC never
// sees a zero argument.
func sse(labels, preds []float64) float64 {
	var s float64
	for i := range labels {
		r := labels[i] - preds[i]
		s += r * r
	}
	return s + 0.01
}

// aic is the Akaike information criterion for k feature columns.
func aic(sse float64, k int) float64 {
	return 2*float64(k) - 2*math.Log(sse)
}

// bic is the Bayesian information criterion for k feature columns and
// n observations.
func bic(sse float64, k, n int) float64 {
	return math.Log(float64(n))*float64(k) - 2*math.Log(sse)
}
