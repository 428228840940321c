// Package linear wraps the logistic-regression model used to separate
// clean from noisy sentence pairs. Model kinds form a closed set mapped
// to concrete constructors; there is no lookup-by-name into an external
// namespace.
package linear

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/kirianguiller/OpusFilter/internal/scores"
)

// Kind identifies a supported linear model.
type Kind string

const (
	// LogisticRegression is the only model kind the trainer currently
	// supports. Unknown names fail at construction.
	LogisticRegression Kind = "LogisticRegression"
)

// ParseKind maps a model class name onto a supported Kind.
func ParseKind(name string) (Kind, error) {
	switch Kind(name) {
	case LogisticRegression:
		return LogisticRegression, nil
	default:
		return "", fmt.Errorf("unsupported model class %q", name)
	}
}

// Weight is one named model coefficient.
type Weight struct {
	Name  string
	Value float64
}

// Classifier is a fitted (or to-be-fitted) linear model over a fixed
// feature list. Feature order determines coefficient order.
type Classifier struct {
	kind      Kind
	features  []string
	opts      Options
	coef      []float64
	intercept float64
	fitted    bool
}

// New builds an unfitted classifier for the given model class name,
// constructor params and feature list.
func New(classname string, params map[string]any, features []string) (*Classifier, error) {
	kind, err := ParseKind(classname)
	if err != nil {
		return nil, err
	}
	opts, err := ParseOptions(params)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", classname, err)
	}
	feats := make([]string, len(features))
	copy(feats, features)
	return &Classifier{kind: kind, features: feats, opts: opts}, nil
}

// Features returns the feature names the model consumes, in order.
func (c *Classifier) Features() []string {
	out := make([]string, len(c.features))
	copy(out, c.features)
	return out
}

// matrix assembles the n×d feature matrix for this classifier from t.
func (c *Classifier) matrix(t *scores.Table) (*mat.Dense, error) {
	n := t.Rows()
	d := len(c.features)
	x := mat.NewDense(n, d, nil)
	for j, name := range c.features {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			x.Set(i, j, col[i])
		}
	}
	return x, nil
}

// Train fits the model on the table's feature columns against labels.
// A single-class label vector does not fail: the fit degenerates to a
// constant predictor for that class.
func (c *Classifier) Train(t *scores.Table, labels []float64) error {
	if t.Rows() != len(labels) {
		return fmt.Errorf("train: %d rows but %d labels", t.Rows(), len(labels))
	}
	if t.Rows() == 0 {
		return fmt.Errorf("train: empty table")
	}

	if cls, single := singleClass(labels); single {
		// Constant predictor: zero weights, saturated intercept.
		log.Warn().Float64("class", cls).Msg("training labels are single-class, fitting constant predictor")
		c.coef = make([]float64, len(c.features))
		c.intercept = saturatedLogit
		if cls == 0 {
			c.intercept = -saturatedLogit
		}
		c.fitted = true
		return nil
	}
	if len(c.features) == 0 {
		return fmt.Errorf("train: no feature columns for mixed-class labels")
	}

	x, err := c.matrix(t)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	coef, intercept, err := fitLogistic(x, labels, c.opts)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	c.coef = coef
	c.intercept = intercept
	c.fitted = true
	return nil
}

// saturatedLogit maps to a probability of ~0.9999 through the sigmoid.
const saturatedLogit = 10.0

func singleClass(labels []float64) (float64, bool) {
	for _, y := range labels[1:] {
		if y != labels[0] {
			return 0, false
		}
	}
	return labels[0], true
}

func (c *Classifier) decision(t *scores.Table) ([]float64, error) {
	if !c.fitted {
		return nil, fmt.Errorf("model is not fitted")
	}
	n := t.Rows()
	z := make([]float64, n)
	if len(c.features) == 0 {
		for i := range z {
			z[i] = c.intercept
		}
		return z, nil
	}
	x, err := c.matrix(t)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		s := c.intercept
		for j := range c.coef {
			s += c.coef[j] * x.At(i, j)
		}
		z[i] = s
	}
	return z, nil
}

// Predict returns the hard 0/1 class label per row.
func (c *Classifier) Predict(t *scores.Table) ([]float64, error) {
	z, err := c.decision(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(z))
	for i, v := range z {
		if v >= 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// PredictProba returns the class-1 probability per row. The class-0
// column of the two-class probability matrix is its complement.
func (c *Classifier) PredictProba(t *scores.Table) ([]float64, error) {
	z, err := c.decision(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = sigmoid(v)
	}
	return out, nil
}

// Score returns the mean accuracy against the given labels.
func (c *Classifier) Score(t *scores.Table, labels []float64) (float64, error) {
	if t.Rows() != len(labels) {
		return 0, fmt.Errorf("score: %d rows but %d labels", t.Rows(), len(labels))
	}
	pred, err := c.Predict(t)
	if err != nil {
		return 0, err
	}
	if len(pred) == 0 {
		return 0, fmt.Errorf("score: empty table")
	}
	var hits int
	for i, p := range pred {
		if p == labels[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred)), nil
}

// Weights returns the fitted coefficients, intercept first. Weight
// introspection is only meaningful for LogisticRegression; other kinds
// log a warning and yield nothing.
func (c *Classifier) Weights() []Weight {
	if c.kind != LogisticRegression {
		log.Warn().Str("model", string(c.kind)).Msg("weights unsupported for model kind")
		return nil
	}
	if !c.fitted {
		return nil
	}
	out := make([]Weight, 0, len(c.coef)+1)
	out = append(out, Weight{Name: "(intercept)", Value: c.intercept})
	for i, name := range c.features {
		out = append(out, Weight{Name: name, Value: c.coef[i]})
	}
	return out
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
