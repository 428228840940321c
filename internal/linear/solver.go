package linear

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Options carries the constructor params of a linear model. The zero
// value is not usable; go through ParseOptions.
type Options struct {
	Solver  string  // accepted for compatibility, informational only
	C       float64 // inverse regularization strength
	Tol     float64 // gradient tolerance for the optimizer
	MaxIter int
}

// DefaultOptions mirrors the usual logistic-regression defaults.
func DefaultOptions() Options {
	return Options{Solver: "liblinear", C: 1.0, Tol: 1e-6, MaxIter: 1000}
}

// ParseOptions converts a constructor-param mapping into Options.
// Unknown keys are rejected so config typos surface early.
func ParseOptions(params map[string]any) (Options, error) {
	opts := DefaultOptions()
	for key, raw := range params {
		switch key {
		case "solver":
			s, ok := raw.(string)
			if !ok {
				return opts, fmt.Errorf("param solver: expected string, got %T", raw)
			}
			opts.Solver = s
		case "C":
			v, err := asFloat(raw)
			if err != nil {
				return opts, fmt.Errorf("param C: %w", err)
			}
			if v <= 0 {
				return opts, fmt.Errorf("param C must be positive, got %v", v)
			}
			opts.C = v
		case "tol":
			v, err := asFloat(raw)
			if err != nil {
				return opts, fmt.Errorf("param tol: %w", err)
			}
			opts.Tol = v
		case "max_iter":
			v, err := asFloat(raw)
			if err != nil {
				return opts, fmt.Errorf("param max_iter: %w", err)
			}
			opts.MaxIter = int(v)
		default:
			return opts, fmt.Errorf("unsupported param %q", key)
		}
	}
	return opts, nil
}

func asFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
}

// fitLogistic minimizes the L2-penalized logistic loss
//
//	0.5*||w||^2 + C * sum_i log(1 + exp(-y_i * (x_i·w + b)))
//
// the same objective liblinear solves for L2-regularized logistic
// regression. The intercept is not penalized. Labels must be 0/1 with
// both classes present.
func fitLogistic(x *mat.Dense, y []float64, opts Options) (coef []float64, intercept float64, err error) {
	n, d := x.Dims()

	// theta = [w_0..w_{d-1}, b]
	objective := func(theta []float64) float64 {
		var penalty float64
		for j := 0; j < d; j++ {
			penalty += theta[j] * theta[j]
		}
		loss := 0.5 * penalty
		for i := 0; i < n; i++ {
			z := theta[d]
			for j := 0; j < d; j++ {
				z += theta[j] * x.At(i, j)
			}
			// log(1+exp(z)) - y*z, computed without overflow
			loss += opts.C * (log1pexp(z) - y[i]*z)
		}
		return loss
	}
	gradient := func(grad, theta []float64) {
		for j := 0; j < d; j++ {
			grad[j] = theta[j]
		}
		grad[d] = 0
		for i := 0; i < n; i++ {
			z := theta[d]
			for j := 0; j < d; j++ {
				z += theta[j] * x.At(i, j)
			}
			r := opts.C * (sigmoid(z) - y[i])
			for j := 0; j < d; j++ {
				grad[j] += r * x.At(i, j)
			}
			grad[d] += r
		}
	}

	problem := optimize.Problem{Func: objective, Grad: gradient}
	settings := &optimize.Settings{
		GradientThreshold: opts.Tol,
		MajorIterations:   opts.MaxIter,
	}
	theta0 := make([]float64, d+1)

	result, err := optimize.Minimize(problem, theta0, settings, &optimize.LBFGS{})
	if result == nil {
		return nil, 0, fmt.Errorf("logistic fit: %w", err)
	}
	if err != nil {
		// Iteration/linesearch limits still leave a usable iterate.
		log.Warn().Err(err).Str("status", result.Status.String()).Msg("logistic fit terminated early")
	}

	coef = make([]float64, d)
	copy(coef, result.X[:d])
	return coef, result.X[d], nil
}

func log1pexp(z float64) float64 {
	if z > 35 {
		return z
	}
	return math.Log1p(math.Exp(z))
}
