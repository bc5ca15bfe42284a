// Package pwl replaces the nonlinear hidden-layer activations of a trained
// single-hidden-layer network with piecewise-linear surrogate curves whose
// end-to-end error stays within a caller-supplied budget relative to the
// network's own fit to the target.
package pwl

import (
	"math"

	"github.com/pkg/errors"
)

// Kind selects the hidden-layer activation function. The set is closed: the
// fitter relies on the point symmetry each kind declares through Offset.
type Kind int

const (
	// Sigmoid is the logistic function 1/(1+e⁻ˣ), point-symmetric about (0, 0.5).
	Sigmoid Kind = iota
	// Hyperbolic is tanh(x), point-symmetric about the origin.
	Hyperbolic
)

// Apply evaluates the activation function at x.
func (k Kind) Apply(x float64) float64 {
	switch k {
	case Sigmoid:
		return 1.0 / (1.0 + math.Exp(-x))
	case Hyperbolic:
		return math.Tanh(x)
	}
	return math.NaN()
}

// Offset returns the vertical shift that recenters the activation curve on the
// origin: k.Apply(x) - k.Offset() is an odd function of x.
func (k Kind) Offset() float64 {
	if k == Sigmoid {
		return 0.5
	}
	return 0
}

func (k Kind) String() string {
	switch k {
	case Sigmoid:
		return "sigmoid"
	case Hyperbolic:
		return "hyperbolic"
	}
	return "unknown"
}

func (k Kind) valid() bool {
	return k == Sigmoid || k == Hyperbolic
}

// ParseKind maps an activation name to its Kind. It exists for boundary code
// such as command-line flags; library callers use the constants directly.
//
// Parameters:
//   - name: "sigmoid", "hyperbolic" or the alias "tanh"
//
// Returns:
//   - the matching Kind, or an error wrapping ErrConfiguration
func ParseKind(name string) (Kind, error) {
	switch name {
	case "sigmoid":
		return Sigmoid, nil
	case "hyperbolic", "tanh":
		return Hyperbolic, nil
	}
	return 0, errors.Wrapf(ErrConfiguration, "unrecognized activation kind %q", name)
}
