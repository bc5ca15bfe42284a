package pwl

import (
	"math"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tudou2015/pwlANNpackage/pkg/matrix"
)

// Selection is the outcome of the model-selection search: one full curve per
// node, all taken from the same family level.
type Selection struct {
	// Index is the position of the chosen level within each node's family.
	Index int
	// Curves holds the selected full curve per node.
	Curves []Curve
	// Deviation is the achieved percentage deviation of the surrogate MSE
	// from the reference MSE at the chosen level.
	Deviation float64
	// WithinTolerance reports whether Deviation met the budget. When false
	// the Curves are the best-effort richest configuration.
	WithinTolerance bool
	// Deviations records the deviation observed at every level tried, in
	// search order, for callers that want the whole trace.
	Deviations []float64
}

// FindBest searches the per-node curve families for the configuration with the
// fewest breakpoints whose end-to-end error is adequate.
//
// Levels are tried coarsest first, restricted to those present in every node's
// family. For each level the surrogate network is forward-propagated: every
// node's activation is replaced by its curve at that level, the linear output
// layer is applied, and the surrogate MSE against the target is compared to
// refMSE (the trained network's own MSE). The first level whose percentage
// deviation |surrogate−ref|/ref·100 is within tol wins; the ascending order
// makes any tie on deviation resolve toward fewer breakpoints. If no level
// qualifies the richest common level is returned with WithinTolerance false.
//
// Parameters:
//   - weighted: the n×nodes pre-activation matrix
//   - families: one full-curve Family per node
//   - output: the (nodes+1)×outputs weight matrix, bias in the last row
//   - target: the true target values, n×outputs
//   - refMSE: the trained network's MSE against target
//   - tol: accepted deviation, in percent
func FindBest(weighted [][]float64, families []Family, output, target [][]float64, refMSE, tol float64) (*Selection, error) {
	levels := len(families[0])
	for _, f := range families {
		if len(f) < levels {
			levels = len(f)
		}
	}

	sel := &Selection{Index: -1}
	for idx := 0; idx < levels; idx++ {
		dev, curves, err := evaluateLevel(weighted, families, idx, output, target, refMSE)
		if err != nil {
			return nil, err
		}
		sel.Deviations = append(sel.Deviations, dev)
		klog.V(1).Infof("pwl: level %d deviates %.4f%% from reference MSE", curves[0].K, dev)
		sel.Index, sel.Curves, sel.Deviation = idx, curves, dev
		if dev <= tol {
			sel.WithinTolerance = true
			return sel, nil
		}
	}
	// Exhausted: keep the richest configuration as a best effort.
	klog.Warningf("pwl: no breakpoint count met the %.2f%% tolerance; keeping the richest configuration (%.4f%% deviation)", tol, sel.Deviation)
	return sel, nil
}

// evaluateLevel substitutes each node's curve at the given family index for its
// activation and measures the surrogate MSE deviation from refMSE.
func evaluateLevel(weighted [][]float64, families []Family, idx int, output, target [][]float64, refMSE float64) (float64, []Curve, error) {
	nodes := len(families)
	curves := make([]Curve, nodes)
	for j := range families {
		curves[j] = families[j][idx]
	}

	hidden := make([][]float64, len(weighted))
	for i, row := range weighted {
		hidden[i] = make([]float64, nodes)
		for j := 0; j < nodes; j++ {
			hidden[i][j] = curves[j].Evaluate(row[j])
		}
	}
	pred, err := matrix.Affine(hidden, output)
	if err != nil {
		return 0, nil, errors.Wrap(err, "surrogate forward pass")
	}
	mse, err := matrix.MSE(pred, target)
	if err != nil {
		return 0, nil, errors.Wrap(err, "surrogate MSE")
	}
	return deviation(mse, refMSE), curves, nil
}

// deviation is the percentage gap between the surrogate and reference MSE. A
// zero reference only matches a zero surrogate.
func deviation(mse, refMSE float64) float64 {
	if refMSE == 0 {
		if mse == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(mse-refMSE) / refMSE * 100
}
