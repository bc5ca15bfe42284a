package pwl

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tudou2015/pwlANNpackage/pkg/matrix"
)

// ErrConfiguration marks fatal input problems: missing matrices, dimension
// mismatches, an odd breakpoint budget or an unknown activation. Detect it
// with errors.Is.
var ErrConfiguration = errors.New("pwl: invalid configuration")

// Problem bundles the trained network and the data it was fitted on.
type Problem struct {
	// Inputs is the feature matrix, one row per data point.
	Inputs [][]float64
	// Predicted is the network's own output for Inputs, n×outputs.
	Predicted [][]float64
	// Target is the true target the network was trained against, n×outputs.
	Target [][]float64
	// Hidden is the hidden-layer weight matrix, (features+1)×nodes with the
	// bias in the last row.
	Hidden [][]float64
	// Output is the output-layer weight matrix, (nodes+1)×outputs with the
	// bias in the last row. The output layer is linear.
	Output [][]float64
	// Activation is the hidden-layer activation kind.
	Activation Kind
}

// Options control breakpoint placement and model selection. The zero value of
// any field selects its default; the zero Options value therefore subsamples
// large datasets, which callers disable explicitly through NoSubsample.
type Options struct {
	// Spacing is the minimum index distance between breakpoints in the
	// sorted per-node sample. Default 1.
	Spacing int
	// MaxBreakpoints is the full-curve breakpoint budget per node. Must be
	// even. Default 6.
	MaxBreakpoints int
	// Tolerance is the accepted percentage deviation of the surrogate MSE
	// from the network's own MSE. Default 20.
	Tolerance float64
	// NoSubsample disables thinning of the per-node sample before fitting.
	NoSubsample bool
	// SampleSize caps the per-node sample when subsampling is active.
	// Default 300.
	SampleSize int
	// Progress, when non-nil, is called once per node as its family
	// finishes fitting. It may be called from concurrent goroutines.
	Progress func(node, total int)
}

// withDefaults resolves unset fields to their defaults. It is pure: the notes
// describing applied defaults are returned for the caller to log.
func (o Options) withDefaults() (Options, []string) {
	var notes []string
	if o.Spacing == 0 {
		o.Spacing = 1
		notes = append(notes, "spacing defaulted to 1")
	}
	if o.MaxBreakpoints == 0 {
		o.MaxBreakpoints = 6
		notes = append(notes, "max breakpoints defaulted to 6")
	}
	if o.Tolerance == 0 {
		o.Tolerance = 20
		notes = append(notes, "tolerance defaulted to 20%")
	}
	if o.SampleSize == 0 {
		o.SampleSize = 300
		notes = append(notes, "sample size defaulted to 300")
	}
	return o, notes
}

// Result is the selected surrogate model.
type Result struct {
	// Curves holds the selected full-domain curve per hidden node, indexed
	// by node id. Evaluating Curves[j] replaces the activation of node j.
	Curves []Curve
	// Families holds every candidate full curve built per node, for
	// inspection and plotting.
	Families []Family
	// Level is the nominal breakpoint count of the selected configuration.
	// Degenerate nodes may carry fewer breakpoints than the level names.
	Level int
	// Deviation is the achieved percentage deviation of the surrogate MSE
	// from ReferenceMSE.
	Deviation float64
	// WithinTolerance reports whether Deviation met the budget; when false
	// the result is the best-effort richest configuration.
	WithinTolerance bool
	// Searched is false when a breakpoint budget of 2 left a single
	// candidate and the selection search was skipped.
	Searched bool
	// ReferenceMSE is the trained network's own MSE against the target.
	ReferenceMSE float64
}

// Approximate builds the piecewise-linear surrogate for every hidden node of
// the trained network and selects the cheapest adequate configuration.
//
// The pipeline: resolve defaults, validate the problem, compute the weighted
// inputs, fit every node's half-curve family concurrently (the fits share only
// read-only inputs and each writes a private slot), mirror each half curve
// into a full curve, then run the selection search, skipped entirely when the
// breakpoint budget is 2, in which case the single candidate is returned
// unconditionally.
//
// Non-fatal degradations (subsample larger than the data, families shorter
// than requested, tolerance not met) are logged and reported through the
// Result rather than returned as errors.
func Approximate(p Problem, opts Options) (*Result, error) {
	opts, notes := opts.withDefaults()
	for _, n := range notes {
		klog.V(1).Infof("pwl: %s", n)
	}
	if err := p.validate(opts); err != nil {
		return nil, err
	}

	weighted, err := matrix.Affine(p.Inputs, p.Hidden)
	if err != nil {
		return nil, errors.Wrap(err, "weighted inputs")
	}
	refMSE, err := matrix.MSE(p.Predicted, p.Target)
	if err != nil {
		return nil, errors.Wrap(err, "reference MSE")
	}

	nodes := len(p.Hidden[0])
	noBP := opts.MaxBreakpoints / 2
	families := make([]Family, nodes)
	var wg sync.WaitGroup
	for j := 0; j < nodes; j++ {
		wg.Add(1)
		go func(j int) {
			defer wg.Done()
			families[j] = fitNode(matrix.Column(weighted, j), p.Activation, opts, noBP)
			if opts.Progress != nil {
				opts.Progress(j, nodes)
			}
		}(j)
	}
	wg.Wait()

	if noBP == 1 {
		// One candidate per node: nothing to search, returned as is. The
		// deviation is still measured so callers can see what they got.
		dev, curves, err := evaluateLevel(weighted, families, 0, p.Output, p.Target, refMSE)
		if err != nil {
			return nil, err
		}
		return &Result{
			Curves:          curves,
			Families:        families,
			Level:           2,
			Deviation:       dev,
			WithinTolerance: dev <= opts.Tolerance,
			Searched:        false,
			ReferenceMSE:    refMSE,
		}, nil
	}

	sel, err := FindBest(weighted, families, p.Output, p.Target, refMSE, opts.Tolerance)
	if err != nil {
		return nil, err
	}
	return &Result{
		Curves:          sel.Curves,
		Families:        families,
		Level:           2 * (sel.Index + 1),
		Deviation:       sel.Deviation,
		WithinTolerance: sel.WithinTolerance,
		Searched:        true,
		ReferenceMSE:    refMSE,
	}, nil
}

// fitNode builds one node's full-curve family from its pre-activation column.
func fitNode(z []float64, kind Kind, opts Options, noBP int) Family {
	// The breakpoint search runs on the absolute pre-activations, sorted and
	// zero-anchored; the final curves are validated on the raw signed data.
	xs := make([]float64, 0, len(z)+1)
	xs = append(xs, 0)
	for _, v := range z {
		if v < 0 {
			v = -v
		}
		xs = append(xs, v)
	}
	sort.Float64s(xs)

	if !opts.NoSubsample {
		if len(xs) > opts.SampleSize {
			xs = Subsample(xs, opts.SampleSize)
		} else if len(xs) < opts.SampleSize {
			klog.V(1).Infof("pwl: sample size %d exceeds %d available points, fitting on the full data", opts.SampleSize, len(xs))
		}
	}

	off := kind.Offset()
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = kind.Apply(x) - off
	}

	fullYs := make([]float64, len(z))
	for i, x := range z {
		fullYs[i] = kind.Apply(x)
	}

	half := FitHalf(xs, ys, opts.Spacing, noBP)
	full := make(Family, len(half))
	for i, h := range half {
		full[i] = FullFromHalf(h, z, fullYs, kind)
	}
	return full
}

func (p Problem) validate(opts Options) error {
	required := []struct {
		name string
		m    [][]float64
	}{
		{"inputs", p.Inputs},
		{"predicted", p.Predicted},
		{"target", p.Target},
		{"hidden weights", p.Hidden},
		{"output weights", p.Output},
	}
	for _, r := range required {
		if len(r.m) == 0 || len(r.m[0]) == 0 {
			return errors.Wrapf(ErrConfiguration, "missing %s", r.name)
		}
	}
	n := len(p.Inputs)
	if len(p.Predicted) != n || len(p.Target) != n {
		return errors.Wrapf(ErrConfiguration, "row counts differ: %d inputs, %d predictions, %d targets", n, len(p.Predicted), len(p.Target))
	}
	features := len(p.Inputs[0])
	if len(p.Hidden) != features+1 {
		return errors.Wrapf(ErrConfiguration, "hidden weight matrix has %d rows, want %d features plus a bias row", len(p.Hidden), features)
	}
	nodes := len(p.Hidden[0])
	if len(p.Output) != nodes+1 {
		return errors.Wrapf(ErrConfiguration, "output weight matrix has %d rows, want %d nodes plus a bias row", len(p.Output), nodes)
	}
	outputs := len(p.Output[0])
	if len(p.Predicted[0]) != outputs || len(p.Target[0]) != outputs {
		return errors.Wrapf(ErrConfiguration, "output width mismatch: %d weight columns, %d predicted, %d target", outputs, len(p.Predicted[0]), len(p.Target[0]))
	}
	if !p.Activation.valid() {
		return errors.Wrapf(ErrConfiguration, "unknown activation kind %d", p.Activation)
	}
	if opts.MaxBreakpoints < 2 || opts.MaxBreakpoints%2 != 0 {
		return errors.Wrapf(ErrConfiguration, "max breakpoints must be a positive even number, got %d", opts.MaxBreakpoints)
	}
	if opts.Spacing < 1 {
		return errors.Wrapf(ErrConfiguration, "spacing must be at least 1, got %d", opts.Spacing)
	}
	if opts.Tolerance < 0 {
		return errors.Wrapf(ErrConfiguration, "tolerance must not be negative, got %.2f", opts.Tolerance)
	}
	if opts.SampleSize < 2 {
		return errors.Wrapf(ErrConfiguration, "sample size must be at least 2, got %d", opts.SampleSize)
	}
	return nil
}
