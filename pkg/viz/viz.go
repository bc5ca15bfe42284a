// Package viz renders fitted surrogate curves against the true activation for
// visual inspection of the fit quality.
package viz

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tudou2015/pwlANNpackage/pkg/pwl"
)

const samples = 400

// SaveCurve plots the true activation and its piecewise-linear surrogate over
// [lo, hi] and writes the figure to path; the image format follows the file
// extension, as gonum/plot does.
func SaveCurve(path string, kind pwl.Kind, c pwl.Curve, lo, hi float64) error {
	if hi <= lo {
		return errors.Errorf("viz: empty plot domain [%g, %g]", lo, hi)
	}
	truth := make(plotter.XYs, samples)
	approx := make(plotter.XYs, samples)
	step := (hi - lo) / float64(samples-1)
	for i := 0; i < samples; i++ {
		x := lo + float64(i)*step
		truth[i] = plotter.XY{X: x, Y: kind.Apply(x)}
		approx[i] = plotter.XY{X: x, Y: c.Evaluate(x)}
	}

	p := plot.New()
	p.Title.Text = kind.String() + " surrogate"
	p.X.Label.Text = "weighted input"
	p.Y.Label.Text = "activation"

	truthLine, err := plotter.NewLine(truth)
	if err != nil {
		return errors.Wrap(err, "viz: activation line")
	}
	approxLine, err := plotter.NewLine(approx)
	if err != nil {
		return errors.Wrap(err, "viz: surrogate line")
	}
	approxLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(truthLine, approxLine)
	p.Legend.Add(kind.String(), truthLine)
	p.Legend.Add("surrogate", approxLine)
	p.Legend.Top = true

	return errors.Wrapf(p.Save(14*vg.Centimeter, 10*vg.Centimeter, path), "viz: save %s", path)
}
