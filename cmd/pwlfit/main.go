// Command pwlfit builds a piecewise-linear surrogate for a trained
// single-hidden-layer network stored as CSV matrices and writes the selected
// curves as JSON.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/tudou2015/pwlANNpackage/pkg/pwl"
	"github.com/tudou2015/pwlANNpackage/pkg/viz"
)

func main() {
	var (
		inputsPath    = flag.String("inputs", "", "CSV of input features, one row per data point (required)")
		targetsPath   = flag.String("targets", "", "CSV of true target values (required)")
		predictedPath = flag.String("predicted", "", "CSV of the network's own predictions; recomputed from the weights when omitted")
		hiddenPath    = flag.String("hidden", "", "CSV of hidden-layer weights, (features+1) x nodes, bias in the last row (required)")
		outputPath    = flag.String("output", "", "CSV of output-layer weights, (nodes+1) x outputs, bias in the last row (required)")
		activation    = flag.String("activation", "sigmoid", "hidden-layer activation: sigmoid or hyperbolic")
		spacing       = flag.Int("spacing", 1, "minimum index distance between breakpoints")
		maxBP         = flag.Int("max-bp", 6, "full-curve breakpoint budget per node (even)")
		tolerance     = flag.Float64("tolerance", 20, "accepted surrogate MSE deviation, percent")
		noSubsample   = flag.Bool("no-subsample", false, "fit on the full per-node sample")
		sampleSize    = flag.Int("sample-size", 300, "per-node sample cap when subsampling")
		outPath       = flag.String("out", "surrogate.json", "where to write the selected surrogate")
		plotDir       = flag.String("plot-dir", "", "when set, write a PNG of each node's selected curve here")
	)
	klog.InitFlags(nil)
	flag.Parse()

	if err := run(*inputsPath, *targetsPath, *predictedPath, *hiddenPath, *outputPath, *activation,
		*spacing, *maxBP, *tolerance, *noSubsample, *sampleSize, *outPath, *plotDir); err != nil {
		klog.Exitf("pwlfit: %v", err)
	}
}

func run(inputsPath, targetsPath, predictedPath, hiddenPath, outputPath, activation string,
	spacing, maxBP int, tolerance float64, noSubsample bool, sampleSize int, outPath, plotDir string) error {
	for name, path := range map[string]string{
		"-inputs": inputsPath, "-targets": targetsPath, "-hidden": hiddenPath, "-output": outputPath,
	} {
		if path == "" {
			return errors.Errorf("%s is required", name)
		}
	}
	kind, err := pwl.ParseKind(activation)
	if err != nil {
		return err
	}

	p := pwl.Problem{Activation: kind}
	if p.Inputs, err = loadCSV(inputsPath); err != nil {
		return err
	}
	if p.Target, err = loadCSV(targetsPath); err != nil {
		return err
	}
	if p.Hidden, err = loadCSV(hiddenPath); err != nil {
		return err
	}
	if p.Output, err = loadCSV(outputPath); err != nil {
		return err
	}
	if predictedPath != "" {
		if p.Predicted, err = loadCSV(predictedPath); err != nil {
			return err
		}
	} else {
		if p.Predicted, err = pwl.Predict(p.Inputs, p.Hidden, p.Output, kind); err != nil {
			return err
		}
	}

	nodes := 0
	if len(p.Hidden) > 0 {
		nodes = len(p.Hidden[0])
	}
	bar := progressbar.Default(int64(nodes), "fitting nodes")
	res, err := pwl.Approximate(p, pwl.Options{
		Spacing:        spacing,
		MaxBreakpoints: maxBP,
		Tolerance:      tolerance,
		NoSubsample:    noSubsample,
		SampleSize:     sampleSize,
		Progress:       func(_, _ int) { _ = bar.Add(1) },
	})
	if err != nil {
		return err
	}
	_ = bar.Finish()

	if !res.WithinTolerance {
		klog.Warningf("tolerance %.2f%% not met, best effort deviation %.2f%%", tolerance, res.Deviation)
	}
	fmt.Printf("selected %d breakpoints per node, deviation %.2f%% (reference MSE %.6g)\n",
		res.Level, res.Deviation, res.ReferenceMSE)

	if plotDir != "" {
		if err := writePlots(plotDir, kind, res.Curves); err != nil {
			return err
		}
	}
	return writeJSON(outPath, activation, res)
}

// loadCSV reads a numeric CSV file into a row-major matrix.
func loadCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	m := make([][]float64, len(records))
	for i, rec := range records {
		m[i] = make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d column %d", path, i+1, j+1)
			}
			m[i][j] = v
		}
	}
	return m, nil
}

// surrogateJSON is the on-disk form of a selection. Unbounded segment ends are
// encoded as null, since JSON has no infinity.
type surrogateJSON struct {
	Activation string      `json:"activation"`
	Level      int         `json:"level"`
	Deviation  float64     `json:"deviation_percent"`
	Reference  float64     `json:"reference_mse"`
	Adequate   bool        `json:"within_tolerance"`
	Curves     []curveJSON `json:"curves"`
}

type curveJSON struct {
	Node        int           `json:"node"`
	Breakpoints []float64     `json:"breakpoints"`
	Segments    []segmentJSON `json:"segments"`
}

type segmentJSON struct {
	Lo        *float64 `json:"lo"`
	Hi        *float64 `json:"hi"`
	Slope     float64  `json:"slope"`
	Intercept float64  `json:"intercept"`
}

func writeJSON(path, activation string, res *pwl.Result) error {
	doc := surrogateJSON{
		Activation: activation,
		Level:      res.Level,
		Deviation:  res.Deviation,
		Reference:  res.ReferenceMSE,
		Adequate:   res.WithinTolerance,
	}
	for j, c := range res.Curves {
		cj := curveJSON{Node: j, Breakpoints: c.Breakpoints}
		for _, s := range c.Segments {
			cj.Segments = append(cj.Segments, segmentJSON{
				Lo:        finiteOrNil(s.Lo),
				Hi:        finiteOrNil(s.Hi),
				Slope:     s.Slope,
				Intercept: s.Intercept,
			})
		}
		doc.Curves = append(doc.Curves, cj)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode surrogate")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

func finiteOrNil(v float64) *float64 {
	if math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func writePlots(dir string, kind pwl.Kind, curves []pwl.Curve) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	for j, c := range curves {
		lo, hi := plotDomain(c)
		path := filepath.Join(dir, fmt.Sprintf("node%02d.png", j))
		if err := viz.SaveCurve(path, kind, c, lo, hi); err != nil {
			return err
		}
	}
	return nil
}

// plotDomain widens the breakpoint span a little so the unbounded tails show.
func plotDomain(c pwl.Curve) (float64, float64) {
	if len(c.Breakpoints) == 0 {
		return -5, 5
	}
	span := c.Breakpoints[len(c.Breakpoints)-1] - c.Breakpoints[0]
	if span == 0 {
		span = 1
	}
	return c.Breakpoints[0] - span/4, c.Breakpoints[len(c.Breakpoints)-1] + span/4
}
