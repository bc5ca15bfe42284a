// Package matrix provides the dense linear-algebra helpers the surrogate
// builder needs, backed by gonum. Matrices cross the package boundary as
// [][]float64 in row-major layout, matching how callers hold network weights.
package matrix

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Affine computes x·w plus a per-column bias in one step: x is n×f and w is
// (f+1)×m with the bias in its last row, as both the hidden and the output
// layer of the network store their weights. The result is n×m.
//
// This covers both uses in the pipeline: pre-activations from the input matrix
// and hidden weights, and output-layer predictions from hidden activations and
// output weights.
func Affine(x, w [][]float64) ([][]float64, error) {
	xd, err := dense(x)
	if err != nil {
		return nil, errors.WithMessage(err, "left operand")
	}
	wd, err := dense(w)
	if err != nil {
		return nil, errors.WithMessage(err, "right operand")
	}
	n, f := xd.Dims()
	wr, _ := wd.Dims()
	if wr != f+1 {
		return nil, errors.Errorf("matrix: weight matrix has %d rows, want %d features plus a bias row", wr, f)
	}

	// Augment x with a ones column so the bias row multiplies through.
	aug := mat.NewDense(n, f+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < f; j++ {
			aug.Set(i, j, xd.At(i, j))
		}
		aug.Set(i, f, 1)
	}
	var c mat.Dense
	c.Mul(aug, wd)
	return toRows(&c), nil
}

// MSE returns the mean squared error between two equally-shaped matrices,
// averaged over every entry.
func MSE(a, b [][]float64) (float64, error) {
	ad, err := dense(a)
	if err != nil {
		return 0, err
	}
	bd, err := dense(b)
	if err != nil {
		return 0, err
	}
	ar, ac := ad.Dims()
	br, bc := bd.Dims()
	if ar != br || ac != bc {
		return 0, errors.Errorf("matrix: dimensions must be identical for MSE, got %dx%d and %dx%d", ar, ac, br, bc)
	}
	var diff mat.Dense
	diff.Sub(ad, bd)
	total := 0.0
	for i := 0; i < ar; i++ {
		for j := 0; j < ac; j++ {
			d := diff.At(i, j)
			total += d * d
		}
	}
	return total / float64(ar*ac), nil
}

// Column extracts column j of m as a fresh slice.
func Column(m [][]float64, j int) []float64 {
	out := make([]float64, len(m))
	for i, row := range m {
		out[i] = row[j]
	}
	return out
}

// dense turns a row-major matrix into a gonum Dense, rejecting empty or ragged
// input.
func dense(m [][]float64) (*mat.Dense, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, errors.New("matrix: empty matrix")
	}
	cols := len(m[0])
	flat := make([]float64, 0, len(m)*cols)
	for i, row := range m {
		if len(row) != cols {
			return nil, errors.Errorf("matrix: ragged matrix, row %d has %d columns, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(len(m), cols, flat), nil
}

func toRows(d *mat.Dense) [][]float64 {
	n, c := d.Dims()
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, c)
		for j := 0; j < c; j++ {
			out[i][j] = d.At(i, j)
		}
	}
	return out
}
