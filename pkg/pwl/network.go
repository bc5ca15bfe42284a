package pwl

import (
	"github.com/pkg/errors"

	"github.com/tudou2015/pwlANNpackage/pkg/matrix"
)

// Predict runs the original network forward: hidden pre-activations, the
// nonlinear activation, then the linear output layer. Callers that did not
// keep the network's training-time predictions use this to obtain the
// Predicted matrix for a Problem.
func Predict(inputs, hidden, output [][]float64, kind Kind) ([][]float64, error) {
	weighted, err := matrix.Affine(inputs, hidden)
	if err != nil {
		return nil, errors.Wrap(err, "weighted inputs")
	}
	for i, row := range weighted {
		for j, z := range row {
			weighted[i][j] = kind.Apply(z)
		}
	}
	pred, err := matrix.Affine(weighted, output)
	if err != nil {
		return nil, errors.Wrap(err, "output layer")
	}
	return pred, nil
}
