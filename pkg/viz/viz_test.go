package viz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudou2015/pwlANNpackage/pkg/pwl"
)

func TestSaveCurve(t *testing.T) {
	fam := pwl.FitHalf(
		[]float64{0, 1, 2, 3, 4, 5},
		[]float64{0, 0.23, 0.38, 0.45, 0.48, 0.49},
		1, 2,
	)
	require.NotEmpty(t, fam)
	full := pwl.FullFromHalf(fam.Richest(), []float64{-2, 2}, []float64{pwl.Sigmoid.Apply(-2), pwl.Sigmoid.Apply(2)}, pwl.Sigmoid)

	path := filepath.Join(t.TempDir(), "node.png")
	require.NoError(t, SaveCurve(path, pwl.Sigmoid, full, -5, 5))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSaveCurveEmptyDomain(t *testing.T) {
	fam := pwl.FitHalf([]float64{0, 1}, []float64{0, 0.2}, 1, 1)
	err := SaveCurve(filepath.Join(t.TempDir(), "x.png"), pwl.Sigmoid, fam.Richest(), 3, 3)
	assert.Error(t, err)
}
