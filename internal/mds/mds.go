// Package mds projects a dissimilarity matrix into low-dimensional
// coordinates with classical (Torgerson) multidimensional scaling.
package mds

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvlath/matrix"
)

var (
	ErrEmpty      = errors.New("mds: empty dissimilarity matrix")
	ErrNotSquare  = errors.New("mds: dissimilarity matrix is not square")
	ErrAsymmetric = errors.New("mds: dissimilarity matrix is not symmetric")
	ErrDimension  = errors.New("mds: invalid output dimension")
)

const (
	symmetryTol = 1e-9
	eigenTol    = 1e-10
)

// Classical embeds the n×n dissimilarity matrix d into k dimensions.
// The result has n rows of k coordinates, centred on the origin. Dimensions
// beyond the number of positive eigenvalues are zero.
func Classical(d [][]float64, k int) ([][]float64, error) {
	n := len(d)
	if n == 0 {
		return nil, ErrEmpty
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: %d", ErrDimension, k)
	}
	for i := range d {
		if len(d[i]) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(d[i]), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(d[i][j]-d[j][i]) > symmetryTol {
				return nil, fmt.Errorf("%w: d[%d][%d]=%g, d[%d][%d]=%g", ErrAsymmetric, i, j, d[i][j], j, i, d[j][i])
			}
		}
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, k)
	}
	if n == 1 {
		return out, nil
	}

	b, err := doubleCentre(d)
	if err != nil {
		return nil, err
	}
	values, vectors, err := matrix.Eigen(b, eigenTol, 200*n*n)
	if err != nil {
		return nil, fmt.Errorf("mds: eigen decomposition: %w", err)
	}

	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return values[order[a]] > values[order[b]] })

	for c := 0; c < k && c < n; c++ {
		col := order[c]
		lambda := values[col]
		if lambda <= eigenTol {
			break
		}
		v, err := column(vectors, col)
		if err != nil {
			return nil, err
		}
		canonicalSign(v)
		scale := math.Sqrt(lambda)
		for i := 0; i < n; i++ {
			out[i][c] = v[i] * scale
		}
	}
	return out, nil
}

// doubleCentre returns B = -1/2 · J·D²·J with J the centring matrix.
func doubleCentre(d [][]float64) (*matrix.Dense, error) {
	n := len(d)
	sq := make([][]float64, n)
	rowMean := make([]float64, n)
	var grand float64
	for i := range d {
		sq[i] = make([]float64, n)
		for j := range d[i] {
			v := d[i][j] * d[i][j]
			sq[i][j] = v
			rowMean[i] += v
		}
		grand += rowMean[i]
		rowMean[i] /= float64(n)
	}
	grand /= float64(n * n)

	b, err := matrix.NewDense(n, n)
	if err != nil {
		return nil, fmt.Errorf("mds: %w", err)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			// D is symmetric, so the row mean doubles as the column mean.
			v := -0.5 * (sq[i][j] - rowMean[i] - rowMean[j] + grand)
			if err := b.Set(i, j, v); err != nil {
				return nil, fmt.Errorf("mds: %w", err)
			}
			if err := b.Set(j, i, v); err != nil {
				return nil, fmt.Errorf("mds: %w", err)
			}
		}
	}
	return b, nil
}

func column(m matrix.Matrix, col int) ([]float64, error) {
	v := make([]float64, m.Rows())
	for i := range v {
		x, err := m.At(i, col)
		if err != nil {
			return nil, fmt.Errorf("mds: %w", err)
		}
		v[i] = x
	}
	return v, nil
}

// canonicalSign flips v so its largest-magnitude component is positive.
func canonicalSign(v []float64) {
	best := 0
	for i := range v {
		if math.Abs(v[i]) > math.Abs(v[best])+1e-12 {
			best = i
		}
	}
	if v[best] < 0 {
		for i := range v {
			v[i] = -v[i]
		}
	}
}
