// Package ematrix stores a transition matrix together with its
// eigendecomposition to quickly compute large matrix powers and power
// sums: M = V D V^-1, so M^n = V D^n V^-1 with a diagonal D.
package ematrix

import (
	"errors"
	"fmt"
	"math"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"
)

// log is the global logging variable.
var log = logging.MustGetLogger("ematrix")

const (
	// imagTol is the maximum imaginary component magnitude of an
	// eigenvalue or eigenvector element before the decomposition
	// is rejected as complex.
	imagTol = 1e-9
	// unitTol is the distance from 1 below which an eigenvalue is
	// treated as exactly 1 in the power-sum geometric series.
	unitTol = 1e-9
)

// EMatrix stores a transition matrix and its eigendecomposition.
type EMatrix struct {
	// M is the transition matrix.
	M  *mat.Dense
	v  *mat.Dense
	d  []float64
	iv *mat.Dense
}

// NewEMatrix creates a new EMatrix.
func NewEMatrix(m *mat.Dense) *EMatrix {
	return &EMatrix{M: m}
}

// Set sets the transition matrix, invalidating any cached
// decomposition.
func (e *EMatrix) Set(m *mat.Dense) {
	e.M = m
	e.v = nil
}

// Eigen performs eigendecomposition. The decomposition is cached;
// subsequent calls are free. Matrices with a complex spectrum or a
// singular eigenvector matrix are an error.
func (e *EMatrix) Eigen() (err error) {
	if e.v != nil {
		return nil
	}
	rows, cols := e.M.Dims()
	if rows != cols {
		return errors.New("M isn't a square matrix")
	}

	var eig mat.Eigen
	if ok := eig.Factorize(e.M, mat.EigenRight); !ok {
		return errors.New("eigendecomposition failed")
	}

	vals := eig.Values(nil)
	d := make([]float64, rows)
	for i, l := range vals {
		if math.Abs(imag(l)) > imagTol {
			return fmt.Errorf("complex eigenvalue %v", l)
		}
		re := real(l)
		// The spectral radius of a stochastic matrix is 1;
		// clip rounding overshoot so huge powers cannot blow up.
		if a := math.Abs(re); a > 1 {
			re /= a
		}
		d[i] = re
	}

	var cv mat.CDense
	eig.VectorsTo(&cv)
	v := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			el := cv.At(i, j)
			if math.Abs(imag(el)) > imagTol {
				return fmt.Errorf("complex eigenvector element %v", el)
			}
			v.Set(i, j, real(el))
		}
	}

	iv := mat.NewDense(cols, rows, nil)
	if err = iv.Inverse(v); err != nil {
		return fmt.Errorf("inverting eigenvector matrix: %v", err)
	}

	e.d = d
	e.v = v
	e.iv = iv
	log.Debugf("eigenvalues: %v", d)
	return nil
}

// Power computes M^n as V D^n V^-1 and writes the diagonal to the cD
// scratch matrix. Slightly negative elements of the result are
// clamped to zero.
func (e *EMatrix) Power(cD *mat.Dense, n uint64) (*mat.Dense, error) {
	if err := e.Eigen(); err != nil {
		return nil, err
	}
	rows := len(e.d)
	if cD == nil {
		cD = mat.NewDense(rows, rows, nil)
	} else {
		cD.Zero()
	}
	for i, l := range e.d {
		cD.Set(i, i, math.Pow(l, float64(n)))
	}
	return e.transform(cD), nil
}

// PowerSum computes the sum of M^i for i=1..n-1 in the eigenbasis:
// every eigenvalue is replaced by the geometric series
// l(l^(n-1)-1)/(l-1), which is n-1 for l=1.
func (e *EMatrix) PowerSum(cD *mat.Dense, n uint64) (*mat.Dense, error) {
	if err := e.Eigen(); err != nil {
		return nil, err
	}
	rows := len(e.d)
	if cD == nil {
		cD = mat.NewDense(rows, rows, nil)
	} else {
		cD.Zero()
	}
	for i, l := range e.d {
		var g float64
		switch {
		case n <= 1:
			g = 0
		case math.Abs(l-1) < unitTol:
			g = float64(n - 1)
		default:
			g = l * (math.Pow(l, float64(n-1)) - 1) / (l - 1)
		}
		cD.Set(i, i, g)
	}
	return e.transform(cD), nil
}

// Reconstruct computes V D V^-1, which recovers M up to
// floating-point error.
func (e *EMatrix) Reconstruct(cD *mat.Dense) (*mat.Dense, error) {
	if err := e.Eigen(); err != nil {
		return nil, err
	}
	rows := len(e.d)
	if cD == nil {
		cD = mat.NewDense(rows, rows, nil)
	} else {
		cD.Zero()
	}
	for i, l := range e.d {
		cD.Set(i, i, l)
	}
	return e.transform(cD), nil
}

// SLEM returns the second largest eigenvalue modulus: the largest
// eigenvalue magnitude strictly below 1. It bounds the convergence
// rate of M^n.
func (e *EMatrix) SLEM() (float64, error) {
	if err := e.Eigen(); err != nil {
		return 0, err
	}
	slem := 0.0
	for _, l := range e.d {
		if a := math.Abs(l); a < 1-unitTol && a > slem {
			slem = a
		}
	}
	return slem, nil
}

// transform computes V cD V^-1 and removes slightly negative values.
func (e *EMatrix) transform(cD *mat.Dense) *mat.Dense {
	rows, cols := cD.Dims()
	res := mat.NewDense(rows, cols, nil)
	res.Mul(e.v, cD)
	res.Mul(res, e.iv)
	res.Apply(func(r, c int, v float64) float64 {
		return math.Max(0, v)
	}, res)
	return res
}
