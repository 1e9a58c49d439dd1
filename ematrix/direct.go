package ematrix

import (
	"gonum.org/v1/gonum/mat"
)

// identity writes an identity matrix into dst.
func identity(dst *mat.Dense) {
	rows, _ := dst.Dims()
	dst.Zero()
	for i := 0; i < rows; i++ {
		dst.Set(i, i, 1)
	}
}

// Pow computes m^n by exponentiation by squaring, using O(log n)
// matrix multiplications. If dst is nil a new matrix is allocated.
func Pow(dst *mat.Dense, m *mat.Dense, n uint64) *mat.Dense {
	rows, cols := m.Dims()
	if dst == nil {
		dst = mat.NewDense(rows, cols, nil)
	}
	identity(dst)

	base := mat.DenseCopyOf(m)
	for n > 0 {
		if n&1 == 1 {
			dst.Mul(dst, base)
		}
		n >>= 1
		if n > 0 {
			base.Mul(base, base)
		}
	}
	return dst
}

// PowSum computes the sum of m^i for i=1..n-1 by iterative
// accumulation. This is O(n) matrix multiplications and accumulates
// floating-point error with n.
func PowSum(dst *mat.Dense, m *mat.Dense, n uint64) *mat.Dense {
	rows, cols := m.Dims()
	if dst == nil {
		dst = mat.NewDense(rows, cols, nil)
	}
	dst.Zero()

	p := mat.NewDense(rows, cols, nil)
	identity(p)
	for i := uint64(1); i < n; i++ {
		p.Mul(p, m)
		dst.Add(dst, p)
	}
	return dst
}
